package logger

import (
	"context"

	"go.uber.org/zap"
)

// S returns the singleton's SugaredLogger.
// Handy for quick printf-style logs.
//
// Example:
//
//	logger.S().Infof("client %s registered", clientID)
//	logger.S().Errorw("code exchange failed", "error", err, "client_id", clientID)
func S() *zap.SugaredLogger {
	return L().Sugar()
}

// SFrom extracts the SugaredLogger from the context.
func SFrom(ctx context.Context) *zap.SugaredLogger {
	return From(ctx).Sugar()
}
