// Package logger provides a singleton Zap logger with context-based scoping.
//
// # Design
//
//   - Singleton: one global instance initialized with Init().
//   - Context scoping: each request can carry its own scoped logger with
//     request fields (request_id, client_id, ...) without building a new core.
//   - Environments: "dev" logs to a colored console, "prod" logs JSON.
//   - Levels: debug, info, warn, error (configurable via LOG_LEVEL).
//
// # Usage
//
// Initialization (once, in main):
//
//	logger.Init(logger.Config{
//	    Env:   os.Getenv("APP_ENV"),   // "dev" or "prod"
//	    Level: os.Getenv("LOG_LEVEL"), // "debug", "info", "warn", "error"
//	})
//	defer logger.Sync()
//
// In handlers/services (with context):
//
//	log := logger.From(ctx)
//	log.Info("authorization granted", logger.ClientID(clientID))
//
// Without context (falls back to the singleton):
//
//	logger.L().Info("server started")
package logger
