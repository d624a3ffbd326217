package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/grantkit/internal/http/helpers"
	"github.com/dropDatabas3/grantkit/internal/oauth2"
	"github.com/dropDatabas3/grantkit/internal/observability/logger"
)

// WithRecover catches panics and answers with a server_error instead of
// crashing the process.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic recovered",
						logger.Op("recover"),
						logger.Any("panic", rec),
					)
					helpers.WriteOAuthError(w, oauth2.ErrServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
