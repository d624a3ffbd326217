package middlewares

import "net/http"

// WithNoStore adds Cache-Control: no-store plus the legacy Pragma header.
// Token and authorization responses must never be cached (RFC 6749 §5.1).
func WithNoStore() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			w.Header().Set("Pragma", "no-cache")
			next.ServeHTTP(w, r)
		})
	}
}
