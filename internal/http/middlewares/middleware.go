// Package middlewares contains the HTTP middlewares shared by the router.
package middlewares

import "net/http"

// Middleware decorates an http.Handler.
type Middleware func(http.Handler) http.Handler
