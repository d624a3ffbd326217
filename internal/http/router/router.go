// Package router assembles the route tree from controllers and middlewares.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/grantkit/internal/http"
	healthctrl "github.com/dropDatabas3/grantkit/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/grantkit/internal/http/controllers/oauth"
	mw "github.com/dropDatabas3/grantkit/internal/http/middlewares"
)

// Deps contains everything the router mounts.
type Deps struct {
	Authorize *oauthctrl.AuthorizeController
	Token     *oauthctrl.TokenController
	Health    *healthctrl.HealthController

	// Metrics is the exposition handler. Nil disables the endpoint.
	Metrics http.Handler
}

// New builds the route tree.
//
// The outer chain runs on every request: request ID first so the logger and
// error responses can reference it, then recovery, logging and metrics.
// The OAuth endpoints additionally get no-store headers per RFC 6749
// section 5.1.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithRecover())
	r.Use(mw.WithLogging())
	r.Use(httpx.WithMetrics)
	r.Use(mw.WithSecurityHeaders())

	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore())

		if d.Authorize != nil {
			r.Get("/oauth2/authorize", d.Authorize.Authorize)
			r.Post("/oauth2/authorize", d.Authorize.Authorize)
		}
		if d.Token != nil {
			r.Post("/oauth2/token", d.Token.Token)
		}
	})

	if d.Health != nil {
		r.Get("/healthz", d.Health.Health)
	}
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	return r
}
