// Package health contains the controller for the health endpoint.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/grantkit/internal/http/helpers"
	"github.com/dropDatabas3/grantkit/internal/observability/logger"
)

// Pinger is a backend the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController handles GET /healthz: liveness plus a bounded probe of
// the store backend.
type HealthController struct {
	store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{store: store}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health handles GET /healthz.
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: map[string]string{}}
	status := http.StatusOK

	if c.store != nil {
		if err := c.store.Ping(ctx); err != nil {
			logger.From(ctx).Warn("store unavailable",
				logger.Layer("controller"), logger.Op("HealthController.Health"), logger.Err(err))
			resp.Status = "unavailable"
			resp.Checks["store"] = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Checks["store"] = "ok"
		}
	}

	helpers.WriteJSON(w, status, resp)
}
