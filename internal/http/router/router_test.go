package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	healthctrl "github.com/dropDatabas3/grantkit/internal/http/controllers/health"
)

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

func newTestRouter() http.Handler {
	return New(Deps{
		Health: healthctrl.NewHealthController(okPinger{}),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	})
}

func TestRouterMountsHealthAndMetrics(t *testing.T) {
	h := newTestRouter()

	for _, path := range []string{"/healthz", "/metrics"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouterAppliesOuterChain(t *testing.T) {
	h := newTestRouter()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	// No-store is scoped to the OAuth group, not the whole tree.
	require.Empty(t, w.Header().Get("Cache-Control"))
}

func TestRouterUnknownRoute(t *testing.T) {
	h := newTestRouter()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterSkipsUnwiredEndpoints(t *testing.T) {
	h := New(Deps{})

	for _, path := range []string{"/oauth2/authorize", "/oauth2/token", "/healthz", "/metrics"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusNotFound, w.Code, path)
	}
}
