package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func doHealth(t *testing.T, c *HealthController) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	c.Health(w, r)

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return w, body
}

func TestHealthOK(t *testing.T) {
	c := NewHealthController(stubPinger{})

	w, body := doHealth(t, c)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %v, want ok", body["status"])
	}
	checks, _ := body["checks"].(map[string]any)
	if checks["store"] != "ok" {
		t.Fatalf("checks.store = %v, want ok", checks["store"])
	}
}

func TestHealthStoreDown(t *testing.T) {
	c := NewHealthController(stubPinger{err: errors.New("connection refused")})

	w, body := doHealth(t, c)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if body["status"] != "unavailable" {
		t.Fatalf("status field = %v, want unavailable", body["status"])
	}
}

func TestHealthNilStore(t *testing.T) {
	c := NewHealthController(nil)

	w, _ := doHealth(t, c)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
