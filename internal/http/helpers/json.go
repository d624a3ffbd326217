// Package helpers carries the small response-writing utilities shared by
// the controllers.
package helpers

import (
	"encoding/json"
	"net/http"

	"github.com/dropDatabas3/grantkit/internal/oauth2"
)

// WriteJSON writes a JSON response with the standard headers.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOAuthError writes err as the protocol error envelope
// (error / error_description) with the error's HTTP status. Errors that are
// not *oauth2.Error fold into server_error.
func WriteOAuthError(w http.ResponseWriter, err error) {
	pe := oauth2.FromError(err)
	status := pe.Status
	if status == 0 {
		status = http.StatusBadRequest
	}
	WriteJSON(w, status, pe)
}
