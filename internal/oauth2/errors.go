package oauth2

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a protocol-level failure in the wire shape of RFC 6749 §4.1.2.1
// and OIDC Core §3.1.2.6: an error code plus an optional human-readable
// description. Status is the HTTP status used when the failure cannot be
// delivered as a redirect.
type Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	Status      int    `json:"-"`
	Err         error  `json:"-"` // wrapped cause, for logs only
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Description, e.Err)
	}
	if e.Description != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Description)
	}
	return e.Code
}

// Unwrap exposes the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches by protocol code, so copies made with WithDescription or
// WithCause still satisfy errors.Is against the base values.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDescription returns a COPY of the error with the description replaced.
// The base values stay untouched.
func (e *Error) WithDescription(desc string) *Error {
	ne := *e
	ne.Description = desc
	return &ne
}

// WithCause returns a COPY of the error carrying the original cause.
func (e *Error) WithCause(err error) *Error {
	ne := *e
	ne.Err = err
	return &ne
}

// FromError converts any error into a protocol *Error. Unknown errors map
// to server_error with the cause preserved for logging.
func FromError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return ErrServerError.WithCause(err)
}

// =================================================================================
// PREDEFINED PROTOCOL ERRORS
// =================================================================================

var (
	// OIDC authentication-context failures.

	ErrInvalidRequest = &Error{
		Code:        "invalid_request",
		Description: "the request is missing a required parameter or is otherwise malformed",
		Status:      http.StatusBadRequest,
	}

	ErrLoginRequired = &Error{
		Code:        "login_required",
		Description: "end-user authentication is required",
		Status:      http.StatusUnauthorized,
	}

	ErrConsentRequired = &Error{
		Code:        "consent_required",
		Description: "end-user consent is required",
		Status:      http.StatusForbidden,
	}

	// Base grant failures.

	ErrInvalidClient = &Error{
		Code:        "invalid_client",
		Description: "client authentication failed or the client is unknown",
		Status:      http.StatusUnauthorized,
	}

	ErrInvalidGrant = &Error{
		Code:        "invalid_grant",
		Description: "the authorization grant is invalid, expired, or revoked",
		Status:      http.StatusBadRequest,
	}

	ErrInvalidScope = &Error{
		Code:        "invalid_scope",
		Description: "the requested scope exceeds what the client may request",
		Status:      http.StatusBadRequest,
	}

	ErrUnauthorizedClient = &Error{
		Code:        "unauthorized_client",
		Description: "the client is not authorized to use this grant",
		Status:      http.StatusBadRequest,
	}

	ErrUnsupportedResponseType = &Error{
		Code:        "unsupported_response_type",
		Description: "the requested response type is not supported",
		Status:      http.StatusBadRequest,
	}

	ErrUnsupportedGrantType = &Error{
		Code:        "unsupported_grant_type",
		Description: "the requested grant type is not supported",
		Status:      http.StatusBadRequest,
	}

	ErrAccessDenied = &Error{
		Code:        "access_denied",
		Description: "the resource owner or server denied the request",
		Status:      http.StatusForbidden,
	}

	ErrServerError = &Error{
		Code:        "server_error",
		Description: "the server encountered an unexpected condition",
		Status:      http.StatusInternalServerError,
	}
)
