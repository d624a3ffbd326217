package oauth2

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := ErrInvalidRequest.WithDescription("prompt is set to none yet id_token_hint is missing")
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatal("WithDescription copy must still match the base value")
	}
	if errors.Is(err, ErrLoginRequired) {
		t.Fatal("different codes must not match")
	}
}

func TestErrorWithDescriptionDoesNotMutateBase(t *testing.T) {
	before := ErrLoginRequired.Description
	_ = ErrLoginRequired.WithDescription("session user does not match client supplied user")
	if ErrLoginRequired.Description != before {
		t.Fatal("WithDescription mutated the base value")
	}
}

func TestErrorWithCauseUnwraps(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := ErrServerError.WithCause(cause)
	if !errors.Is(err, cause) {
		t.Fatal("cause must be reachable through Unwrap")
	}
	if !errors.Is(err, ErrServerError) {
		t.Fatal("copy must still match the base value")
	}
}

func TestFromError(t *testing.T) {
	if got := FromError(ErrConsentRequired); got.Code != "consent_required" {
		t.Fatalf("FromError(protocol) code = %s", got.Code)
	}

	wrapped := fmt.Errorf("engine: %w", ErrInvalidScope)
	if got := FromError(wrapped); got.Code != "invalid_scope" {
		t.Fatalf("FromError(wrapped) code = %s; want invalid_scope", got.Code)
	}

	plain := errors.New("disk on fire")
	got := FromError(plain)
	if got.Code != "server_error" {
		t.Fatalf("FromError(unknown) code = %s; want server_error", got.Code)
	}
	if !errors.Is(got, plain) {
		t.Fatal("FromError must keep the unknown error as cause")
	}
}
