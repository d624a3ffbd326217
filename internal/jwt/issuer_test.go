package jwt

import (
	"errors"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	ks := NewKeystore()
	if err := ks.EnsureBootstrap(); err != nil {
		t.Fatalf("EnsureBootstrap: %v", err)
	}
	return NewIssuer("https://issuer.test", ks)
}

func TestIssueAccessRoundTrip(t *testing.T) {
	iss := newTestIssuer(t)

	token, exp, err := iss.IssueAccess("user-1", "client-1", map[string]any{"scope": "openid profile"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if time.Until(exp) > 15*time.Minute || time.Until(exp) < 14*time.Minute {
		t.Fatalf("exp %v not ~15m out", exp)
	}

	claims, err := ParseEdDSA(token, iss.Keys, "https://issuer.test")
	if err != nil {
		t.Fatalf("ParseEdDSA: %v", err)
	}
	if claims["sub"] != "user-1" || claims["aud"] != "client-1" {
		t.Fatalf("unexpected sub/aud: %v / %v", claims["sub"], claims["aud"])
	}
	if claims["scope"] != "openid profile" {
		t.Fatalf("scope claim = %v", claims["scope"])
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	iss := newTestIssuer(t)
	token, _, err := iss.IssueAccess("user-1", "client-1", nil)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := ParseEdDSA(token, iss.Keys, "https://other.test"); !errors.Is(err, ErrInvalidIssuer) {
		t.Fatalf("got %v, want ErrInvalidIssuer", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	a := newTestIssuer(t)
	b := newTestIssuer(t)

	token, _, err := a.IssueAccess("user-1", "client-1", nil)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := ParseEdDSA(token, b.Keys, "https://issuer.test"); err == nil {
		t.Fatalf("token signed by a foreign key verified")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	iss := newTestIssuer(t)
	iss.AccessTTL = -time.Hour

	token, _, err := iss.IssueAccess("user-1", "client-1", nil)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := ParseEdDSA(token, iss.Keys, "https://issuer.test"); err == nil {
		t.Fatalf("expired token verified")
	}
}

func TestParseHintAcceptsExpired(t *testing.T) {
	iss := newTestIssuer(t)
	iss.IDTTL = -time.Hour

	token, _, err := iss.IssueIDToken("user-1", "client-1", map[string]any{"sid": "sess-9"})
	if err != nil {
		t.Fatalf("IssueIDToken: %v", err)
	}

	claims, err := ParseHint(token, iss.Keys, "https://issuer.test")
	if err != nil {
		t.Fatalf("ParseHint rejected an expired hint: %v", err)
	}
	if claims["sub"] != "user-1" || claims["sid"] != "sess-9" {
		t.Fatalf("unexpected hint claims: %v", claims)
	}

	if _, err := ParseHint(token, iss.Keys, "https://other.test"); !errors.Is(err, ErrInvalidIssuer) {
		t.Fatalf("hint with wrong issuer: got %v, want ErrInvalidIssuer", err)
	}
}

func TestParseAcceptsRetiringKeyByKID(t *testing.T) {
	iss := newTestIssuer(t)

	token, _, err := iss.IssueAccess("user-1", "client-1", nil)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := iss.Keys.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	// The kid header routes verification to the retiring key.
	if _, err := ParseEdDSA(token, iss.Keys, "https://issuer.test"); err != nil {
		t.Fatalf("pre-rotation token no longer verifies: %v", err)
	}
}
