package jwt

import (
	"context"
	"testing"

	"github.com/dropDatabas3/grantkit/internal/oauth2"
)

func TestGenerateIDTokenBaseClaims(t *testing.T) {
	iss := newTestIssuer(t)
	signer := NewIDTokenSigner(iss)

	req := &oauth2.Request{
		ClientID: "web",
		Subject:  "user-1",
		Scopes:   []string{"openid"},
	}
	token, err := signer.GenerateIDToken(context.Background(), req, "")
	if err != nil {
		t.Fatalf("GenerateIDToken: %v", err)
	}

	claims, err := ParseEdDSA(token, iss.Keys, "https://issuer.test")
	if err != nil {
		t.Fatalf("ParseEdDSA: %v", err)
	}
	if claims["sub"] != "user-1" || claims["aud"] != "web" {
		t.Fatalf("unexpected sub/aud: %v / %v", claims["sub"], claims["aud"])
	}
	for _, absent := range []string{"nonce", "auth_time", "acr", "amr", "at_hash", "c_hash", "sid"} {
		if _, ok := claims[absent]; ok {
			t.Fatalf("claim %q present on a minimal request", absent)
		}
	}
	if jti, _ := claims["jti"].(string); jti == "" {
		t.Fatalf("missing jti")
	}
}

func TestGenerateIDTokenFullClaims(t *testing.T) {
	iss := newTestIssuer(t)
	signer := NewIDTokenSigner(iss)

	req := &oauth2.Request{
		ClientID:  "web",
		Subject:   "user-1",
		SessionID: "sess-9",
		Scopes:    []string{"openid"},
		Nonce:     "n-abc",
		AuthTime:  1700000000,
		ACR:       "urn:mace:incommon:iap:silver",
		AMR:       []string{"pwd", "otp"},
		Code:      "authz-code",
	}
	token, err := signer.GenerateIDToken(context.Background(), req, "the-access-token")
	if err != nil {
		t.Fatalf("GenerateIDToken: %v", err)
	}

	claims, err := ParseEdDSA(token, iss.Keys, "https://issuer.test")
	if err != nil {
		t.Fatalf("ParseEdDSA: %v", err)
	}
	if claims["nonce"] != "n-abc" {
		t.Fatalf("nonce = %v", claims["nonce"])
	}
	if at, _ := claims["auth_time"].(float64); int64(at) != 1700000000 {
		t.Fatalf("auth_time = %v", claims["auth_time"])
	}
	if claims["acr"] != "urn:mace:incommon:iap:silver" {
		t.Fatalf("acr = %v", claims["acr"])
	}
	amr, ok := claims["amr"].([]any)
	if !ok || len(amr) != 2 || amr[0] != "pwd" || amr[1] != "otp" {
		t.Fatalf("amr = %v", claims["amr"])
	}
	if claims["sid"] != "sess-9" {
		t.Fatalf("sid = %v", claims["sid"])
	}
	if claims["at_hash"] != LeftmostHash("the-access-token") {
		t.Fatalf("at_hash = %v", claims["at_hash"])
	}
	if claims["c_hash"] != LeftmostHash("authz-code") {
		t.Fatalf("c_hash = %v", claims["c_hash"])
	}
}

func TestGenerateIDTokenMaxAgeRequiresAuthTime(t *testing.T) {
	iss := newTestIssuer(t)
	signer := NewIDTokenSigner(iss)

	maxAge := int64(300)
	req := &oauth2.Request{
		ClientID: "web",
		Subject:  "user-1",
		Scopes:   []string{"openid"},
		MaxAge:   &maxAge,
	}
	if _, err := signer.GenerateIDToken(context.Background(), req, ""); err == nil {
		t.Fatalf("max_age without auth_time must fail")
	}
}

func TestLeftmostHash(t *testing.T) {
	a := LeftmostHash("token-a")
	b := LeftmostHash("token-b")
	if a == b {
		t.Fatalf("distinct inputs hashed equal")
	}
	if a != LeftmostHash("token-a") {
		t.Fatalf("hash not deterministic")
	}
	// 128 bits, base64url without padding.
	if len(a) != 22 {
		t.Fatalf("hash length = %d, want 22", len(a))
	}
}

func TestAccessTokenIssuer(t *testing.T) {
	iss := newTestIssuer(t)
	ati := NewAccessTokenIssuer(iss)

	req := &oauth2.Request{
		ClientID:      "web",
		Subject:       "user-1",
		SessionID:     "sess-9",
		GrantedScopes: []string{"openid", "profile"},
	}
	token, expiresIn, err := ati.IssueAccessToken(context.Background(), req)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if expiresIn < 890 || expiresIn > 900 {
		t.Fatalf("expiresIn = %d, want ~900", expiresIn)
	}

	claims, err := ParseEdDSA(token, iss.Keys, "https://issuer.test")
	if err != nil {
		t.Fatalf("ParseEdDSA: %v", err)
	}
	if claims["scope"] != "openid profile" {
		t.Fatalf("scope = %v", claims["scope"])
	}
	if claims["client_id"] != "web" || claims["sid"] != "sess-9" {
		t.Fatalf("client_id/sid = %v / %v", claims["client_id"], claims["sid"])
	}
}
