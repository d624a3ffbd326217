package jwt

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/grantkit/internal/oauth2"
)

// IDTokenSigner builds the ID token for a validated request. It is the
// default strategy wired behind the token augmentor.
//
// Claim policy:
//   - iss/sub/aud/iat/nbf/exp always, aud = client_id.
//   - nonce echoed when the request carried one.
//   - auth_time whenever the session reported it, and mandatory when the
//     request asked for max_age (OIDC Core §2).
//   - acr/amr copied from the session when present.
//   - at_hash when an access token accompanies the ID token, c_hash when a
//     code does (hybrid fragment responses).
type IDTokenSigner struct {
	Issuer *Issuer
}

func NewIDTokenSigner(iss *Issuer) *IDTokenSigner {
	return &IDTokenSigner{Issuer: iss}
}

// GenerateIDToken signs an ID token for the request. accessToken may be
// empty (e.g. response_type=id_token).
func (s *IDTokenSigner) GenerateIDToken(ctx context.Context, req *oauth2.Request, accessToken string) (string, error) {
	extra := map[string]any{
		"jti": uuid.NewString(),
	}
	if req.Nonce != "" {
		extra["nonce"] = req.Nonce
	}
	if req.AuthTime > 0 {
		extra["auth_time"] = req.AuthTime
	} else if req.MaxAge != nil {
		return "", fmt.Errorf("max_age requested but the session carries no auth_time")
	}
	if req.ACR != "" {
		extra["acr"] = req.ACR
	}
	if len(req.AMR) > 0 {
		extra["amr"] = req.AMR
	}
	if req.SessionID != "" {
		extra["sid"] = req.SessionID
	}
	if accessToken != "" {
		extra["at_hash"] = LeftmostHash(accessToken)
	}
	if req.Code != "" {
		extra["c_hash"] = LeftmostHash(req.Code)
	}

	signed, _, err := s.Issuer.IssueIDToken(req.Subject, req.ClientID, extra)
	if err != nil {
		return "", fmt.Errorf("sign id token: %w", err)
	}
	return signed, nil
}

// LeftmostHash computes base64url(left-most 128 bits of SHA-256(input)),
// the at_hash/c_hash construction for EdDSA ID tokens.
func LeftmostHash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return base64.RawURLEncoding.EncodeToString(sum[:len(sum)/2])
}

// AccessTokenIssuer adapts Issuer to the engine's TokenIssuer interface.
type AccessTokenIssuer struct {
	Issuer *Issuer
}

func NewAccessTokenIssuer(iss *Issuer) *AccessTokenIssuer {
	return &AccessTokenIssuer{Issuer: iss}
}

// IssueAccessToken mints a bearer access token for the granted scopes.
func (a *AccessTokenIssuer) IssueAccessToken(ctx context.Context, req *oauth2.Request) (string, int64, error) {
	std := map[string]any{
		"jti":       uuid.NewString(),
		"client_id": req.ClientID,
	}
	if len(req.GrantedScopes) > 0 {
		std["scope"] = oauth2.JoinScopes(req.GrantedScopes)
	}
	if req.SessionID != "" {
		std["sid"] = req.SessionID
	}

	signed, exp, err := a.Issuer.IssueAccess(req.Subject, req.ClientID, std)
	if err != nil {
		return "", 0, fmt.Errorf("sign access token: %w", err)
	}
	return signed, int64(time.Until(exp).Seconds()), nil
}
