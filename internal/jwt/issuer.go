// Package jwt signs and verifies the EdDSA tokens the server issues:
// bearer access tokens and OpenID Connect ID tokens.
package jwt

import (
	"crypto/ed25519"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidIssuer = errors.New("invalid_issuer")

// Issuer signs tokens with the keystore's active key.
type Issuer struct {
	Iss       string        // "iss" claim
	Keys      *Keystore     // signing/verification keys
	AccessTTL time.Duration // access token lifetime (default 15m)
	IDTTL     time.Duration // ID token lifetime (default 1h)
}

func NewIssuer(iss string, ks *Keystore) *Issuer {
	return &Issuer{
		Iss:       iss,
		Keys:      ks,
		AccessTTL: 15 * time.Minute,
		IDTTL:     time.Hour,
	}
}

// ActiveKID returns the current signing KID.
func (i *Issuer) ActiveKID() (string, error) {
	kid, _, _, err := i.Keys.Active()
	return kid, err
}

// Keyfunc returns a jwt.Keyfunc selecting the public key by the token's
// 'kid' header (active or retiring). Tokens without kid verify against the
// active key.
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid != "" {
			return i.Keys.PublicKeyByKID(kid)
		}
		_, _, pub, err := i.Keys.Active()
		if err != nil {
			return nil, err
		}
		return ed25519.PublicKey(pub), nil
	}
}

// SignRaw signs arbitrary MapClaims, sets the kid/typ headers, and returns
// the compact JWT plus the KID used.
func (i *Issuer) SignRaw(claims jwtv5.MapClaims) (string, string, error) {
	kid, priv, _, err := i.Keys.Active()
	if err != nil {
		return "", "", err
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = kid
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(priv)
	if err != nil {
		return "", "", err
	}
	return signed, kid, nil
}

// IssueAccess mints an access token with the standard claims plus std
// merged flat on top.
func (i *Issuer) IssueAccess(sub, aud string, std map[string]any) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.AccessTTL)

	claims := jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": sub,
		"aud": aud,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	for k, v := range std {
		claims[k] = v
	}

	signed, _, err := i.SignRaw(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueIDToken mints an OIDC ID token with the standard claims plus extra
// merged flat on top.
func (i *Issuer) IssueIDToken(sub, aud string, extra map[string]any) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.IDTTL)

	claims := jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": sub,
		"aud": aud,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}

	signed, _, err := i.SignRaw(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// JWKSJSON exposes the current JWKS (active + retiring).
func (i *Issuer) JWKSJSON() []byte {
	j, _ := i.Keys.JWKSJSON()
	return j
}
