package jwt

import (
	"crypto/ed25519"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ParseEdDSA verifies the EdDSA signature against the keystore (by kid, or
// the active key), checks iss when expectedIss is non-empty, and validates
// exp/nbf with a small tolerance. Claims are returned as a plain map.
func ParseEdDSA(token string, ks *Keystore, expectedIss string) (map[string]any, error) {
	tok, err := jwtv5.Parse(token, keystoreKeyfunc(ks), jwtv5.WithValidMethods([]string{"EdDSA"}))
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid_jwt")
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, errors.New("claims_type")
	}

	if expectedIss != "" {
		if iss, _ := claims["iss"].(string); iss != expectedIss {
			return nil, ErrInvalidIssuer
		}
	}

	now := time.Now()
	if expf, ok := claims["exp"].(float64); ok {
		if time.Unix(int64(expf), 0).Before(now.Add(-30 * time.Second)) {
			return nil, errors.New("expired")
		}
	}
	if nbff, ok := claims["nbf"].(float64); ok {
		if time.Unix(int64(nbff), 0).After(now.Add(30 * time.Second)) {
			return nil, errors.New("not_before")
		}
	}

	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	return out, nil
}

// ParseHint verifies the signature and issuer of an id_token_hint but
// deliberately skips exp/nbf: per OIDC Core §3.1.2.1 an expired ID token
// remains a usable hint for naming the session it came from.
func ParseHint(token string, ks *Keystore, expectedIss string) (map[string]any, error) {
	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{"EdDSA"}),
		jwtv5.WithoutClaimsValidation(),
	)
	tok, err := parser.Parse(token, keystoreKeyfunc(ks))
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid_jwt")
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, errors.New("claims_type")
	}
	if expectedIss != "" {
		if iss, _ := claims["iss"].(string); iss != expectedIss {
			return nil, ErrInvalidIssuer
		}
	}

	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	return out, nil
}

func keystoreKeyfunc(ks *Keystore) jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid != "" {
			return ks.PublicKeyByKID(kid)
		}
		_, _, pub, err := ks.Active()
		if err != nil {
			return nil, err
		}
		return ed25519.PublicKey(pub), nil
	}
}
