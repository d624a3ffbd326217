package session

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/grantkit/internal/jwt"
	"github.com/dropDatabas3/grantkit/internal/oauth2"
	"github.com/dropDatabas3/grantkit/internal/observability/logger"
	"github.com/dropDatabas3/grantkit/internal/store/core"
)

// SessionGetter loads sessions by ID; *Store satisfies it.
type SessionGetter interface {
	Get(ctx context.Context, id string) (*Session, error)
}

// ConsentChecker is the slice of the repository the validator needs.
type ConsentChecker interface {
	GetConsent(ctx context.Context, subject, clientID string) (*core.Consent, error)
}

// ValidatorDeps wires a Validator.
type ValidatorDeps struct {
	Sessions SessionGetter
	Consents ConsentChecker
	Keys     *jwt.Keystore // verifies id_token_hint signatures
	Issuer   string        // expected iss of our own ID tokens
}

// Validator answers the silent-authentication questions against the
// session store, the consent records, and our own signing keys.
type Validator struct {
	sessions SessionGetter
	consents ConsentChecker
	keys     *jwt.Keystore
	issuer   string
}

func NewValidator(d ValidatorDeps) *Validator {
	return &Validator{
		sessions: d.Sessions,
		consents: d.Consents,
		keys:     d.Keys,
		issuer:   d.Issuer,
	}
}

// ValidateSilentLogin reports whether the request carries a live session
// fresh enough for its max_age.
func (v *Validator) ValidateSilentLogin(ctx context.Context, req *oauth2.Request) (bool, error) {
	if req.SessionID == "" {
		return false, nil
	}
	sess, err := v.sessions.Get(ctx, req.SessionID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if req.MaxAge != nil && *req.MaxAge >= 0 {
		age := time.Now().UTC().Unix() - sess.AuthTime
		if age > *req.MaxAge {
			return false, nil
		}
	}
	return true, nil
}

// ValidateSilentAuthorization reports whether the session user already
// granted every requested scope to the client.
func (v *Validator) ValidateSilentAuthorization(ctx context.Context, req *oauth2.Request) (bool, error) {
	if req.Subject == "" {
		return false, nil
	}
	consent, err := v.consents.GetConsent(ctx, req.Subject, req.ClientID)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return consent.HasScopes(req.Scopes), nil
}

// ValidateUserMatch checks the session user against every user the client
// named: the id_token_hint subject and an id_token sub claim request. With
// neither present there is nothing to match and the verdict is true. An
// unverifiable hint counts as a mismatch rather than a server fault, so a
// forged or foreign hint fails closed into login_required.
func (v *Validator) ValidateUserMatch(ctx context.Context, idTokenHint string, scopes []string, claims map[string]any, req *oauth2.Request) (bool, error) {
	var want []string

	if idTokenHint != "" {
		hintClaims, err := jwt.ParseHint(idTokenHint, v.keys, v.issuer)
		if err != nil {
			logger.From(ctx).Debug("unverifiable id_token_hint",
				logger.Layer("session"), logger.Op("user_match"),
				logger.ClientID(req.ClientID), logger.Err(err))
			return false, nil
		}
		if sub, _ := hintClaims["sub"].(string); sub != "" {
			want = append(want, sub)
		}
	}

	if sub := requestedSubject(claims); sub != "" {
		want = append(want, sub)
	}

	if len(want) == 0 {
		return true, nil
	}
	if req.Subject == "" {
		return false, nil
	}
	for _, w := range want {
		if w != req.Subject {
			return false, nil
		}
	}
	return true, nil
}

// requestedSubject extracts claims.id_token.sub.value, the claims-parameter
// way of pinning the expected user.
func requestedSubject(claims map[string]any) string {
	idt, ok := claims["id_token"].(map[string]any)
	if !ok {
		return ""
	}
	sub, ok := idt["sub"].(map[string]any)
	if !ok {
		return ""
	}
	val, _ := sub["value"].(string)
	return val
}
