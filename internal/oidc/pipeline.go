// Package oidc layers OpenID Connect semantics on top of the generic
// OAuth2 grant engines: authentication-context validation (prompt, silent
// login, consent), ID-token augmentation of token responses, and per-flow
// composition for the authorization code, implicit, and hybrid flows.
//
// Nothing here replaces OAuth2 processing. The pipeline and augmentor are
// hooks the flows register on an engine at wiring time; a request without
// the "openid" scope passes through both completely untouched.
package oidc

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dropDatabas3/grantkit/internal/oauth2"
	"github.com/dropDatabas3/grantkit/internal/observability/logger"
)

// SessionValidator supplies the session and consent decisions the pipeline
// needs. Implemented by the host application; internal/session carries the
// reference implementation. A false verdict maps to a protocol error, a
// non-nil error is a server fault and propagates unchanged.
type SessionValidator interface {
	// ValidateSilentLogin reports whether the end-user named by the request
	// already has an authenticated session usable without interaction.
	ValidateSilentLogin(ctx context.Context, req *oauth2.Request) (bool, error)

	// ValidateSilentAuthorization reports whether the end-user already
	// granted the requested scopes to the client.
	ValidateSilentAuthorization(ctx context.Context, req *oauth2.Request) (bool, error)

	// ValidateUserMatch reports whether the session user matches the user
	// the client asked for via id_token_hint / claims.
	ValidateUserMatch(ctx context.Context, idTokenHint string, scopes []string, claims map[string]any, req *oauth2.Request) (bool, error)
}

// Pipeline runs the OpenID Connect checks on an authorization request.
// Its ValidateAuthorizeRequest method has the engine's validator shape, so
// flows register it directly. Stateless: one instance is shared by every
// flow variant.
type Pipeline struct {
	Sessions SessionValidator
}

func NewPipeline(sessions SessionValidator) *Pipeline {
	return &Pipeline{Sessions: sessions}
}

// ValidateAuthorizeRequest applies the OIDC authorization-request checks
// in a fixed order; the order decides which error code the caller sees and
// must not change. A (nil, nil) return means the request is not an OIDC
// request and the engine proceeds as for plain OAuth2.
//
// Side effect: req.Claims is set to the parsed form of req.RawClaims
// (empty map when absent), so downstream hooks always see a map.
func (p *Pipeline) ValidateAuthorizeRequest(ctx context.Context, req *oauth2.Request) (*oauth2.RequestInfo, error) {
	// 1. Not an OIDC request.
	if !req.HasOpenIDScope() {
		return nil, nil
	}

	log := logger.From(ctx).With(logger.Layer("oidc"), logger.Op("validate_authorize"))

	// 2. "none" tolerates no company.
	prompt := req.PromptValues()
	if len(prompt) > 1 && hasToken(prompt, "none") {
		return nil, oauth2.ErrInvalidRequest.WithDescription("prompt none must not be combined with other values")
	}
	silent := len(prompt) == 1 && prompt[0] == "none"

	// 3. A silent request must name the session it claims.
	if silent && req.IDTokenHint == "" {
		return nil, oauth2.ErrInvalidRequest.WithDescription("prompt is set to none yet id_token_hint is missing")
	}

	// 4. Login strictly before consent: a user who is not logged in must
	// never see consent_required.
	if silent {
		ok, err := p.Sessions.ValidateSilentLogin(ctx, req)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Debug("silent login rejected", logger.ClientID(req.ClientID))
			return nil, oauth2.ErrLoginRequired
		}
		ok, err = p.Sessions.ValidateSilentAuthorization(ctx, req)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Debug("silent authorization rejected", logger.ClientID(req.ClientID))
			return nil, oauth2.ErrConsentRequired
		}
	}

	// 5. Normalize claims to a map even when the parameter is absent.
	claims := map[string]any{}
	if strings.TrimSpace(req.RawClaims) != "" {
		if err := json.Unmarshal([]byte(req.RawClaims), &claims); err != nil {
			return nil, oauth2.ErrInvalidRequest.WithDescription("malformed claims parameter").WithCause(err)
		}
	}
	req.Claims = claims

	// 6. The session user must be the user the client asked about.
	ok, err := p.Sessions.ValidateUserMatch(ctx, req.IDTokenHint, req.Scopes, claims, req)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Debug("user mismatch", logger.ClientID(req.ClientID))
		return nil, oauth2.ErrLoginRequired.WithDescription("session user does not match client supplied user")
	}

	// 7. Summarize the authentication context for the caller.
	return &oauth2.RequestInfo{
		Display:     req.Display,
		Prompt:      prompt,
		UILocales:   req.UILocaleValues(),
		IDTokenHint: req.IDTokenHint,
		LoginHint:   req.LoginHint,
	}, nil
}

func hasToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}
