package oauth2

import (
	"context"
	"strconv"

	"github.com/dropDatabas3/grantkit/internal/observability/logger"
)

// ImplicitDeps contains dependencies for the implicit engine.
type ImplicitDeps struct {
	Clients ClientDirectory
}

// ImplicitEngine implements the implicit grant (RFC 6749 §4.2): tokens are
// issued directly from the authorization endpoint and delivered in the
// redirect fragment. The grant has no token endpoint leg.
type ImplicitEngine struct {
	Hooks

	clients ClientDirectory
}

// NewImplicitEngine creates the engine with "token" registered as its base
// response type.
func NewImplicitEngine(d ImplicitDeps) *ImplicitEngine {
	e := &ImplicitEngine{clients: d.Clients}
	e.RegisterResponseType("token")
	return e
}

// ValidateAuthorizationRequest checks the request against the client
// registration and the registered validator hooks.
func (e *ImplicitEngine) ValidateAuthorizationRequest(ctx context.Context, req *Request) ([]string, *RequestInfo, error) {
	log := logger.From(ctx).With(logger.Layer("engine"), logger.Op("Implicit.ValidateAuthorizationRequest"))

	if req.ClientID == "" {
		return nil, nil, ErrInvalidRequest.WithDescription("missing client_id parameter")
	}
	client, err := e.clients.FindClient(ctx, req.ClientID)
	if err != nil {
		log.Debug("client resolution failed", logger.Err(err), logger.ClientID(req.ClientID))
		return nil, nil, ErrInvalidClient.WithCause(err)
	}

	if err := validateAuthorizeBasics(e.SupportsResponseType, client, req); err != nil {
		log.Debug("authorize validation failed", logger.Err(err), logger.ClientID(req.ClientID))
		return nil, nil, err
	}

	info, err := e.runAuthorizeValidators(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	granted := append([]string(nil), req.Scopes...)
	return granted, info, nil
}

// CreateAuthorizationResponse validates the request and issues the
// response artifacts directly in the redirect fragment.
func (e *ImplicitEngine) CreateAuthorizationResponse(ctx context.Context, req *Request, issuer TokenIssuer) (*AuthorizationResponse, error) {
	log := logger.From(ctx).With(logger.Layer("engine"), logger.Op("Implicit.CreateAuthorizationResponse"))

	granted, _, err := e.ValidateAuthorizationRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Subject == "" {
		return nil, ErrAccessDenied.WithDescription("no authenticated end-user on the request")
	}
	req.GrantedScopes = granted

	tr := &TokenResponse{}
	if req.HasResponseType("token") {
		at, expiresIn, err := issuer.IssueAccessToken(ctx, req)
		if err != nil {
			return nil, ErrServerError.WithCause(err)
		}
		tr.AccessToken = at
		tr.TokenType = "Bearer"
		tr.ExpiresIn = expiresIn
		tr.Scope = JoinScopes(granted)
	}

	if err := e.runTokenModifiers(ctx, tr, req); err != nil {
		return nil, err
	}

	resp := NewAuthorizationResponse(req.RedirectURI)
	if tr.AccessToken != "" {
		resp.Fragment.Set("access_token", tr.AccessToken)
		resp.Fragment.Set("token_type", tr.TokenType)
		resp.Fragment.Set("expires_in", strconv.FormatInt(tr.ExpiresIn, 10))
		if tr.Scope != "" {
			resp.Fragment.Set("scope", tr.Scope)
		}
	}
	if tr.IDToken != "" {
		resp.Fragment.Set("id_token", tr.IDToken)
	}
	if req.State != "" {
		resp.Fragment.Set("state", req.State)
	}

	log.Info("implicit authorization issued",
		logger.ClientID(req.ClientID),
		logger.Subject(req.Subject),
		logger.ResponseType(CanonicalResponseType(req.ResponseType)),
	)
	return resp, nil
}

// CreateTokenResponse always fails: the implicit grant has no token
// endpoint leg.
func (e *ImplicitEngine) CreateTokenResponse(ctx context.Context, req *Request, issuer TokenIssuer) (*TokenResponse, error) {
	return nil, ErrUnsupportedGrantType.WithDescription("the implicit grant does not use the token endpoint")
}
