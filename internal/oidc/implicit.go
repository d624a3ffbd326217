package oidc

import (
	"context"

	"github.com/dropDatabas3/grantkit/internal/oauth2"
)

// ImplicitFlowDeps wires an OpenID implicit flow over a base implicit
// engine.
type ImplicitFlowDeps struct {
	Engine    oauth2.Engine
	Pipeline  *Pipeline
	Augmentor *TokenAugmentor
}

// ImplicitFlow extends the implicit engine with the "id_token" and
// "id_token token" response types. The augmentor runs as a token modifier
// inside the engine's authorization response assembly, so the ID token
// lands in the fragment next to the access token.
type ImplicitFlow struct {
	engine oauth2.Engine
}

func NewImplicitFlow(d ImplicitFlowDeps) *ImplicitFlow {
	d.Engine.RegisterResponseType("id_token")
	d.Engine.RegisterResponseType("id_token token")
	d.Engine.RegisterAuthorizeValidator(d.Pipeline.ValidateAuthorizeRequest)
	d.Engine.RegisterAuthorizeValidator(ValidateImplicitRequest)
	d.Engine.RegisterTokenModifier(d.Augmentor.AddIDToken)
	return &ImplicitFlow{engine: d.Engine}
}

func (f *ImplicitFlow) ValidateAuthorizationRequest(ctx context.Context, req *oauth2.Request) ([]string, *oauth2.RequestInfo, error) {
	return f.engine.ValidateAuthorizationRequest(ctx, req)
}

func (f *ImplicitFlow) CreateAuthorizationResponse(ctx context.Context, req *oauth2.Request, issuer oauth2.TokenIssuer) (*oauth2.AuthorizationResponse, error) {
	return f.engine.CreateAuthorizationResponse(ctx, req, issuer)
}

// CreateTokenResponse delegates to the engine, which rejects it: the
// implicit grant has no token endpoint leg.
func (f *ImplicitFlow) CreateTokenResponse(ctx context.Context, req *oauth2.Request, issuer oauth2.TokenIssuer) (*oauth2.TokenResponse, error) {
	return f.engine.CreateTokenResponse(ctx, req, issuer)
}

// ValidateImplicitRequest is the implicit-specific authorize validator.
// Plain OAuth2 requests (response_type=token) pass untouched; response
// types carrying an id_token require the openid scope and a nonce
// (OIDC Core 3.2.2.1, 3.2.2.11).
func ValidateImplicitRequest(ctx context.Context, req *oauth2.Request) (*oauth2.RequestInfo, error) {
	if req.ResponseType == "token" {
		return nil, nil
	}
	if !req.HasResponseType("id_token") {
		return nil, nil
	}
	if !req.HasOpenIDScope() {
		return nil, oauth2.ErrInvalidRequest.WithDescription("the openid scope is required when requesting an id_token")
	}
	if req.Nonce == "" {
		return nil, oauth2.ErrInvalidRequest.WithDescription("nonce is required when requesting an id_token from the authorization endpoint")
	}
	return nil, nil
}
