package oidc

import (
	"context"

	"github.com/dropDatabas3/grantkit/internal/oauth2"
)

// AuthCodeFlowDeps wires an OpenID authorization code flow. Engine is the
// base authorization-code engine; the flow only registers hooks on it.
type AuthCodeFlowDeps struct {
	Engine    oauth2.Engine
	Pipeline  *Pipeline
	Augmentor *TokenAugmentor
}

// AuthCodeFlow is the authorization code flow with OpenID semantics. It is
// composition, not inheritance: construction registers the pipeline as an
// authorize validator and the augmentor as a token modifier, and every
// operation afterwards is pure delegation to the wrapped engine.
type AuthCodeFlow struct {
	engine oauth2.Engine
}

func NewAuthCodeFlow(d AuthCodeFlowDeps) *AuthCodeFlow {
	d.Engine.RegisterAuthorizeValidator(d.Pipeline.ValidateAuthorizeRequest)
	d.Engine.RegisterTokenModifier(d.Augmentor.AddIDToken)
	return &AuthCodeFlow{engine: d.Engine}
}

// ValidateAuthorizationRequest returns the granted scopes and the
// authentication-context summary, so the caller can decide whether an
// interactive prompt is required before producing a response.
func (f *AuthCodeFlow) ValidateAuthorizationRequest(ctx context.Context, req *oauth2.Request) ([]string, *oauth2.RequestInfo, error) {
	return f.engine.ValidateAuthorizationRequest(ctx, req)
}

func (f *AuthCodeFlow) CreateAuthorizationResponse(ctx context.Context, req *oauth2.Request, issuer oauth2.TokenIssuer) (*oauth2.AuthorizationResponse, error) {
	return f.engine.CreateAuthorizationResponse(ctx, req, issuer)
}

func (f *AuthCodeFlow) CreateTokenResponse(ctx context.Context, req *oauth2.Request, issuer oauth2.TokenIssuer) (*oauth2.TokenResponse, error) {
	return f.engine.CreateTokenResponse(ctx, req, issuer)
}
