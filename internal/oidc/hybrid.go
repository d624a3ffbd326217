package oidc

import (
	"context"
	"strings"

	"github.com/dropDatabas3/grantkit/internal/oauth2"
)

// HybridFlowDeps wires a hybrid flow over two base engines. Both engines
// share the same pipeline instance; the engines themselves stay unaware of
// each other.
type HybridFlowDeps struct {
	CodeEngine     oauth2.Engine
	ImplicitEngine oauth2.Engine
	Pipeline       *Pipeline
	Augmentor      *TokenAugmentor
}

// HybridFlow composes an authorization-code engine (for the response types
// containing "code") with an implicit engine (for the pure id_token
// variants). Each incoming request is routed to exactly one of the two by
// response-type membership; they never both process the same request.
type HybridFlow struct {
	code     oauth2.Engine
	implicit oauth2.Engine
}

func NewHybridFlow(d HybridFlowDeps) *HybridFlow {
	for _, rt := range []string{"code id_token", "code token", "code id_token token"} {
		d.CodeEngine.RegisterResponseType(rt)
	}
	d.CodeEngine.RegisterAuthorizeValidator(d.Pipeline.ValidateAuthorizeRequest)
	d.CodeEngine.RegisterAuthorizeValidator(ValidateImplicitRequest)
	d.CodeEngine.RegisterTokenModifier(d.Augmentor.AddIDToken)

	d.ImplicitEngine.RegisterResponseType("id_token")
	d.ImplicitEngine.RegisterResponseType("id_token token")
	d.ImplicitEngine.RegisterAuthorizeValidator(d.Pipeline.ValidateAuthorizeRequest)
	d.ImplicitEngine.RegisterAuthorizeValidator(ValidateImplicitRequest)
	d.ImplicitEngine.RegisterTokenModifier(d.Augmentor.AddIDToken)

	return &HybridFlow{code: d.CodeEngine, implicit: d.ImplicitEngine}
}

// engineFor routes a response type to its engine: any set containing
// "code" belongs to the code engine, everything else to the implicit one.
func (f *HybridFlow) engineFor(responseType string) oauth2.Engine {
	for _, tok := range strings.Fields(responseType) {
		if tok == "code" {
			return f.code
		}
	}
	return f.implicit
}

func (f *HybridFlow) ValidateAuthorizationRequest(ctx context.Context, req *oauth2.Request) ([]string, *oauth2.RequestInfo, error) {
	return f.engineFor(req.ResponseType).ValidateAuthorizationRequest(ctx, req)
}

func (f *HybridFlow) CreateAuthorizationResponse(ctx context.Context, req *oauth2.Request, issuer oauth2.TokenIssuer) (*oauth2.AuthorizationResponse, error) {
	return f.engineFor(req.ResponseType).CreateAuthorizationResponse(ctx, req, issuer)
}

// CreateTokenResponse always belongs to the code engine: the implicit side
// has no token endpoint leg, and token requests carry no response type to
// route by.
func (f *HybridFlow) CreateTokenResponse(ctx context.Context, req *oauth2.Request, issuer oauth2.TokenIssuer) (*oauth2.TokenResponse, error) {
	return f.code.CreateTokenResponse(ctx, req, issuer)
}
