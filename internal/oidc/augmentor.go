package oidc

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/grantkit/internal/metrics"
	"github.com/dropDatabas3/grantkit/internal/oauth2"
)

// IDTokenStrategy builds the signed ID token for a validated request.
// accessToken is the access token accompanying the ID token ("" when the
// response carries none); strategies use it for the at_hash claim. The
// reference implementation is internal/jwt.IDTokenSigner.
type IDTokenStrategy interface {
	GenerateIDToken(ctx context.Context, req *oauth2.Request, accessToken string) (string, error)
}

// TokenAugmentor attaches an ID token to token responses of OpenID
// requests. Its AddIDToken method has the engine's token-modifier shape,
// so flows register it directly.
type TokenAugmentor struct {
	Strategy IDTokenStrategy
}

func NewTokenAugmentor(s IDTokenStrategy) *TokenAugmentor {
	return &TokenAugmentor{Strategy: s}
}

// AddIDToken sets resp.IDToken for OpenID requests and leaves everything
// else untouched; plain OAuth2 traffic on the same engine passes through
// unmodified. On the authorization leg (a response type is present) the ID
// token is only attached when the response type asked for one, so
// "code token" stays without id_token in the fragment; token endpoint
// requests carry no response type and always get it.
func (a *TokenAugmentor) AddIDToken(ctx context.Context, resp *oauth2.TokenResponse, req *oauth2.Request) error {
	if !req.HasOpenIDScope() {
		return nil
	}
	if req.ResponseType != "" && !req.HasResponseType("id_token") {
		return nil
	}
	idToken, err := a.Strategy.GenerateIDToken(ctx, req, resp.AccessToken)
	if err != nil {
		return fmt.Errorf("generate id token: %w", err)
	}
	resp.IDToken = idToken
	metrics.IDTokensIssuedTotal.Inc()
	return nil
}
