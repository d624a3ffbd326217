package oauth

import (
	"context"
	"net/http"

	dto "github.com/dropDatabas3/grantkit/internal/http/dto/oauth"
	"github.com/dropDatabas3/grantkit/internal/http/helpers"
	"github.com/dropDatabas3/grantkit/internal/metrics"
	"github.com/dropDatabas3/grantkit/internal/oauth2"
	"github.com/dropDatabas3/grantkit/internal/observability/logger"
)

// TokenFlow is the token leg of a composed flow. Hybrid codes redeem
// through the same code store, so one flow serves the whole endpoint.
type TokenFlow interface {
	CreateTokenResponse(ctx context.Context, req *oauth2.Request, issuer oauth2.TokenIssuer) (*oauth2.TokenResponse, error)
}

// TokenControllerDeps wires the controller.
type TokenControllerDeps struct {
	Flow   TokenFlow
	Issuer oauth2.TokenIssuer
}

// TokenController handles the token endpoint.
type TokenController struct {
	flow   TokenFlow
	issuer oauth2.TokenIssuer
}

func NewTokenController(d TokenControllerDeps) *TokenController {
	return &TokenController{flow: d.Flow, issuer: d.Issuer}
}

// Token handles POST /oauth2/token.
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TokenController.Token"))

	req, err := dto.ParseToken(r)
	if err != nil {
		helpers.WriteOAuthError(w, err)
		return
	}

	log.Debug("token request",
		logger.ClientID(req.ClientID),
		logger.GrantType(req.GrantType))

	resp, err := c.flow.CreateTokenResponse(ctx, req, c.issuer)
	if err != nil {
		pe := oauth2.FromError(err)
		if pe.Code == "server_error" {
			log.Error("token request failed", logger.Err(err), logger.ClientID(req.ClientID))
		}
		// RFC 6749 §5.2: failed Basic authentication answers with a
		// challenge for the scheme the client used.
		if pe.Code == "invalid_client" {
			if _, _, ok := r.BasicAuth(); ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="grantkit"`)
			}
		}
		helpers.WriteOAuthError(w, pe)
		return
	}

	metrics.TokensIssuedTotal.WithLabelValues(req.GrantType).Inc()
	helpers.WriteJSON(w, http.StatusOK, resp)
}
