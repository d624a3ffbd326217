// Package oauth contains the controllers for the OAuth2/OIDC endpoints.
package oauth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	dto "github.com/dropDatabas3/grantkit/internal/http/dto/oauth"
	"github.com/dropDatabas3/grantkit/internal/http/helpers"
	"github.com/dropDatabas3/grantkit/internal/metrics"
	"github.com/dropDatabas3/grantkit/internal/oauth2"
	"github.com/dropDatabas3/grantkit/internal/observability/logger"
	"github.com/dropDatabas3/grantkit/internal/session"
)

// Flow is a composed grant flow as the authorization endpoint consumes it.
type Flow interface {
	CreateAuthorizationResponse(ctx context.Context, req *oauth2.Request, issuer oauth2.TokenIssuer) (*oauth2.AuthorizationResponse, error)
}

// SessionResolver loads the login session named by the request cookie.
type SessionResolver interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// AuthorizeControllerDeps wires the controller.
type AuthorizeControllerDeps struct {
	AuthCode Flow
	Implicit Flow
	Hybrid   Flow
	Clients  oauth2.ClientDirectory
	Sessions SessionResolver
	Issuer   oauth2.TokenIssuer
	Cookie   string // session cookie name, default "sid"
}

// AuthorizeController handles the authorization endpoint. It resolves the
// browser session, picks the flow for the response type, and delivers the
// outcome: a redirect with the authorization artifacts, a redirect with
// error parameters, or a direct JSON error when redirecting is not safe.
type AuthorizeController struct {
	authCode Flow
	implicit Flow
	hybrid   Flow
	clients  oauth2.ClientDirectory
	sessions SessionResolver
	issuer   oauth2.TokenIssuer
	cookie   string
}

func NewAuthorizeController(d AuthorizeControllerDeps) *AuthorizeController {
	cookie := d.Cookie
	if cookie == "" {
		cookie = "sid"
	}
	return &AuthorizeController{
		authCode: d.AuthCode,
		implicit: d.Implicit,
		hybrid:   d.Hybrid,
		clients:  d.Clients,
		sessions: d.Sessions,
		issuer:   d.Issuer,
		cookie:   cookie,
	}
}

// Authorize handles GET and POST /oauth2/authorize.
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthorizeController.Authorize"))

	w.Header().Add("Vary", "Cookie")

	params, err := authorizeParams(r)
	if err != nil {
		helpers.WriteOAuthError(w, err)
		return
	}
	req, err := dto.ParseAuthorize(params)
	if err != nil {
		helpers.WriteOAuthError(w, err)
		return
	}

	c.resolveSession(ctx, r, req)

	log.Debug("authorize request",
		logger.ClientID(req.ClientID),
		logger.ResponseType(req.ResponseType),
		logger.Scopes(req.Scopes))

	// Until the client and redirect URI check out, errors answer directly:
	// redirecting to an unvalidated URI would be an open redirect.
	redirectTo, err := c.redirectTarget(ctx, req)
	if err != nil {
		metrics.AuthorizationsTotal.WithLabelValues(flowLabel(req.ResponseType), oauth2.FromError(err).Code).Inc()
		helpers.WriteOAuthError(w, err)
		return
	}

	resp, err := c.flowFor(req.ResponseType).CreateAuthorizationResponse(ctx, req, c.issuer)
	if err != nil {
		pe := oauth2.FromError(err)
		if pe.Code == "server_error" {
			log.Error("authorize failed", logger.Err(err), logger.ClientID(req.ClientID))
		}
		metrics.AuthorizationsTotal.WithLabelValues(flowLabel(req.ResponseType), pe.Code).Inc()
		c.redirectError(w, r, redirectTo, req, pe)
		return
	}

	metrics.AuthorizationsTotal.WithLabelValues(flowLabel(req.ResponseType), "success").Inc()
	http.Redirect(w, r, resp.Location(), http.StatusFound)
}

// resolveSession populates the request's authentication state from the
// session cookie. A missing or stale cookie leaves the request anonymous.
func (c *AuthorizeController) resolveSession(ctx context.Context, r *http.Request, req *oauth2.Request) {
	ck, err := r.Cookie(c.cookie)
	if err != nil || ck.Value == "" {
		return
	}
	sess, err := c.sessions.Get(ctx, ck.Value)
	if err != nil {
		logger.From(ctx).Debug("stale session cookie", logger.Op("resolve_session"))
		return
	}
	req.SessionID = sess.ID
	req.Subject = sess.Subject
	req.AuthTime = sess.AuthTime
	req.ACR = sess.ACR
	req.AMR = sess.AMR
}

// redirectTarget resolves and validates the URI protocol errors may be
// delivered to.
func (c *AuthorizeController) redirectTarget(ctx context.Context, req *oauth2.Request) (string, error) {
	if req.ClientID == "" {
		return "", oauth2.ErrInvalidRequest.WithDescription("missing client_id parameter")
	}
	client, err := c.clients.FindClient(ctx, req.ClientID)
	if err != nil {
		return "", oauth2.ErrInvalidClient.WithCause(err)
	}
	uri := req.RedirectURI
	if uri == "" {
		if len(client.RedirectURIs) != 1 {
			return "", oauth2.ErrInvalidRequest.WithDescription("missing redirect_uri parameter")
		}
		uri = client.RedirectURIs[0]
	}
	if !client.AllowsRedirectURI(uri) {
		return "", oauth2.ErrInvalidRequest.WithDescription("redirect_uri is not registered for the client")
	}
	return uri, nil
}

// redirectError delivers a protocol error on the validated redirect URI,
// placed in the fragment for response types that use one.
func (c *AuthorizeController) redirectError(w http.ResponseWriter, r *http.Request, redirectTo string, req *oauth2.Request, pe *oauth2.Error) {
	resp := oauth2.NewAuthorizationResponse(redirectTo)
	vals := resp.Query
	if usesFragment(req.ResponseType) {
		vals = resp.Fragment
	}
	vals.Set("error", pe.Code)
	if pe.Description != "" {
		vals.Set("error_description", pe.Description)
	}
	if req.State != "" {
		vals.Set("state", req.State)
	}
	http.Redirect(w, r, resp.Location(), http.StatusFound)
}

// flowFor picks the flow by the response type's token set: "code" alone is
// the code flow, "code" plus others is hybrid, everything else implicit.
func (c *AuthorizeController) flowFor(responseType string) Flow {
	toks := strings.Fields(responseType)
	hasCode := false
	for _, t := range toks {
		if t == "code" {
			hasCode = true
		}
	}
	switch {
	case hasCode && len(toks) > 1:
		return c.hybrid
	case hasCode:
		return c.authCode
	default:
		return c.implicit
	}
}

func flowLabel(responseType string) string {
	toks := strings.Fields(responseType)
	hasCode := false
	for _, t := range toks {
		if t == "code" {
			hasCode = true
		}
	}
	switch {
	case hasCode && len(toks) > 1:
		return "hybrid"
	case hasCode:
		return "authorization_code"
	default:
		return "implicit"
	}
}

// usesFragment reports whether error parameters travel in the fragment for
// the response type. Plain "code" (and a missing response type) use the
// query per RFC 6749 §4.1.2.1; everything else is fragment-based.
func usesFragment(responseType string) bool {
	crt := oauth2.CanonicalResponseType(responseType)
	return crt != "" && crt != "code"
}

// authorizeParams returns the request parameters for either verb: OIDC
// allows the authorization request as a GET query or a form POST.
func authorizeParams(r *http.Request) (url.Values, error) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return nil, oauth2.ErrInvalidRequest.WithDescription("malformed request body").WithCause(err)
		}
		return r.Form, nil
	}
	return r.URL.Query(), nil
}
