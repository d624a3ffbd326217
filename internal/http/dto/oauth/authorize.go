// Package oauth translates the OAuth2/OIDC wire parameters into engine
// requests.
package oauth

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/dropDatabas3/grantkit/internal/oauth2"
)

// ParseAuthorize builds the engine request from the authorization endpoint
// parameters (query for GET, form for POST). Values are trimmed; scope is
// split on whitespace; prompt, ui_locales, and acr_values stay in their
// space-delimited wire form because the engine splits them on demand. A
// malformed max_age is a protocol error.
func ParseAuthorize(q url.Values) (*oauth2.Request, error) {
	req := &oauth2.Request{
		ClientID:     strings.TrimSpace(q.Get("client_id")),
		RedirectURI:  strings.TrimSpace(q.Get("redirect_uri")),
		ResponseType: strings.TrimSpace(q.Get("response_type")),
		State:        q.Get("state"),
		Nonce:        strings.TrimSpace(q.Get("nonce")),
		Scopes:       strings.Fields(q.Get("scope")),

		Display:     strings.TrimSpace(q.Get("display")),
		Prompt:      strings.TrimSpace(q.Get("prompt")),
		UILocales:   strings.TrimSpace(q.Get("ui_locales")),
		IDTokenHint: strings.TrimSpace(q.Get("id_token_hint")),
		LoginHint:   strings.TrimSpace(q.Get("login_hint")),
		ACRValues:   strings.TrimSpace(q.Get("acr_values")),
		RawClaims:   q.Get("claims"),
	}

	if raw := strings.TrimSpace(q.Get("max_age")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return nil, oauth2.ErrInvalidRequest.WithDescription("max_age must be a non-negative integer")
		}
		req.MaxAge = &v
	}
	return req, nil
}
