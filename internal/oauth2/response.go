package oauth2

import (
	"net/url"
	"strings"
)

// TokenResponse is the token endpoint payload. Token modifiers mutate it in
// place before it is written to the wire.
type TokenResponse struct {
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
	Scope       string `json:"scope,omitempty"`
	IDToken     string `json:"id_token,omitempty"`
}

// AuthorizationResponse carries the parameters an authorization response
// delivers via redirect. Query and Fragment are kept separate because the
// placement is protocol-relevant: hybrid and implicit artifacts go in the
// fragment, plain code responses in the query.
type AuthorizationResponse struct {
	RedirectURI string
	Query       url.Values
	Fragment    url.Values
}

// NewAuthorizationResponse builds an empty response for the redirect URI.
func NewAuthorizationResponse(redirectURI string) *AuthorizationResponse {
	return &AuthorizationResponse{
		RedirectURI: redirectURI,
		Query:       url.Values{},
		Fragment:    url.Values{},
	}
}

// Location renders the full redirect target, merging Query into any query
// the registered redirect URI already carries and appending Fragment.
func (r *AuthorizationResponse) Location() string {
	u, err := url.Parse(r.RedirectURI)
	if err != nil {
		// Redirect URIs are validated against the client registration
		// before a response is built; treat a broken one as opaque.
		return r.RedirectURI
	}
	if len(r.Query) > 0 {
		q := u.Query()
		for k, vs := range r.Query {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	if len(r.Fragment) > 0 {
		u.Fragment = ""
		return u.String() + "#" + r.Fragment.Encode()
	}
	return u.String()
}

// JoinScopes renders a scope list as the space-delimited wire form.
func JoinScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}
