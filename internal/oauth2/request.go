// Package oauth2 implements the grant engines for the authorization code and
// implicit flows, plus the hook surface OpenID Connect layers itself onto.
//
// An Engine owns response construction for its grant. Extension hooks
// (authorize validators, token modifiers, extra response types) are
// registered at wiring time and run in registration order on every request.
package oauth2

import (
	"sort"
	"strings"
)

// Request is the mutable, per-call view of an authorization or token
// request. The transport builds one per inbound HTTP request; it lives for
// that call only and is never shared across requests.
type Request struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	ResponseType string
	State        string
	Nonce        string

	// Scopes are the requested scopes; GrantedScopes is filled by the
	// engine once the request passed validation.
	Scopes        []string
	GrantedScopes []string

	// OIDC authentication-context parameters, verbatim from the wire.
	Display     string
	Prompt      string
	MaxAge      *int64
	UILocales   string
	IDTokenHint string
	LoginHint   string
	ACRValues   string

	// RawClaims is the claims parameter as received. Claims is its parsed
	// form; the OIDC validation pipeline fills it before any downstream
	// hook runs, so hooks always see a non-nil map for OIDC requests.
	RawClaims string
	Claims    map[string]any

	// Token endpoint parameters.
	GrantType string
	Code      string

	// Authentication state established by the host (session cookie,
	// consumed authorization code).
	Subject   string
	SessionID string
	AuthTime  int64
	ACR       string
	AMR       []string
}

// HasScope reports whether the request asks for the given scope.
func (r *Request) HasScope(s string) bool {
	for _, sc := range r.Scopes {
		if sc == s {
			return true
		}
	}
	return false
}

// HasOpenIDScope reports whether this is an OpenID Connect request.
func (r *Request) HasOpenIDScope() bool {
	return r.HasScope("openid")
}

// PromptValues splits the prompt parameter into its whitespace-delimited
// tokens, preserving order. Absent prompt yields an empty slice.
func (r *Request) PromptValues() []string {
	return strings.Fields(r.Prompt)
}

// UILocaleValues splits ui_locales into its tokens, preserving order.
func (r *Request) UILocaleValues() []string {
	return strings.Fields(r.UILocales)
}

// ResponseTypes splits the response_type parameter into its tokens.
func (r *Request) ResponseTypes() []string {
	return strings.Fields(r.ResponseType)
}

// HasResponseType reports whether the response_type token set contains tok.
func (r *Request) HasResponseType(tok string) bool {
	for _, t := range r.ResponseTypes() {
		if t == tok {
			return true
		}
	}
	return false
}

// CanonicalResponseType returns the response type with its tokens sorted,
// so "token id_token" and "id_token token" compare equal against the
// registered set.
func CanonicalResponseType(rt string) string {
	toks := strings.Fields(rt)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}
