package oauth2

import (
	"context"
)

// RequestInfo is the normalized authentication-context view an authorize
// validator derives from a request. The OpenID Connect pipeline produces
// it; a nil *RequestInfo from a validator means "nothing to report".
// Prompt and UILocales are ordered token lists; absent parameters yield
// empty slices.
type RequestInfo struct {
	Display     string
	Prompt      []string
	UILocales   []string
	IDTokenHint string
	LoginHint   string
}

// AuthorizeValidator runs during authorization request validation. A
// non-nil error aborts the request; a non-nil *RequestInfo replaces the
// info collected so far.
type AuthorizeValidator func(ctx context.Context, req *Request) (*RequestInfo, error)

// TokenModifier runs after an engine assembled a token response and may
// mutate it in place.
type TokenModifier func(ctx context.Context, resp *TokenResponse, req *Request) error

// TokenIssuer mints access tokens. Engines receive one per call so the
// token format stays the host's decision.
type TokenIssuer interface {
	IssueAccessToken(ctx context.Context, req *Request) (token string, expiresIn int64, err error)
}

// Client is the engine's view of a registered OAuth client.
// An empty SecretHash marks a public client.
type Client struct {
	ID            string
	Name          string
	SecretHash    string
	RedirectURIs  []string
	Scopes        []string
	GrantTypes    []string
	ResponseTypes []string
}

// AllowsRedirectURI reports whether uri is registered for the client.
func (c *Client) AllowsRedirectURI(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// AllowsGrantType reports whether the client may use the grant type.
// An empty registration allows any.
func (c *Client) AllowsGrantType(gt string) bool {
	if len(c.GrantTypes) == 0 {
		return true
	}
	for _, g := range c.GrantTypes {
		if g == gt {
			return true
		}
	}
	return false
}

// AllowsResponseType reports whether the client may use the canonical
// response type. An empty registration allows any.
func (c *Client) AllowsResponseType(rt string) bool {
	if len(c.ResponseTypes) == 0 {
		return true
	}
	for _, r := range c.ResponseTypes {
		if CanonicalResponseType(r) == rt {
			return true
		}
	}
	return false
}

// Public reports whether the client authenticates without a secret.
func (c *Client) Public() bool { return c.SecretHash == "" }

// ClientDirectory resolves client registrations. Implemented by the store
// layer; engines only consume it.
type ClientDirectory interface {
	FindClient(ctx context.Context, clientID string) (*Client, error)
}

// Engine is one authorization grant: it validates authorization requests,
// produces authorization responses, and (when the grant has a token leg)
// produces token responses. Implementations expose registration hooks so
// extensions can attach validators and modifiers without changing the
// engine itself.
type Engine interface {
	RegisterAuthorizeValidator(v AuthorizeValidator)
	RegisterTokenModifier(m TokenModifier)
	RegisterResponseType(rt string)

	ValidateAuthorizationRequest(ctx context.Context, req *Request) ([]string, *RequestInfo, error)
	CreateAuthorizationResponse(ctx context.Context, req *Request, issuer TokenIssuer) (*AuthorizationResponse, error)
	CreateTokenResponse(ctx context.Context, req *Request, issuer TokenIssuer) (*TokenResponse, error)
}

// Hooks is the registry engines embed. Registration happens at wiring
// time; serving reads it concurrently without locks, so nothing may
// register once requests flow.
type Hooks struct {
	authorizeValidators []AuthorizeValidator
	tokenModifiers      []TokenModifier
	responseTypes       []string
}

// RegisterAuthorizeValidator appends a validator. Order of registration is
// order of execution.
func (h *Hooks) RegisterAuthorizeValidator(v AuthorizeValidator) {
	h.authorizeValidators = append(h.authorizeValidators, v)
}

// RegisterTokenModifier appends a modifier. Order of registration is order
// of execution.
func (h *Hooks) RegisterTokenModifier(m TokenModifier) {
	h.tokenModifiers = append(h.tokenModifiers, m)
}

// RegisterResponseType adds a response type to the supported set. The
// type is canonicalized; re-registering is a no-op.
func (h *Hooks) RegisterResponseType(rt string) {
	crt := CanonicalResponseType(rt)
	if crt == "" {
		return
	}
	for _, existing := range h.responseTypes {
		if existing == crt {
			return
		}
	}
	h.responseTypes = append(h.responseTypes, crt)
}

// SupportsResponseType reports whether the canonical form of rt is
// registered.
func (h *Hooks) SupportsResponseType(rt string) bool {
	crt := CanonicalResponseType(rt)
	for _, existing := range h.responseTypes {
		if existing == crt {
			return true
		}
	}
	return false
}

// ResponseTypes returns the registered canonical response types in
// registration order.
func (h *Hooks) ResponseTypes() []string {
	out := make([]string, len(h.responseTypes))
	copy(out, h.responseTypes)
	return out
}

// runAuthorizeValidators executes the validators in order. The info
// returned is the last non-nil one; any error short-circuits.
func (h *Hooks) runAuthorizeValidators(ctx context.Context, req *Request) (*RequestInfo, error) {
	var info *RequestInfo
	for _, v := range h.authorizeValidators {
		ri, err := v(ctx, req)
		if err != nil {
			return nil, err
		}
		if ri != nil {
			info = ri
		}
	}
	return info, nil
}

// runTokenModifiers executes the modifiers in order; any error aborts.
func (h *Hooks) runTokenModifiers(ctx context.Context, resp *TokenResponse, req *Request) error {
	for _, m := range h.tokenModifiers {
		if err := m(ctx, resp, req); err != nil {
			return err
		}
	}
	return nil
}
