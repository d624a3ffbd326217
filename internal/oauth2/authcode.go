package oauth2

import (
	"context"
	"strconv"
	"time"

	"github.com/dropDatabas3/grantkit/internal/observability/logger"
	"github.com/dropDatabas3/grantkit/internal/security/secret"
	tokens "github.com/dropDatabas3/grantkit/internal/security/token"
)

// AuthCodeDeps contains dependencies for the authorization code engine.
type AuthCodeDeps struct {
	Clients ClientDirectory
	Codes   CodeStore
	CodeTTL time.Duration // defaults to DefaultCodeTTL
}

// AuthorizationCodeEngine implements the authorization code grant
// (RFC 6749 §4.1). Hybrid response types registered on top of it place
// their extra artifacts in the redirect fragment.
type AuthorizationCodeEngine struct {
	Hooks

	clients ClientDirectory
	codes   CodeStore
	codeTTL time.Duration
}

// NewAuthorizationCodeEngine creates the engine with "code" registered as
// its base response type.
func NewAuthorizationCodeEngine(d AuthCodeDeps) *AuthorizationCodeEngine {
	ttl := d.CodeTTL
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	e := &AuthorizationCodeEngine{
		clients: d.Clients,
		codes:   d.Codes,
		codeTTL: ttl,
	}
	e.RegisterResponseType("code")
	return e
}

// ValidateAuthorizationRequest checks the request against the client
// registration and the registered validator hooks. It returns the scopes
// the response will grant plus the folded validator info.
func (e *AuthorizationCodeEngine) ValidateAuthorizationRequest(ctx context.Context, req *Request) ([]string, *RequestInfo, error) {
	log := logger.From(ctx).With(logger.Layer("engine"), logger.Op("AuthCode.ValidateAuthorizationRequest"))

	client, err := e.resolveClient(ctx, req)
	if err != nil {
		log.Debug("client resolution failed", logger.Err(err), logger.ClientID(req.ClientID))
		return nil, nil, err
	}

	if err := validateAuthorizeBasics(e.SupportsResponseType, client, req); err != nil {
		log.Debug("authorize validation failed", logger.Err(err), logger.ClientID(req.ClientID))
		return nil, nil, err
	}

	info, err := e.runAuthorizeValidators(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	granted := append([]string(nil), req.Scopes...)
	return granted, info, nil
}

// CreateAuthorizationResponse validates the request and mints the
// authorization code. For hybrid response types it additionally issues the
// fragment-side artifacts (access token, ID token) in the same response.
func (e *AuthorizationCodeEngine) CreateAuthorizationResponse(ctx context.Context, req *Request, issuer TokenIssuer) (*AuthorizationResponse, error) {
	log := logger.From(ctx).With(logger.Layer("engine"), logger.Op("AuthCode.CreateAuthorizationResponse"))

	// 1. Full validation, including the registered hooks.
	granted, _, err := e.ValidateAuthorizationRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	// 2. Authorization responses are only issued for authenticated users.
	if req.Subject == "" {
		return nil, ErrAccessDenied.WithDescription("no authenticated end-user on the request")
	}
	req.GrantedScopes = granted

	// 3. Mint and store the code.
	code, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return nil, ErrServerError.WithCause(err)
	}
	grant := &CodeGrant{
		ClientID:      req.ClientID,
		RedirectURI:   req.RedirectURI,
		Subject:       req.Subject,
		SessionID:     req.SessionID,
		Scopes:        append([]string(nil), req.Scopes...),
		GrantedScopes: granted,
		Nonce:         req.Nonce,
		Claims:        req.Claims,
		AuthTime:      req.AuthTime,
		ACR:           req.ACR,
		AMR:           append([]string(nil), req.AMR...),
	}
	if err := e.codes.Save(ctx, code, grant, e.codeTTL); err != nil {
		return nil, ErrServerError.WithCause(err)
	}

	resp := NewAuthorizationResponse(req.RedirectURI)

	// 4. Plain "code": query parameters, done.
	crt := CanonicalResponseType(req.ResponseType)
	if crt == "code" {
		resp.Query.Set("code", code)
		if req.State != "" {
			resp.Query.Set("state", req.State)
		}
		log.Info("authorization code issued", logger.ClientID(req.ClientID), logger.Subject(req.Subject))
		return resp, nil
	}

	// 5. Hybrid: everything travels in the fragment.
	resp.Fragment.Set("code", code)
	if req.State != "" {
		resp.Fragment.Set("state", req.State)
	}

	tr := &TokenResponse{}
	if req.HasResponseType("token") {
		at, expiresIn, err := issuer.IssueAccessToken(ctx, req)
		if err != nil {
			return nil, ErrServerError.WithCause(err)
		}
		tr.AccessToken = at
		tr.TokenType = "Bearer"
		tr.ExpiresIn = expiresIn
		tr.Scope = JoinScopes(granted)
	}

	// Token modifiers see the code so ID tokens can carry c_hash.
	req.Code = code
	if err := e.runTokenModifiers(ctx, tr, req); err != nil {
		return nil, err
	}
	req.Code = ""

	if tr.AccessToken != "" {
		resp.Fragment.Set("access_token", tr.AccessToken)
		resp.Fragment.Set("token_type", tr.TokenType)
		resp.Fragment.Set("expires_in", strconv.FormatInt(tr.ExpiresIn, 10))
		if tr.Scope != "" {
			resp.Fragment.Set("scope", tr.Scope)
		}
	}
	if tr.IDToken != "" {
		resp.Fragment.Set("id_token", tr.IDToken)
	}

	log.Info("hybrid authorization issued",
		logger.ClientID(req.ClientID),
		logger.Subject(req.Subject),
		logger.ResponseType(crt),
	)
	return resp, nil
}

// CreateTokenResponse exchanges an authorization code for tokens.
func (e *AuthorizationCodeEngine) CreateTokenResponse(ctx context.Context, req *Request, issuer TokenIssuer) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("engine"), logger.Op("AuthCode.CreateTokenResponse"))

	// 1. Grant type and client authentication.
	if req.GrantType != "authorization_code" {
		return nil, ErrUnsupportedGrantType
	}
	client, err := e.clients.FindClient(ctx, req.ClientID)
	if err != nil {
		return nil, ErrInvalidClient.WithCause(err)
	}
	if !client.Public() {
		if req.ClientSecret == "" || !secret.Verify(req.ClientSecret, client.SecretHash) {
			log.Debug("client authentication failed", logger.ClientID(req.ClientID))
			return nil, ErrInvalidClient
		}
	}
	if !client.AllowsGrantType("authorization_code") {
		return nil, ErrUnauthorizedClient
	}

	// 2. Consume the code (one-shot) and verify bindings.
	if req.Code == "" {
		return nil, ErrInvalidRequest.WithDescription("missing code parameter")
	}
	grant, err := e.codes.Consume(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if grant.ClientID != req.ClientID {
		return nil, ErrInvalidGrant.WithDescription("code was issued to another client")
	}
	if grant.RedirectURI != req.RedirectURI {
		return nil, ErrInvalidGrant.WithDescription("redirect_uri does not match the authorization request")
	}

	// 3. Rehydrate the request from the snapshot so modifiers see the
	// authorize-time context.
	req.Subject = grant.Subject
	req.SessionID = grant.SessionID
	req.Scopes = grant.Scopes
	req.GrantedScopes = grant.GrantedScopes
	req.Nonce = grant.Nonce
	req.Claims = grant.Claims
	req.AuthTime = grant.AuthTime
	req.ACR = grant.ACR
	req.AMR = grant.AMR

	// 4. Issue the access token and run the modifiers.
	at, expiresIn, err := issuer.IssueAccessToken(ctx, req)
	if err != nil {
		return nil, ErrServerError.WithCause(err)
	}
	resp := &TokenResponse{
		AccessToken: at,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Scope:       JoinScopes(grant.GrantedScopes),
	}
	if err := e.runTokenModifiers(ctx, resp, req); err != nil {
		return nil, err
	}

	log.Info("code exchanged", logger.ClientID(req.ClientID), logger.Subject(req.Subject))
	return resp, nil
}

func (e *AuthorizationCodeEngine) resolveClient(ctx context.Context, req *Request) (*Client, error) {
	if req.ClientID == "" {
		return nil, ErrInvalidRequest.WithDescription("missing client_id parameter")
	}
	client, err := e.clients.FindClient(ctx, req.ClientID)
	if err != nil {
		return nil, ErrInvalidClient.WithCause(err)
	}
	return client, nil
}

// validateAuthorizeBasics runs the checks shared by both engines:
// response type support, redirect URI registration, scope subset.
func validateAuthorizeBasics(supported func(string) bool, client *Client, req *Request) error {
	crt := CanonicalResponseType(req.ResponseType)
	if crt == "" {
		return ErrInvalidRequest.WithDescription("missing response_type parameter")
	}
	if !supported(crt) {
		return ErrUnsupportedResponseType
	}
	if !client.AllowsResponseType(crt) {
		return ErrUnauthorizedClient.WithDescription("client may not use this response type")
	}

	if req.RedirectURI == "" {
		// A single registered URI can stand in for an omitted parameter.
		if len(client.RedirectURIs) != 1 {
			return ErrInvalidRequest.WithDescription("missing redirect_uri parameter")
		}
		req.RedirectURI = client.RedirectURIs[0]
	}
	if !client.AllowsRedirectURI(req.RedirectURI) {
		return ErrInvalidRequest.WithDescription("redirect_uri is not registered for the client")
	}

	for _, s := range req.Scopes {
		if !ValidScopeName(s) {
			return ErrInvalidScope.WithDescription("malformed scope name")
		}
	}
	if !ScopesSubset(req.Scopes, client.Scopes) {
		return ErrInvalidScope
	}
	return nil
}
