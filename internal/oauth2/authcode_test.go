package oauth2

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dropDatabas3/grantkit/internal/security/secret"
)

// fakeDirectory serves client registrations from a map.
type fakeDirectory struct {
	clients map[string]*Client
}

func (f *fakeDirectory) FindClient(ctx context.Context, clientID string) (*Client, error) {
	c, ok := f.clients[clientID]
	if !ok {
		return nil, fmt.Errorf("client %q not found", clientID)
	}
	return c, nil
}

// stubIssuer hands out a fixed access token.
type stubIssuer struct {
	token string
	err   error
	calls int
}

func (s *stubIssuer) IssueAccessToken(ctx context.Context, req *Request) (string, int64, error) {
	s.calls++
	if s.err != nil {
		return "", 0, s.err
	}
	return s.token, 900, nil
}

func testDirectory() *fakeDirectory {
	return &fakeDirectory{clients: map[string]*Client{
		"web": {
			ID:           "web",
			Name:         "Web Frontend",
			RedirectURIs: []string{"https://rp.example/cb"},
			Scopes:       []string{"openid", "profile", "email"},
		},
	}}
}

func newCodeEngine(t *testing.T) *AuthorizationCodeEngine {
	t.Helper()
	return NewAuthorizationCodeEngine(AuthCodeDeps{
		Clients: testDirectory(),
		Codes:   NewCodeStore(newFakeCache()),
	})
}

func codeRequest() *Request {
	return &Request{
		ClientID:     "web",
		RedirectURI:  "https://rp.example/cb",
		ResponseType: "code",
		State:        "xyz",
		Scopes:       []string{"openid", "profile"},
		Subject:      "user-1",
	}
}

func TestAuthCodeValidate(t *testing.T) {
	e := newCodeEngine(t)
	granted, info, err := e.ValidateAuthorizationRequest(context.Background(), codeRequest())
	if err != nil {
		t.Fatalf("ValidateAuthorizationRequest: %v", err)
	}
	if len(granted) != 2 {
		t.Fatalf("granted = %v", granted)
	}
	if info != nil {
		t.Fatalf("no validators registered, info must be nil, got %+v", info)
	}
}

func TestAuthCodeValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Request)
		want   *Error
	}{
		{"unknown client", func(r *Request) { r.ClientID = "ghost" }, ErrInvalidClient},
		{"missing client_id", func(r *Request) { r.ClientID = "" }, ErrInvalidRequest},
		{"missing response_type", func(r *Request) { r.ResponseType = "" }, ErrInvalidRequest},
		{"unsupported response_type", func(r *Request) { r.ResponseType = "token" }, ErrUnsupportedResponseType},
		{"foreign redirect", func(r *Request) { r.RedirectURI = "https://evil.example/cb" }, ErrInvalidRequest},
		{"scope escalation", func(r *Request) { r.Scopes = []string{"openid", "admin"} }, ErrInvalidScope},
		{"malformed scope", func(r *Request) { r.Scopes = []string{"openid", "BAD SCOPE"} }, ErrInvalidScope},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newCodeEngine(t)
			req := codeRequest()
			tc.mutate(req)
			_, _, err := e.ValidateAuthorizationRequest(context.Background(), req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v; want %s", err, tc.want.Code)
			}
		})
	}
}

func TestAuthCodeValidatorOrderAndShortCircuit(t *testing.T) {
	e := newCodeEngine(t)
	var ran []string
	e.RegisterAuthorizeValidator(func(ctx context.Context, req *Request) (*RequestInfo, error) {
		ran = append(ran, "first")
		return &RequestInfo{LoginHint: "first"}, nil
	})
	e.RegisterAuthorizeValidator(func(ctx context.Context, req *Request) (*RequestInfo, error) {
		ran = append(ran, "second")
		return &RequestInfo{LoginHint: "second"}, nil
	})

	_, info, err := e.ValidateAuthorizationRequest(context.Background(), codeRequest())
	if err != nil {
		t.Fatalf("ValidateAuthorizationRequest: %v", err)
	}
	if len(ran) != 2 || ran[0] != "first" || ran[1] != "second" {
		t.Fatalf("execution order = %v", ran)
	}
	if info == nil || info.LoginHint != "second" {
		t.Fatalf("last validator info must win, got %+v", info)
	}

	// A failing validator stops the chain.
	stop := ErrLoginRequired.WithDescription("not signed in")
	e2 := newCodeEngine(t)
	e2.RegisterAuthorizeValidator(func(ctx context.Context, req *Request) (*RequestInfo, error) {
		return nil, stop
	})
	e2.RegisterAuthorizeValidator(func(ctx context.Context, req *Request) (*RequestInfo, error) {
		t.Fatal("validator after a failure must not run")
		return nil, nil
	})
	_, _, err = e2.ValidateAuthorizationRequest(context.Background(), codeRequest())
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("err = %v; want login_required", err)
	}
}

func TestAuthCodeCreateAuthorizationResponse(t *testing.T) {
	e := newCodeEngine(t)
	issuer := &stubIssuer{token: "AT"}

	resp, err := e.CreateAuthorizationResponse(context.Background(), codeRequest(), issuer)
	if err != nil {
		t.Fatalf("CreateAuthorizationResponse: %v", err)
	}
	if resp.Query.Get("code") == "" {
		t.Fatal("missing code in query")
	}
	if resp.Query.Get("state") != "xyz" {
		t.Fatalf("state = %q", resp.Query.Get("state"))
	}
	if len(resp.Fragment) != 0 {
		t.Fatalf("plain code response must not use the fragment: %v", resp.Fragment)
	}
	if issuer.calls != 0 {
		t.Fatal("plain code response must not issue an access token")
	}
}

func TestAuthCodeCreateRequiresSubject(t *testing.T) {
	e := newCodeEngine(t)
	req := codeRequest()
	req.Subject = ""
	_, err := e.CreateAuthorizationResponse(context.Background(), req, &stubIssuer{token: "AT"})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("err = %v; want access_denied", err)
	}
}

func TestAuthCodeTokenExchange(t *testing.T) {
	dir := testDirectory()
	codes := NewCodeStore(newFakeCache())
	e := NewAuthorizationCodeEngine(AuthCodeDeps{Clients: dir, Codes: codes})
	issuer := &stubIssuer{token: "AT"}

	authReq := codeRequest()
	authReq.Nonce = "n-1"
	resp, err := e.CreateAuthorizationResponse(context.Background(), authReq, issuer)
	if err != nil {
		t.Fatalf("CreateAuthorizationResponse: %v", err)
	}
	code := resp.Query.Get("code")

	tokReq := &Request{
		ClientID:    "web",
		GrantType:   "authorization_code",
		Code:        code,
		RedirectURI: "https://rp.example/cb",
	}
	tr, err := e.CreateTokenResponse(context.Background(), tokReq, issuer)
	if err != nil {
		t.Fatalf("CreateTokenResponse: %v", err)
	}
	if tr.AccessToken != "AT" || tr.TokenType != "Bearer" {
		t.Fatalf("token response = %+v", tr)
	}
	if tokReq.Subject != "user-1" || tokReq.Nonce != "n-1" {
		t.Fatalf("request not rehydrated from the grant: sub=%q nonce=%q", tokReq.Subject, tokReq.Nonce)
	}

	// Replay must fail.
	if _, err := e.CreateTokenResponse(context.Background(), tokReq, issuer); !errors.Is(err, ErrInvalidGrant) {
		t.Fatalf("replayed code = %v; want invalid_grant", err)
	}
}

func TestAuthCodeTokenRejections(t *testing.T) {
	ctx := context.Background()
	dir := testDirectory()
	codes := NewCodeStore(newFakeCache())
	e := NewAuthorizationCodeEngine(AuthCodeDeps{Clients: dir, Codes: codes})
	issuer := &stubIssuer{token: "AT"}

	mint := func(t *testing.T) string {
		t.Helper()
		resp, err := e.CreateAuthorizationResponse(ctx, codeRequest(), issuer)
		if err != nil {
			t.Fatalf("mint code: %v", err)
		}
		return resp.Query.Get("code")
	}

	t.Run("wrong grant type", func(t *testing.T) {
		_, err := e.CreateTokenResponse(ctx, &Request{GrantType: "password"}, issuer)
		if !errors.Is(err, ErrUnsupportedGrantType) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := e.CreateTokenResponse(ctx, &Request{ClientID: "web", GrantType: "authorization_code"}, issuer)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("redirect mismatch", func(t *testing.T) {
		code := mint(t)
		_, err := e.CreateTokenResponse(ctx, &Request{
			ClientID:    "web",
			GrantType:   "authorization_code",
			Code:        code,
			RedirectURI: "https://rp.example/other",
		}, issuer)
		if !errors.Is(err, ErrInvalidGrant) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestAuthCodeConfidentialClientAuth(t *testing.T) {
	ctx := context.Background()
	phc, err := secret.Hash(secret.Default, "s3cret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	dir := &fakeDirectory{clients: map[string]*Client{
		"backend": {
			ID:           "backend",
			SecretHash:   phc,
			RedirectURIs: []string{"https://rp.example/cb"},
			Scopes:       []string{"openid"},
		},
	}}
	codes := NewCodeStore(newFakeCache())
	e := NewAuthorizationCodeEngine(AuthCodeDeps{Clients: dir, Codes: codes})
	issuer := &stubIssuer{token: "AT"}

	authReq := &Request{
		ClientID:     "backend",
		RedirectURI:  "https://rp.example/cb",
		ResponseType: "code",
		Scopes:       []string{"openid"},
		Subject:      "user-1",
	}
	resp, err := e.CreateAuthorizationResponse(ctx, authReq, issuer)
	if err != nil {
		t.Fatalf("CreateAuthorizationResponse: %v", err)
	}
	code := resp.Query.Get("code")

	_, err = e.CreateTokenResponse(ctx, &Request{
		ClientID:    "backend",
		GrantType:   "authorization_code",
		Code:        code,
		RedirectURI: "https://rp.example/cb",
	}, issuer)
	if !errors.Is(err, ErrInvalidClient) {
		t.Fatalf("missing secret = %v; want invalid_client", err)
	}

	// Client auth runs before code consumption, so the code survives the
	// failed attempt and a retry with the secret succeeds.
	tr, err := e.CreateTokenResponse(ctx, &Request{
		ClientID:     "backend",
		ClientSecret: "s3cret",
		GrantType:    "authorization_code",
		Code:         code,
		RedirectURI:  "https://rp.example/cb",
	}, issuer)
	if err != nil {
		t.Fatalf("CreateTokenResponse with secret: %v", err)
	}
	if tr.AccessToken != "AT" {
		t.Fatalf("token response = %+v", tr)
	}
}

func TestAuthCodeTokenModifiersRunInOrder(t *testing.T) {
	dir := testDirectory()
	codes := NewCodeStore(newFakeCache())
	e := NewAuthorizationCodeEngine(AuthCodeDeps{Clients: dir, Codes: codes})
	issuer := &stubIssuer{token: "AT"}

	var order []string
	e.RegisterTokenModifier(func(ctx context.Context, resp *TokenResponse, req *Request) error {
		order = append(order, "a")
		resp.IDToken = "from-a"
		return nil
	})
	e.RegisterTokenModifier(func(ctx context.Context, resp *TokenResponse, req *Request) error {
		order = append(order, "b")
		resp.IDToken = resp.IDToken + "+b"
		return nil
	})

	resp, err := e.CreateAuthorizationResponse(context.Background(), codeRequest(), issuer)
	if err != nil {
		t.Fatalf("CreateAuthorizationResponse: %v", err)
	}
	tr, err := e.CreateTokenResponse(context.Background(), &Request{
		ClientID:    "web",
		GrantType:   "authorization_code",
		Code:        resp.Query.Get("code"),
		RedirectURI: "https://rp.example/cb",
	}, issuer)
	if err != nil {
		t.Fatalf("CreateTokenResponse: %v", err)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("modifier order = %v", order)
	}
	if tr.IDToken != "from-a+b" {
		t.Fatalf("IDToken = %q", tr.IDToken)
	}
}
