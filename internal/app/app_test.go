package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/grantkit/internal/config"
	"github.com/dropDatabas3/grantkit/internal/session"
	"github.com/dropDatabas3/grantkit/internal/store/core"
)

// buildMemoryApp wires the app on the memory store and memory cache, with
// the keystore in a temp dir.
func buildMemoryApp(t *testing.T) *App {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Issuer.KeysFile = filepath.Join(t.TempDir(), "signing.json")

	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestBuildServesHealthAndMetrics(t *testing.T) {
	a := buildMemoryApp(t)

	for _, path := range []string{"/healthz", "/metrics"} {
		w := httptest.NewRecorder()
		a.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestAuthorizationCodeRoundTrip(t *testing.T) {
	a := buildMemoryApp(t)
	ctx := context.Background()

	require.NoError(t, a.Repo.UpsertClient(ctx, &core.Client{
		ID:            "web",
		Name:          "Web Frontend",
		RedirectURIs:  []string{"https://rp.example/cb"},
		Scopes:        []string{"openid", "profile"},
		GrantTypes:    []string{"authorization_code"},
		ResponseTypes: []string{"code"},
	}))
	require.NoError(t, a.Repo.UpsertConsent(ctx, &core.Consent{
		Subject:       "alice",
		ClientID:      "web",
		GrantedScopes: []string{"openid", "profile"},
	}))

	sess := &session.Session{Subject: "alice", AMR: []string{"pwd"}}
	require.NoError(t, a.Sessions.Create(ctx, sess))

	// Authorization leg: the browser arrives with a login session.
	q := url.Values{
		"client_id":     {"web"},
		"redirect_uri":  {"https://rp.example/cb"},
		"response_type": {"code"},
		"scope":         {"openid profile"},
		"state":         {"s1"},
		"nonce":         {"n1"},
	}
	r := httptest.NewRequest(http.MethodGet, "/oauth2/authorize?"+q.Encode(), nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: sess.ID})
	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	code := loc.Query().Get("code")
	require.NotEmpty(t, code)
	require.Equal(t, "s1", loc.Query().Get("state"))

	// Token leg: the public client redeems the code.
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {"https://rp.example/cb"},
		"client_id":    {"web"},
	}
	redeem := func() *httptest.ResponseRecorder {
		tr := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(form.Encode()))
		tr.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		tw := httptest.NewRecorder()
		a.Handler.ServeHTTP(tw, tr)
		return tw
	}

	tw := redeem()
	require.Equal(t, http.StatusOK, tw.Code, tw.Body.String())
	require.Equal(t, "no-store", tw.Header().Get("Cache-Control"))

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		IDToken     string `json:"id_token"`
	}
	require.NoError(t, json.NewDecoder(tw.Body).Decode(&tok))
	require.NotEmpty(t, tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.NotEmpty(t, tok.IDToken, "openid scope should attach an ID token")

	// Codes are one-shot.
	tw2 := redeem()
	require.Equal(t, http.StatusBadRequest, tw2.Code)
}

func TestAuthorizeAnonymousRedirectsWithError(t *testing.T) {
	a := buildMemoryApp(t)
	ctx := context.Background()

	require.NoError(t, a.Repo.UpsertClient(ctx, &core.Client{
		ID:            "web",
		RedirectURIs:  []string{"https://rp.example/cb"},
		Scopes:        []string{"openid"},
		GrantTypes:    []string{"authorization_code"},
		ResponseTypes: []string{"code"},
	}))

	q := url.Values{
		"client_id":     {"web"},
		"redirect_uri":  {"https://rp.example/cb"},
		"response_type": {"code"},
		"scope":         {"openid"},
		"state":         {"s1"},
	}
	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth2/authorize?"+q.Encode(), nil))

	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "access_denied", loc.Query().Get("error"))
	require.Equal(t, "s1", loc.Query().Get("state"))
}

func TestAuthorizeSilentWithoutSessionRedirectsLoginRequired(t *testing.T) {
	a := buildMemoryApp(t)
	ctx := context.Background()

	require.NoError(t, a.Repo.UpsertClient(ctx, &core.Client{
		ID:            "web",
		RedirectURIs:  []string{"https://rp.example/cb"},
		Scopes:        []string{"openid"},
		GrantTypes:    []string{"authorization_code"},
		ResponseTypes: []string{"code"},
	}))

	// prompt=none with an unverifiable hint fails closed.
	q := url.Values{
		"client_id":     {"web"},
		"redirect_uri":  {"https://rp.example/cb"},
		"response_type": {"code"},
		"scope":         {"openid"},
		"state":         {"s1"},
		"prompt":        {"none"},
		"id_token_hint": {"not-a-jwt"},
	}
	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth2/authorize?"+q.Encode(), nil))

	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "login_required", loc.Query().Get("error"))
	require.Equal(t, "s1", loc.Query().Get("state"))
}
