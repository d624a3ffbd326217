package oauth

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/grantkit/internal/oauth2"
)

// ParseToken builds the engine request from the token endpoint form body.
// Client credentials come from HTTP Basic auth when present (RFC 6749
// §2.3.1), otherwise from the form.
func ParseToken(r *http.Request) (*oauth2.Request, error) {
	if err := r.ParseForm(); err != nil {
		return nil, oauth2.ErrInvalidRequest.WithDescription("malformed request body").WithCause(err)
	}
	f := r.PostForm

	req := &oauth2.Request{
		GrantType:    strings.TrimSpace(f.Get("grant_type")),
		Code:         strings.TrimSpace(f.Get("code")),
		RedirectURI:  strings.TrimSpace(f.Get("redirect_uri")),
		ClientID:     strings.TrimSpace(f.Get("client_id")),
		ClientSecret: f.Get("client_secret"),
	}

	if id, secret, ok := r.BasicAuth(); ok {
		req.ClientID = id
		req.ClientSecret = secret
	}
	return req, nil
}
