package core

import "time"

// Client is a registered OAuth2/OIDC relying party.
type Client struct {
	ID            string    `json:"client_id"`
	Name          string    `json:"name"`
	SecretHash    string    `json:"secret_hash,omitempty"` // argon2id PHC string; empty for public clients
	RedirectURIs  []string  `json:"redirect_uris"`
	Scopes        []string  `json:"scopes"`
	GrantTypes    []string  `json:"grant_types"`
	ResponseTypes []string  `json:"response_types"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Consent records which scopes an end-user granted to a client. A revoked
// consent keeps its row with RevokedAt set.
type Consent struct {
	Subject       string     `json:"subject"`
	ClientID      string     `json:"client_id"`
	GrantedScopes []string   `json:"granted_scopes"`
	GrantedAt     time.Time  `json:"granted_at"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
}

// HasScopes reports whether every scope in want was granted.
func (c *Consent) HasScopes(want []string) bool {
	granted := make(map[string]struct{}, len(c.GrantedScopes))
	for _, s := range c.GrantedScopes {
		granted[s] = struct{}{}
	}
	for _, s := range want {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}
