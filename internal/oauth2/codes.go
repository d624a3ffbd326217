package oauth2

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tokens "github.com/dropDatabas3/grantkit/internal/security/token"
)

// DefaultCodeTTL bounds how long an authorization code stays exchangeable.
const DefaultCodeTTL = 10 * time.Minute

// codeKeyPrefix namespaces code entries in the shared cache.
const codeKeyPrefix = "code:"

// CodeGrant is the request snapshot bound to an authorization code. The
// token endpoint rehydrates the request from it, so everything the ID
// token needs (nonce, auth context) must survive the round trip.
type CodeGrant struct {
	ClientID      string         `json:"client_id"`
	RedirectURI   string         `json:"redirect_uri"`
	Subject       string         `json:"sub"`
	SessionID     string         `json:"sid,omitempty"`
	Scopes        []string       `json:"scopes"`
	GrantedScopes []string       `json:"granted_scopes"`
	Nonce         string         `json:"nonce,omitempty"`
	Claims        map[string]any `json:"claims,omitempty"`
	AuthTime      int64          `json:"auth_time,omitempty"`
	ACR           string         `json:"acr,omitempty"`
	AMR           []string       `json:"amr,omitempty"`
	ExpiresAt     time.Time      `json:"expires_at"`
}

// CodeStore persists authorization codes between the authorize and token
// legs of the code flow.
type CodeStore interface {
	// Save stores the grant under the (hashed) code for ttl.
	Save(ctx context.Context, code string, grant *CodeGrant, ttl time.Duration) error
	// Consume retrieves and deletes the grant. A missing, expired, or
	// already consumed code returns ErrInvalidGrant.
	Consume(ctx context.Context, code string) (*CodeGrant, error)
}

// CacheClient is the narrow cache surface the code store consumes.
// internal/cache satisfies it directly.
type CacheClient interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

type cacheCodeStore struct {
	cache CacheClient
}

// NewCodeStore builds a CodeStore over the shared cache. Codes are stored
// under their SHA-256 so a cache dump never yields redeemable codes.
func NewCodeStore(c CacheClient) CodeStore {
	return &cacheCodeStore{cache: c}
}

func (s *cacheCodeStore) Save(ctx context.Context, code string, grant *CodeGrant, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	grant.ExpiresAt = time.Now().UTC().Add(ttl)
	raw, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("marshal code grant: %w", err)
	}
	s.cache.Set(codeKeyPrefix+tokens.SHA256Base64URL(code), raw, ttl)
	return nil
}

func (s *cacheCodeStore) Consume(ctx context.Context, code string) (*CodeGrant, error) {
	key := codeKeyPrefix + tokens.SHA256Base64URL(code)
	raw, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrInvalidGrant.WithDescription("authorization code is invalid or expired")
	}
	// One-shot: delete before use so a replay loses the race.
	s.cache.Delete(key)

	var grant CodeGrant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return nil, ErrInvalidGrant.WithCause(err)
	}
	if time.Now().UTC().After(grant.ExpiresAt) {
		return nil, ErrInvalidGrant.WithDescription("authorization code is expired")
	}
	return &grant, nil
}
