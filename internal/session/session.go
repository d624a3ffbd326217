// Package session tracks browser login sessions and answers the silent
// authentication questions the OpenID Connect pipeline asks: is the user
// still logged in, did they already consent, and is the logged-in user the
// one the client expects.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// DefaultTTL bounds how long a session stays valid without re-login.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "sid:"

// Session is one authenticated browser session. AuthTime is the moment the
// user actively authenticated; max_age freshness checks compare against it.
type Session struct {
	ID        string    `json:"id"`
	Subject   string    `json:"sub"`
	AuthTime  int64     `json:"auth_time"`
	ACR       string    `json:"acr,omitempty"`
	AMR       []string  `json:"amr,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session passed its deadline.
func (s *Session) Expired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// CacheClient is the narrow cache surface the session store consumes.
// internal/cache satisfies it directly.
type CacheClient interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

// Store keeps sessions in the shared cache so every node sees the same
// login state.
type Store struct {
	cache CacheClient
	ttl   time.Duration
}

func NewStore(c CacheClient, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: c, ttl: ttl}
}

// Create stamps ID, AuthTime, and ExpiresAt onto the session and persists
// it. Subject must be set by the caller.
func (s *Store) Create(ctx context.Context, sess *Session) error {
	if sess.Subject == "" {
		return fmt.Errorf("create session: subject is required")
	}
	now := time.Now().UTC()
	sess.ID = uuid.NewString()
	if sess.AuthTime == 0 {
		sess.AuthTime = now.Unix()
	}
	sess.ExpiresAt = now.Add(s.ttl)
	return s.put(sess)
}

// Get loads a session by ID. Missing or expired sessions return
// ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	raw, ok := s.cache.Get(keyPrefix + id)
	if !ok {
		return nil, ErrNotFound
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.cache.Delete(keyPrefix + id)
		return nil, ErrNotFound
	}
	if sess.Expired() {
		s.cache.Delete(keyPrefix + id)
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Delete ends the session.
func (s *Store) Delete(ctx context.Context, id string) {
	s.cache.Delete(keyPrefix + id)
}

func (s *Store) put(sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	s.cache.Set(keyPrefix+sess.ID, raw, time.Until(sess.ExpiresAt))
	return nil
}
