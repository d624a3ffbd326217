// Package memory implements the repository in process memory. Intended for
// development and tests; nothing survives a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/grantkit/internal/store/core"
)

type Store struct {
	mu       sync.RWMutex
	clients  map[string]*core.Client
	consents map[string]*core.Consent // subject + "\x00" + client_id
}

func New() *Store {
	return &Store{
		clients:  make(map[string]*core.Client),
		consents: make(map[string]*core.Consent),
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() {}

func consentKey(subject, clientID string) string { return subject + "\x00" + clientID }

func (s *Store) UpsertClient(ctx context.Context, c *core.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := s.clients[c.ID]; ok {
		c.CreatedAt = existing.CreatedAt
	} else {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	cp := cloneClient(c)
	s.clients[c.ID] = cp
	return nil
}

func (s *Store) GetClientByID(ctx context.Context, clientID string) (*core.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneClient(c), nil
}

func (s *Store) DeleteClient(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[clientID]; !ok {
		return core.ErrNotFound
	}
	delete(s.clients, clientID)
	return nil
}

func (s *Store) UpsertConsent(ctx context.Context, c *core.Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.GrantedAt = time.Now().UTC()
	c.RevokedAt = nil
	cp := *c
	cp.GrantedScopes = append([]string(nil), c.GrantedScopes...)
	s.consents[consentKey(c.Subject, c.ClientID)] = &cp
	return nil
}

func (s *Store) GetConsent(ctx context.Context, subject, clientID string) (*core.Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.consents[consentKey(subject, clientID)]
	if !ok || c.RevokedAt != nil {
		return nil, core.ErrNotFound
	}
	cp := *c
	cp.GrantedScopes = append([]string(nil), c.GrantedScopes...)
	return &cp, nil
}

func (s *Store) RevokeConsent(ctx context.Context, subject, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.consents[consentKey(subject, clientID)]
	if !ok || c.RevokedAt != nil {
		return core.ErrNotFound
	}
	now := time.Now().UTC()
	c.RevokedAt = &now
	return nil
}

func cloneClient(c *core.Client) *core.Client {
	cp := *c
	cp.RedirectURIs = append([]string(nil), c.RedirectURIs...)
	cp.Scopes = append([]string(nil), c.Scopes...)
	cp.GrantTypes = append([]string(nil), c.GrantTypes...)
	cp.ResponseTypes = append([]string(nil), c.ResponseTypes...)
	return &cp
}
