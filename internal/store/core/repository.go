package core

import "context"

// Repository is the persistence surface the grant server needs: client
// registrations and user consents. Implementations live in store/pg and
// store/memory.
type Repository interface {
	Ping(ctx context.Context) error
	Close()

	// Clients
	UpsertClient(ctx context.Context, c *Client) error
	GetClientByID(ctx context.Context, clientID string) (*Client, error)
	DeleteClient(ctx context.Context, clientID string) error

	// Consents
	UpsertConsent(ctx context.Context, c *Consent) error
	// GetConsent returns the active (non-revoked) consent, or ErrNotFound.
	GetConsent(ctx context.Context, subject, clientID string) (*Consent, error)
	RevokeConsent(ctx context.Context, subject, clientID string) error
}
