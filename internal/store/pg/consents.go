package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/grantkit/internal/store/core"
)

func (s *Store) UpsertConsent(ctx context.Context, c *core.Consent) error {
	const q = `
INSERT INTO consents (subject, client_id, granted_scopes, granted_at, revoked_at)
VALUES ($1, $2, $3, now(), NULL)
ON CONFLICT (subject, client_id) DO UPDATE SET
	granted_scopes = EXCLUDED.granted_scopes,
	granted_at = now(),
	revoked_at = NULL
RETURNING granted_at`
	return s.pool.QueryRow(ctx, q, c.Subject, c.ClientID, c.GrantedScopes).
		Scan(&c.GrantedAt)
}

func (s *Store) GetConsent(ctx context.Context, subject, clientID string) (*core.Consent, error) {
	const q = `
SELECT subject, client_id, granted_scopes, granted_at, revoked_at
FROM consents
WHERE subject = $1 AND client_id = $2 AND revoked_at IS NULL`
	var c core.Consent
	err := s.pool.QueryRow(ctx, q, subject, clientID).Scan(
		&c.Subject, &c.ClientID, &c.GrantedScopes, &c.GrantedAt, &c.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) RevokeConsent(ctx context.Context, subject, clientID string) error {
	const q = `
UPDATE consents SET revoked_at = now()
WHERE subject = $1 AND client_id = $2 AND revoked_at IS NULL`
	tag, err := s.pool.Exec(ctx, q, subject, clientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
