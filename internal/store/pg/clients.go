package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/grantkit/internal/store/core"
)

func (s *Store) UpsertClient(ctx context.Context, c *core.Client) error {
	const q = `
INSERT INTO clients (client_id, name, secret_hash, redirect_uris, scopes, grant_types, response_types)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (client_id) DO UPDATE SET
	name = EXCLUDED.name,
	secret_hash = EXCLUDED.secret_hash,
	redirect_uris = EXCLUDED.redirect_uris,
	scopes = EXCLUDED.scopes,
	grant_types = EXCLUDED.grant_types,
	response_types = EXCLUDED.response_types,
	updated_at = now()
RETURNING created_at, updated_at`
	return s.pool.QueryRow(ctx, q,
		c.ID, c.Name, c.SecretHash,
		c.RedirectURIs, c.Scopes, c.GrantTypes, c.ResponseTypes).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (s *Store) GetClientByID(ctx context.Context, clientID string) (*core.Client, error) {
	const q = `
SELECT client_id, name, secret_hash, redirect_uris, scopes, grant_types, response_types, created_at, updated_at
FROM clients
WHERE client_id = $1`
	var c core.Client
	err := s.pool.QueryRow(ctx, q, clientID).Scan(
		&c.ID, &c.Name, &c.SecretHash,
		&c.RedirectURIs, &c.Scopes, &c.GrantTypes, &c.ResponseTypes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) DeleteClient(ctx context.Context, clientID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE client_id = $1`, clientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
