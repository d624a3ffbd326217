package store

import (
	"context"

	"github.com/dropDatabas3/grantkit/internal/oauth2"
	"github.com/dropDatabas3/grantkit/internal/store/core"
)

// ClientGetter is the slice of the repository the directory needs.
type ClientGetter interface {
	GetClientByID(ctx context.Context, clientID string) (*core.Client, error)
}

// Directory adapts the store to the engines' client lookup. It translates
// stored registrations into the engine view and maps ErrNotFound through
// unchanged so callers can branch on it.
type Directory struct {
	clients ClientGetter
}

func NewDirectory(clients ClientGetter) *Directory {
	return &Directory{clients: clients}
}

func (d *Directory) FindClient(ctx context.Context, clientID string) (*oauth2.Client, error) {
	cl, err := d.clients.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &oauth2.Client{
		ID:            cl.ID,
		Name:          cl.Name,
		SecretHash:    cl.SecretHash,
		RedirectURIs:  cl.RedirectURIs,
		Scopes:        cl.Scopes,
		GrantTypes:    cl.GrantTypes,
		ResponseTypes: cl.ResponseTypes,
	}, nil
}
