package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dropDatabas3/grantkit/internal/store/core"
	"github.com/dropDatabas3/grantkit/internal/store/memory"
)

func TestDirectoryFindClient(t *testing.T) {
	repo := memory.New()
	err := repo.UpsertClient(context.Background(), &core.Client{
		ID:            "web",
		Name:          "Web App",
		SecretHash:    "$2a$10$hash",
		RedirectURIs:  []string{"https://rp.example/cb"},
		Scopes:        []string{"openid", "profile"},
		GrantTypes:    []string{"authorization_code"},
		ResponseTypes: []string{"code", "id_token code"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	d := NewDirectory(repo)
	cl, err := d.FindClient(context.Background(), "web")
	if err != nil {
		t.Fatalf("FindClient: %v", err)
	}
	if cl.ID != "web" || cl.Name != "Web App" || cl.SecretHash != "$2a$10$hash" {
		t.Fatalf("unexpected client: %+v", cl)
	}
	if !cl.AllowsRedirectURI("https://rp.example/cb") {
		t.Fatalf("registered redirect URI not allowed")
	}
	if !cl.AllowsResponseType("code id_token") {
		t.Fatalf("registered response type not allowed in canonical form")
	}
	if cl.Public() {
		t.Fatalf("confidential client reported as public")
	}
}

func TestDirectoryNotFound(t *testing.T) {
	d := NewDirectory(memory.New())
	if _, err := d.FindClient(context.Background(), "ghost"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
