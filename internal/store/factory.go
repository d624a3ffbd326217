// Package store selects and decorates the repository implementations.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/grantkit/internal/store/core"
	"github.com/dropDatabas3/grantkit/internal/store/memory"
	"github.com/dropDatabas3/grantkit/internal/store/pg"
)

// Config mirrors the storage block of the app configuration.
type Config struct {
	Driver   string
	DSN      string
	Postgres struct {
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime string
	}
}

// Open returns the repository for the configured driver.
func Open(ctx context.Context, cfg Config) (core.Repository, error) {
	switch strings.ToLower(cfg.Driver) {
	case "postgres", "pg", "postgresql":
		return pg.New(ctx, cfg.DSN, pg.Tuning{
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
	case "memory", "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}
