// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contains the schema migrations for the PostgreSQL store.
//
//go:embed *.sql
var FS embed.FS
