package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// RunMigrations applies every *_up.sql file in fsys in lexical order.
// Statements are expected to be idempotent; there is no version table.
func (s *Store) RunMigrations(ctx context.Context, fsys fs.FS) error {
	files, err := listMigrations(fsys, "_up.sql")
	if err != nil {
		return err
	}
	for _, f := range files {
		b, err := fs.ReadFile(fsys, f)
		if err != nil {
			return err
		}
		if _, err := s.pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
	}
	return nil
}

// RunMigrationsDown applies every *_down.sql file in reverse lexical order.
func (s *Store) RunMigrationsDown(ctx context.Context, fsys fs.FS) error {
	files, err := listMigrations(fsys, "_down.sql")
	if err != nil {
		return err
	}
	for i := len(files) - 1; i >= 0; i-- {
		b, err := fs.ReadFile(fsys, files[i])
		if err != nil {
			return err
		}
		if _, err := s.pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec %s: %w", files[i], err)
		}
	}
	return nil
}

func listMigrations(fsys fs.FS, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
