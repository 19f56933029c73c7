package db

import (
	"context"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"tablebook/internal/pkg/errs"
	"tablebook/migrations"
)

// Migrate applies every embedded schema file that has not been recorded in
// schema_migrations yet, in lexical order. Each file runs in its own
// transaction together with its bookkeeping row.
func Migrate(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return 0, errs.Wrap(err, "failed to read embedded migrations")
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
	); err != nil {
		return 0, errs.Wrap(err, "failed to create schema_migrations")
	}

	applied := 0
	for _, name := range files {
		var exists bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, name,
		).Scan(&exists); err != nil {
			return applied, errs.Wrap(err, "failed to check migration state")
		}
		if exists {
			continue
		}

		body, err := migrations.FS.ReadFile(name)
		if err != nil {
			return applied, errs.Wrap(err, "failed to read migration "+name)
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return applied, errs.Wrap(err, "failed to begin migration transaction")
		}
		if _, err := tx.Exec(ctx, string(body)); err != nil {
			_ = tx.Rollback(ctx)
			return applied, errs.Wrap(err, "failed to apply "+name)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1)`, name,
		); err != nil {
			_ = tx.Rollback(ctx)
			return applied, errs.Wrap(err, "failed to record "+name)
		}
		if err := tx.Commit(ctx); err != nil {
			return applied, errs.Wrap(err, "failed to commit "+name)
		}
		applied++
	}

	return applied, nil
}
