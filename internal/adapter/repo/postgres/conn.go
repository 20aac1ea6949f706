package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a pgx connection pool from the provided DSN.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// EnsureSchema creates the sessions table when it does not exist yet.
// Production deploys run migrations out of band; this keeps local and test
// environments self-bootstrapping.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		id                 TEXT PRIMARY KEY,
		mode               TEXT NOT NULL,
		category           TEXT NOT NULL,
		target_role        TEXT NOT NULL DEFAULT '',
		company_simulation TEXT NOT NULL DEFAULT '',
		job_description    TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL,
		questions          JSONB NOT NULL,
		summary            JSONB,
		version            INTEGER NOT NULL DEFAULT 1,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL
	)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("op=postgres.ensure_schema: %w", err)
	}
	return nil
}
