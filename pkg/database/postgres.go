package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied on startup; the archive is a single append-only table
const schema = `
CREATE TABLE IF NOT EXISTS inquiries (
	id                    BIGSERIAL PRIMARY KEY,
	attempt_id            TEXT NOT NULL UNIQUE,
	lang                  TEXT NOT NULL,
	user_name             TEXT NOT NULL,
	user_company          TEXT NOT NULL,
	user_email            TEXT NOT NULL,
	user_phone            TEXT NOT NULL,
	pol_pod               TEXT NOT NULL,
	commodity_description TEXT NOT NULL,
	dispatched_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS inquiries_dispatched_at_idx ON inquiries (dispatched_at DESC);
`

func NewPostgresConnection(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}

	// PgBouncer in transaction mode rejects named prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	config.MaxConns = 5
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Migrate creates the archive table when missing
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
