package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/fsgate"
)

// Migrate creates the journal tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables fsgate.Tables) error {
	if err := createEventsTable(ctx, pool, tables.Events); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Events, err)
	}
	return nil
}

// DropTables removes the journal tables.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables fsgate.Tables) error {
	quotedTable := pgx.Identifier{tables.Events}.Sanitize()
	if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTable)); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Events, err)
	}
	return nil
}

func createEventsTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexCreated := pgx.Identifier{fmt.Sprintf("idx_%s_created", tableName)}.Sanitize()
	indexPath := pgx.Identifier{fmt.Sprintf("idx_%s_path", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			operation TEXT NOT NULL,
			path TEXT NOT NULL,
			destination TEXT NOT NULL DEFAULT '',
			size_bytes BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (created_at, id);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (path text_pattern_ops);
	`,
		quotedTable,
		indexCreated, quotedTable,
		indexPath, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create events table: %w", err)
	}
	return nil
}
