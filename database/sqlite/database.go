package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/fsgate"

	_ "modernc.org/sqlite" // SQLite driver
)

// database provides SQLite database operations.
type database struct {
	db     *sql.DB
	tables fsgate.Tables
}

// Connect opens a SQLite database. Tables should be validated before
// calling Connect.
//
// The pool is limited to one connection: every connection to ":memory:"
// would otherwise see its own empty database, and SQLite serialises writers
// anyway.
func Connect(ctx context.Context, dsn string, tables fsgate.Tables) (*database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	return &database{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// Journal returns the event journal backed by this database.
func (d *database) Journal() fsgate.Journal {
	return &journal{db: d.db, tableName: d.tables.Events}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
