package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/fsgate"
	"github.com/sagarc03/fsgate/database/postgres"
	"github.com/sagarc03/fsgate/database/sqlite"
)

// Config holds the configuration for connecting to a journal backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string
	// DSN is the data source name (connection string)
	DSN string
	// Tables holds the table names used by the journal
	Tables fsgate.Tables
}

// Database is a connected journal backend.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	Journal() fsgate.Journal
	Close() error
}

// Connect validates the table names and opens the configured backend. It
// does not migrate; callers decide between Migrate and Validate.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	switch cfg.Type {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.Type)
	}

	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if cfg.Type == "sqlite" {
		db, err := sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := postgres.Connect(ctx, cfg.DSN, cfg.Tables)
	if err != nil {
		return nil, err
	}
	return db, nil
}
