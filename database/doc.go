// Package database provides a unified interface for connecting to journal backends.
//
// The journal records every mutating gateway operation (write, delete,
// copy, mkdir) so that operators can audit what changed under the data
// directory. Recording is best effort: the gateway never fails a request
// because the journal is unavailable.
//
// # Supported Backends
//
//   - PostgreSQL: Shared backend using a pgx connection pool
//   - SQLite: Embedded backend suitable for single-node deployments
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "fsgate.db",
//	    Tables: fsgate.Tables{Events: "fsgate_events"},
//	}
//
//	db, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	journal := db.Journal()
//
// # Pagination
//
// Journal listings are ordered by (created_at, id) and paged with an opaque
// cursor. Pass EventPage.NextCursor back as EventQuery.Cursor to fetch the
// next page; an empty NextCursor means there are no more events.
package database
