// Package sqlite implements the event journal using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/fsgate"
	"github.com/sagarc03/fsgate/database/internal"
)

// timeLayout keeps created_at fixed width so text ordering matches time
// ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type journal struct {
	db        *sql.DB
	tableName string
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func (j *journal) Record(ctx context.Context, e fsgate.Event) (fsgate.Event, error) {
	if !e.Operation.IsValid() {
		return fsgate.Event{}, fmt.Errorf("record: invalid operation %q", e.Operation)
	}

	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, operation, path, destination, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, quoteIdentifier(j.tableName))

	_, err := j.db.ExecContext(ctx, query,
		e.ID, string(e.Operation), e.Path, e.Destination, e.SizeBytes, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fsgate.Event{}, fmt.Errorf("record: %w", err)
	}

	return e, nil
}

func (j *journal) List(ctx context.Context, q fsgate.EventQuery) (fsgate.EventPage, error) {
	cursor, err := internal.DecodeCursor(q.Cursor)
	if err != nil {
		return fsgate.EventPage{}, fmt.Errorf("list: %w", err)
	}

	limit := internal.ClampLimit(q.Limit)
	escapedPrefix := internal.EscapeLikePattern(q.PathPrefix)
	table := quoteIdentifier(j.tableName)

	var query string
	var args []any

	if q.Cursor == "" {
		query = fmt.Sprintf(`
			SELECT id, operation, path, destination, size_bytes, created_at
			FROM %s
			WHERE path LIKE ? || '%%' ESCAPE '\'
			ORDER BY created_at, id
			LIMIT ?
		`, table)
		args = []any{escapedPrefix, limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT id, operation, path, destination, size_bytes, created_at
			FROM %s
			WHERE path LIKE ? || '%%' ESCAPE '\' AND (created_at, id) > (?, ?)
			ORDER BY created_at, id
			LIMIT ?
		`, table)
		args = []any{escapedPrefix, formatTime(cursor.CreatedAt), cursor.ID, limit + 1}
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fsgate.EventPage{}, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]fsgate.Event, 0, limit)
	for rows.Next() {
		var e fsgate.Event
		var op, createdAt string

		if scanErr := rows.Scan(&e.ID, &op, &e.Path, &e.Destination, &e.SizeBytes, &createdAt); scanErr != nil {
			return fsgate.EventPage{}, fmt.Errorf("list: scan: %w", scanErr)
		}
		e.Operation = fsgate.Operation(op)

		var parseErr error
		e.CreatedAt, parseErr = time.Parse(timeLayout, createdAt)
		if parseErr != nil {
			return fsgate.EventPage{}, fmt.Errorf("list: parse created_at: %w", parseErr)
		}

		items = append(items, e)
	}

	if err := rows.Err(); err != nil {
		return fsgate.EventPage{}, fmt.Errorf("list: rows: %w", err)
	}

	var nextCursor string
	if len(items) > limit {
		last := items[limit-1]
		nextCursor = internal.EncodeCursor(last.CreatedAt, last.ID)
		items = items[:limit]
	}

	return fsgate.EventPage{Items: items, NextCursor: nextCursor}, nil
}

func (j *journal) Prune(ctx context.Context, before time.Time) (int64, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`DELETE FROM %s WHERE created_at < ?`, quoteIdentifier(j.tableName))

	result, err := j.db.ExecContext(ctx, query, formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune: rows affected: %w", err)
	}

	return n, nil
}
