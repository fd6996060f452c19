// Package postgres implements the event journal using PostgreSQL
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/fsgate"
	"github.com/sagarc03/fsgate/database/internal"
)

type journal struct {
	pool      *pgxpool.Pool
	tableName string
}

func (j *journal) table() string {
	return pgx.Identifier{j.tableName}.Sanitize()
}

func (j *journal) Record(ctx context.Context, e fsgate.Event) (fsgate.Event, error) {
	if !e.Operation.IsValid() {
		return fsgate.Event{}, fmt.Errorf("record: invalid operation %q", e.Operation)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (operation, path, destination, size_bytes)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at
	`, j.table())

	err := j.pool.QueryRow(ctx, query,
		string(e.Operation), e.Path, e.Destination, e.SizeBytes,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fsgate.Event{}, fmt.Errorf("record: %w", err)
	}

	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func (j *journal) List(ctx context.Context, q fsgate.EventQuery) (fsgate.EventPage, error) {
	cursor, err := internal.DecodeCursor(q.Cursor)
	if err != nil {
		return fsgate.EventPage{}, fmt.Errorf("list: %w", err)
	}

	limit := internal.ClampLimit(q.Limit)
	escapedPrefix := internal.EscapeLikePattern(q.PathPrefix)

	var query string
	var args []any

	if q.Cursor == "" {
		query = fmt.Sprintf(`
			SELECT id::text, operation, path, destination, size_bytes, created_at
			FROM %s
			WHERE path LIKE $1 || '%%' ESCAPE '\'
			ORDER BY created_at, id
			LIMIT $2
		`, j.table())
		args = []any{escapedPrefix, limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT id::text, operation, path, destination, size_bytes, created_at
			FROM %s
			WHERE path LIKE $1 || '%%' ESCAPE '\' AND (created_at, id) > ($2, $3::uuid)
			ORDER BY created_at, id
			LIMIT $4
		`, j.table())
		args = []any{escapedPrefix, cursor.CreatedAt, cursor.ID, limit + 1}
	}

	rows, err := j.pool.Query(ctx, query, args...)
	if err != nil {
		return fsgate.EventPage{}, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := make([]fsgate.Event, 0, limit)
	for rows.Next() {
		var e fsgate.Event
		var op string

		if err := rows.Scan(&e.ID, &op, &e.Path, &e.Destination, &e.SizeBytes, &e.CreatedAt); err != nil {
			return fsgate.EventPage{}, fmt.Errorf("list: scan: %w", err)
		}
		e.Operation = fsgate.Operation(op)
		e.CreatedAt = e.CreatedAt.UTC()

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
	query := fmt.Sprintf(`DELETE FROM %s WHERE created_at < $1`, j.table())

	tag, err := j.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}

	return tag.RowsAffected(), nil
}
