// Package internal holds helpers shared by the journal backends.
package internal

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Cursor marks the last event of a page. Events are ordered by
// (created_at, id), so both are needed to resume.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// EncodeCursor returns an opaque, URL-safe token for the given position.
func EncodeCursor(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by EncodeCursor. An empty token
// yields the zero Cursor.
func DecodeCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}

	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid encoding: %w", err)
	}

	ts, id, found := strings.Cut(string(raw), "|")
	if !found {
		return Cursor{}, errors.New("decode cursor: invalid format")
	}
	if id == "" {
		return Cursor{}, errors.New("decode cursor: empty id")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid timestamp: %w", err)
	}

	return Cursor{CreatedAt: createdAt, ID: id}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLikePattern escapes LIKE wildcards so s matches literally when used
// with ESCAPE '\'.
func EscapeLikePattern(s string) string {
	return likeEscaper.Replace(s)
}

// ClampLimit bounds a page size to [1, 1000], defaulting to 100.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	return min(limit, 1000)
}
