package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sagarc03/fsgate"
	"github.com/sagarc03/fsgate/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_Record(t *testing.T) {
	journal := setupTestJournal(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)

	e, err := journal.Record(ctx, fsgate.Event{
		Operation:   fsgate.OpCopy,
		Path:        "a.txt",
		Destination: "b/a.txt",
		SizeBytes:   11,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.True(t, e.CreatedAt.After(before))
	assert.Equal(t, fsgate.OpCopy, e.Operation)

	page, err := journal.List(ctx, fsgate.EventQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	got := page.Items[0]
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, "a.txt", got.Path)
	assert.Equal(t, "b/a.txt", got.Destination)
	assert.Equal(t, int64(11), got.SizeBytes)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt), "created_at: %v != %v", e.CreatedAt, got.CreatedAt)
	assert.Empty(t, page.NextCursor)
}

func TestJournal_Record_InvalidOperation(t *testing.T) {
	journal := setupTestJournal(t)

	_, err := journal.Record(context.Background(), fsgate.Event{Operation: "rename", Path: "a"})
	assert.Error(t, err)
}

func TestJournal_List_Pagination(t *testing.T) {
	journal := setupTestJournal(t)
	ctx := context.Background()

	for i := range 5 {
		_, err := journal.Record(ctx, fsgate.Event{Operation: fsgate.OpWrite, Path: fmt.Sprintf("f%d", i)})
		require.NoError(t, err)
	}

	var paths []string
	cursor := ""
	pages := 0
	for {
		page, err := journal.List(ctx, fsgate.EventQuery{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		pages++

		for _, e := range page.Items {
			paths = append(paths, e.Path)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, 3, pages)
	assert.ElementsMatch(t, []string{"f0", "f1", "f2", "f3", "f4"}, paths)
}

func TestJournal_List_PathPrefix(t *testing.T) {
	journal := setupTestJournal(t)
	ctx := context.Background()

	for _, p := range []string{"docs/a", "docs/b", "docs_x/c", "img/d"} {
		_, err := journal.Record(ctx, fsgate.Event{Operation: fsgate.OpWrite, Path: p})
		require.NoError(t, err)
	}

	page, err := journal.List(ctx, fsgate.EventQuery{PathPrefix: "docs/"})
	require.NoError(t, err)

	var paths []string
	for _, e := range page.Items {
		paths = append(paths, e.Path)
	}
	assert.ElementsMatch(t, []string{"docs/a", "docs/b"}, paths)

	page, err = journal.List(ctx, fsgate.EventQuery{PathPrefix: "docs_"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "docs_x/c", page.Items[0].Path)
}

func TestJournal_List_InvalidCursor(t *testing.T) {
	journal := setupTestJournal(t)

	_, err := journal.List(context.Background(), fsgate.EventQuery{Cursor: "!!!"})
	assert.Error(t, err)
}

func TestJournal_Prune(t *testing.T) {
	journal := setupTestJournal(t)
	ctx := context.Background()

	for i := range 3 {
		_, err := journal.Record(ctx, fsgate.Event{Operation: fsgate.OpDelete, Path: fmt.Sprintf("f%d", i)})
		require.NoError(t, err)
	}

	n, err := journal.Prune(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = journal.Prune(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	page, err := journal.List(ctx, fsgate.EventQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestDatabase_Validate(t *testing.T) {
	ctx := context.Background()
	tables := fsgate.Tables{Events: "events_validate"}

	db, err := sqlite.Connect(ctx, ":memory:", tables)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = db.Validate(ctx)
	assert.ErrorContains(t, err, "does not exist")

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migrate is idempotent")

	assert.NoError(t, db.Validate(ctx))
	assert.NoError(t, db.Ping(ctx))
}
