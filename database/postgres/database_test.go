package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sagarc03/fsgate"
	"github.com/sagarc03/fsgate/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	pool := getSharedTestDatabase(t)
	dsn := getDSN(pool)
	ctx := context.Background()

	tables := fsgate.Tables{Events: "events"}
	db, err := postgres.Connect(ctx, dsn, tables)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = db.Ping(ctx)
	assert.NoError(t, err, "ping should succeed after connect")
}

func TestDatabase_Migrate(t *testing.T) {
	pool := getSharedTestDatabase(t)
	dsn := getDSN(pool)
	ctx := context.Background()

	t.Run("success - creates tables", func(t *testing.T) {
		tableName := "migrate_test_" + getRandomString(t)
		db, err := postgres.Connect(ctx, dsn, fsgate.Tables{Events: tableName})
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
			_ = dropTable(ctx, pool, tableName)
		}()

		err = db.Migrate(ctx)
		require.NoError(t, err, "migrate should succeed")

		_, err = db.Journal().List(ctx, fsgate.EventQuery{Limit: 1})
		assert.NoError(t, err, "journal should work after migration")
	})

	t.Run("idempotent - can run multiple times", func(t *testing.T) {
		tableName := "migrate_idem_" + getRandomString(t)
		db, err := postgres.Connect(ctx, dsn, fsgate.Tables{Events: tableName})
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
			_ = dropTable(ctx, pool, tableName)
		}()

		assert.NoError(t, db.Migrate(ctx), "first migrate should succeed")
		assert.NoError(t, db.Migrate(ctx), "second migrate should succeed")
	})
}

func TestDatabase_Validate(t *testing.T) {
	pool := getSharedTestDatabase(t)
	dsn := getDSN(pool)
	ctx := context.Background()

	t.Run("success - valid schema after migrate", func(t *testing.T) {
		tableName := "validate_test_" + getRandomString(t)
		db, err := postgres.Connect(ctx, dsn, fsgate.Tables{Events: tableName})
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
			_ = dropTable(ctx, pool, tableName)
		}()

		require.NoError(t, db.Migrate(ctx))
		assert.NoError(t, db.Validate(ctx), "validate should succeed after migrate")
	})

	t.Run("error - table does not exist", func(t *testing.T) {
		db, err := postgres.Connect(ctx, dsn, fsgate.Tables{Events: "nonexistent_table"})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		assert.ErrorContains(t, err, "does not exist")
	})

	t.Run("error - missing column", func(t *testing.T) {
		tableName := "validate_missing_" + getRandomString(t)
		_, err := pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE %s (id UUID PRIMARY KEY, path TEXT NOT NULL)`, tableName))
		require.NoError(t, err)
		defer func() { _ = dropTable(ctx, pool, tableName) }()

		db, err := postgres.Connect(ctx, dsn, fsgate.Tables{Events: tableName})
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		err = db.Validate(ctx)
		assert.ErrorContains(t, err, "missing columns")
	})
}

func TestDatabase_Close(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	db, err := postgres.Connect(ctx, getDSN(pool), fsgate.Tables{Events: "close_test"})
	require.NoError(t, err)

	assert.NoError(t, db.Close())
	assert.Error(t, db.Ping(ctx), "ping should fail after close")
}

func TestJournal_Record(t *testing.T) {
	journal := setupTestJournal(t)
	ctx := context.Background()

	e, err := journal.Record(ctx, fsgate.Event{
		Operation:   fsgate.OpCopy,
		Path:        "a.txt",
		Destination: "b/a.txt",
		SizeBytes:   11,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	page, err := journal.List(ctx, fsgate.EventQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	got := page.Items[0]
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, fsgate.OpCopy, got.Operation)
	assert.Equal(t, "b/a.txt", got.Destination)
	assert.Equal(t, int64(11), got.SizeBytes)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))

	_, err = journal.Record(ctx, fsgate.Event{Operation: "rename", Path: "a"})
	assert.Error(t, err)
}

func TestJournal_List(t *testing.T) {
	journal := setupTestJournal(t)
	ctx := context.Background()

	for _, p := range []string{"docs/a", "docs/b", "docs/c", "docs_x/d", "img/e"} {
		_, err := journal.Record(ctx, fsgate.Event{Operation: fsgate.OpWrite, Path: p})
		require.NoError(t, err)
	}

	t.Run("prefix is literal", func(t *testing.T) {
		page, err := journal.List(ctx, fsgate.EventQuery{PathPrefix: "docs_"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "docs_x/d", page.Items[0].Path)
	})

	t.Run("paginates with cursor", func(t *testing.T) {
		var paths []string
		cursor := ""
		for {
			page, err := journal.List(ctx, fsgate.EventQuery{PathPrefix: "docs/", Limit: 2, Cursor: cursor})
			require.NoError(t, err)
			for _, e := range page.Items {
				paths = append(paths, e.Path)
			}
			if page.NextCursor == "" {
				break
			}
			cursor = page.NextCursor
		}
		assert.ElementsMatch(t, []string{"docs/a", "docs/b", "docs/c"}, paths)
	})

	t.Run("invalid cursor", func(t *testing.T) {
		_, err := journal.List(ctx, fsgate.EventQuery{Cursor: "!!!"})
		assert.Error(t, err)
	})
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

	n, err = journal.Prune(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
