package e2e_test

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/fsgate"
	"github.com/sagarc03/fsgate/clientcli"
)

const testAPIKey = "e2e-secret-key"

// TestE2E_FileLifecycle covers the basic file operations without a journal.
func TestE2E_FileLifecycle(t *testing.T) {
	client, _ := startServer(t, ServerConfig{
		Port:        getOpenPort(t),
		StoragePath: t.TempDir(),
		APIKey:      testAPIKey,
	})

	runFileLifecycle(t, client)
}

// TestE2E_Journal_SQLite runs the lifecycle with a SQLite journal and checks
// that every mutation was recorded.
func TestE2E_Journal_SQLite(t *testing.T) {
	client, configPath := startServer(t, ServerConfig{
		Port:        getOpenPort(t),
		StoragePath: t.TempDir(),
		APIKey:      testAPIKey,
		Journal:     true,
		JournalType: "sqlite",
		JournalDSN:  filepath.Join(t.TempDir(), "journal.db"),
	})

	runFileLifecycle(t, client)
	assertJournal(t, readJournal(t, configPath))
}

// TestE2E_Journal_Postgres runs the lifecycle with a PostgreSQL journal.
func TestE2E_Journal_Postgres(t *testing.T) {
	dsn := getSharedPostgresDatabase(t)

	client, configPath := startServer(t, ServerConfig{
		Port:        getOpenPort(t),
		StoragePath: t.TempDir(),
		APIKey:      testAPIKey,
		Journal:     true,
		JournalType: "postgres",
		JournalDSN:  dsn,
	})

	runFileLifecycle(t, client)
	assertJournal(t, readJournal(t, configPath))
}

// runFileLifecycle is the shared scenario: mkdir, upload, read, copy, list,
// delete.
func runFileLifecycle(t *testing.T, client *clientcli.Client) {
	t.Helper()
	ctx := context.Background()

	local := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(local, []byte("Hello, World!"), 0o600))

	t.Run("mkdir creates a directory", func(t *testing.T) {
		require.NoError(t, client.CreateDir(ctx, "docs"))

		ok, err := client.DirExists(ctx, "docs")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("mkdir on existing directory conflicts", func(t *testing.T) {
		err := client.CreateDir(ctx, "docs")
		assert.ErrorIs(t, err, clientcli.ErrConflict)
	})

	t.Run("upload creates the file", func(t *testing.T) {
		results, err := client.Upload(ctx, clientcli.UploadOptions{
			LocalPath:  local,
			RemotePath: "docs/hello.txt",
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, int64(13), results[0].Size)
		assert.NotEmpty(t, results[0].ETag)
	})

	t.Run("upload without overwrite conflicts", func(t *testing.T) {
		_, err := client.Upload(ctx, clientcli.UploadOptions{
			LocalPath:  local,
			RemotePath: "docs/hello.txt",
		})
		assert.ErrorIs(t, err, clientcli.ErrConflict)
	})

	t.Run("download returns the content", func(t *testing.T) {
		_, body, err := client.Download(ctx, clientcli.DownloadOptions{
			RemotePath: "docs/hello.txt",
			LocalPath:  "-",
		})
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "Hello, World!", string(data))
	})

	t.Run("size reports bytes", func(t *testing.T) {
		res, err := client.Size(ctx, "docs/hello.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(13), res.Size)
	})

	t.Run("copy duplicates the file", func(t *testing.T) {
		require.NoError(t, client.Copy(ctx, clientcli.CopyOptions{
			Source:      "docs/hello.txt",
			Destination: "archive/hello.txt",
		}))

		ok, err := client.FileExists(ctx, "archive/hello.txt")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("list returns a tree with dirs", func(t *testing.T) {
		res, err := client.List(ctx, clientcli.ListOptions{Path: "/", Depth: 2, IncludeDirs: true})
		require.NoError(t, err)
		require.Len(t, res.Entries, 2)

		assert.Equal(t, "archive", res.Entries[0].Name)
		assert.True(t, res.Entries[0].IsDir())
		require.Len(t, res.Entries[0].Contents, 1)
		assert.Equal(t, "hello.txt", res.Entries[0].Contents[0].Name)
		assert.Equal(t, "docs", res.Entries[1].Name)
	})

	t.Run("list without dirs flattens files", func(t *testing.T) {
		res, err := client.List(ctx, clientcli.ListOptions{Path: "/", Depth: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Count())
		for _, e := range res.Entries {
			assert.False(t, e.IsDir())
		}
	})

	t.Run("delete of a directory is refused", func(t *testing.T) {
		results, err := client.Delete(ctx, clientcli.DeleteOptions{Paths: []string{"docs"}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.ErrorIs(t, results[0].Err, clientcli.ErrNotFound)

		ok, err := client.DirExists(ctx, "docs")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("delete removes the file", func(t *testing.T) {
		results, err := client.Delete(ctx, clientcli.DeleteOptions{Paths: []string{"archive/hello.txt"}})
		require.NoError(t, err)
		assert.False(t, clientcli.HasDeleteErrors(results))

		ok, err := client.FileExists(ctx, "archive/hello.txt")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func assertJournal(t *testing.T, events []fsgate.Event) {
	t.Helper()

	ops := make([]fsgate.Operation, 0, len(events))
	for _, e := range events {
		ops = append(ops, e.Operation)
	}
	assert.Equal(t, []fsgate.Operation{
		fsgate.OpMkdir,
		fsgate.OpWrite,
		fsgate.OpCopy,
		fsgate.OpDelete,
	}, ops)

	require.Len(t, events, 4)
	assert.Equal(t, "docs/hello.txt", events[1].Path)
	assert.Equal(t, int64(13), events[1].SizeBytes)
	assert.Equal(t, "archive/hello.txt", events[2].Destination)
}

// TestE2E_Auth checks the API key guard in front of every route.
func TestE2E_Auth(t *testing.T) {
	port := getOpenPort(t)
	_, _ = startServer(t, ServerConfig{
		Port:        port,
		StoragePath: t.TempDir(),
		APIKey:      testAPIKey,
	})
	baseURL := "http://localhost:" + strconv.Itoa(port)

	tests := []struct {
		name   string
		path   string
		key    string
		status int
	}{
		{name: "missing key", path: "/list?path=/", status: http.StatusUnauthorized},
		{name: "wrong key", path: "/list?path=/", key: "nope", status: http.StatusUnauthorized},
		{name: "unknown route without key", path: "/nope", status: http.StatusUnauthorized},
		{name: "unknown route with key", path: "/nope", key: testAPIKey, status: http.StatusNotFound},
		{name: "valid key", path: "/list?path=/", key: testAPIKey, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, baseURL+tt.path, http.NoBody)
			require.NoError(t, err)
			if tt.key != "" {
				req.Header.Set("apikey", tt.key)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

// TestE2E_Traversal checks that paths escaping the data directory are
// rejected before anything is touched.
func TestE2E_Traversal(t *testing.T) {
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("top secret"), 0o600))

	storage := filepath.Join(outside, "data")
	require.NoError(t, os.Mkdir(storage, 0o750))

	client, _ := startServer(t, ServerConfig{
		Port:        getOpenPort(t),
		StoragePath: storage,
		APIKey:      testAPIKey,
	})
	ctx := context.Background()

	_, _, err := client.Download(ctx, clientcli.DownloadOptions{RemotePath: "../secret.txt", LocalPath: "-"})
	assert.ErrorIs(t, err, clientcli.ErrBadRequest)

	_, err = client.Size(ctx, "/hello/../world/../..")
	assert.ErrorIs(t, err, clientcli.ErrBadRequest)

	err = client.Copy(ctx, clientcli.CopyOptions{Source: "../secret.txt", Destination: "stolen.txt"})
	assert.ErrorIs(t, err, clientcli.ErrBadRequest)

	ok, err := client.FileExists(ctx, "stolen.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}
