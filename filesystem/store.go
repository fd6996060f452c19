// Package filesystem provides the sandboxed directory tree behind fsgate.
// Every operation goes through an *os.Root, so names can never resolve
// outside the data directory. Writes are atomic using temp files and
// carry SHA256-based etags; content types are detected from extensions.
package filesystem

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/sagarc03/fsgate"
)

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// List reads the directory at name. Subdirectories are expanded while
// depth > 1; FullPath of each entry is fullPath joined with the entry name.
func (s *Store) List(ctx context.Context, name, fullPath string, depth int) ([]fsgate.DirectoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.root.Stat(name)
	if err != nil {
		if isNotExist(err) {
			return nil, fsgate.ErrNotFound
		}
		return nil, fmt.Errorf("could not stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fsgate.ErrNotADirectory
	}

	entries, err := s.readDir(ctx, name, fullPath, depth)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}
	return entries, nil
}

func (s *Store) readDir(ctx context.Context, name, fullPath string, depth int) ([]fsgate.DirectoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), name)
	if err != nil {
		return nil, err
	}

	entries := make([]fsgate.DirectoryEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if isTempName(entry.Name()) {
			continue
		}

		e := fsgate.DirectoryEntry{
			Name:     entry.Name(),
			Type:     fsgate.EntryFile,
			FullPath: path.Join(fullPath, entry.Name()),
		}

		if entry.IsDir() {
			e.Type = fsgate.EntryDirectory
			if depth > 1 {
				children, err := s.readDir(ctx, path.Join(name, entry.Name()), e.FullPath, depth-1)
				if err != nil {
					return nil, err
				}
				e.Contents = children
			}
		}

		entries = append(entries, e)
	}

	return entries, nil
}

// DirExists reports whether name is a directory.
func (s *Store) DirExists(ctx context.Context, name string) (bool, error) {
	info, err := s.stat(ctx, name)
	if err != nil || info == nil {
		return false, err
	}
	return info.IsDir(), nil
}

// FileExists reports whether name is a regular file.
func (s *Store) FileExists(ctx context.Context, name string) (bool, error) {
	info, err := s.stat(ctx, name)
	if err != nil || info == nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// stat returns nil info and nil error when name does not exist.
func (s *Store) stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.root.Stat(name)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not stat %s: %w", name, err)
	}
	return info, nil
}

// CreateDir creates name with any missing parents.
func (s *Store) CreateDir(ctx context.Context, name string) error {
	info, err := s.stat(ctx, name)
	if err != nil {
		return err
	}
	if info != nil {
		if info.IsDir() {
			return fsgate.ErrAlreadyExists
		}
		return fsgate.ErrNotADirectory
	}

	if err := s.root.MkdirAll(name, 0o755); err != nil {
		return mkdirError(err)
	}
	return nil
}

// Read returns a handle for the regular file at name. Returns
// fsgate.ErrNotFound for missing paths and for anything that is not a
// regular file.
func (s *Store) Read(ctx context.Context, name string) (fsgate.FileHandle, error) {
	info, err := s.stat(ctx, name)
	if err != nil {
		return fsgate.FileHandle{}, err
	}
	if info == nil || !info.Mode().IsRegular() {
		return fsgate.FileHandle{}, fsgate.ErrNotFound
	}

	open := func() (io.ReadSeekCloser, error) {
		f, err := s.root.Open(name)
		if err != nil {
			if isNotExist(err) {
				return nil, fsgate.ErrNotFound
			}
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		return f, nil
	}

	return fsgate.NewFileHandle(name, info.Size(), info.ModTime(), detectContentType(name), open), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to name using a temp file and rename.
// Empty content is rejected before anything is created. It creates
// intermediate directories as needed and returns a WriteResult containing
// the number of bytes written and SHA256-based etag. The operation
// respects context cancellation.
func (s *Store) Write(ctx context.Context, name string, content io.Reader, overwrite bool) (fsgate.WriteResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fsgate.WriteResult{}, ctxErr
	}

	br := bufio.NewReader(content)
	if _, peekErr := br.Peek(1); peekErr != nil {
		if errors.Is(peekErr, io.EOF) {
			return fsgate.WriteResult{}, fsgate.ErrEmptyContent
		}
		return fsgate.WriteResult{}, fmt.Errorf("could not read content: %w", peekErr)
	}

	info, err := s.stat(ctx, name)
	if err != nil {
		return fsgate.WriteResult{}, err
	}
	if info != nil {
		if info.IsDir() {
			return fsgate.WriteResult{}, fsgate.ErrNotAFile
		}
		if !overwrite {
			return fsgate.WriteResult{}, fsgate.ErrAlreadyExists
		}
	}

	destDir := path.Dir(name)
	if destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return fsgate.WriteResult{}, mkdirError(err)
		}
	}

	tmpFile := path.Join(destDir, tmpFileName())
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return fsgate.WriteResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	closed := false
	success := false
	defer func() {
		if !closed {
			if closeErr := t.Close(); closeErr != nil {
				slog.Warn("failed to close tmp file", "err", closeErr)
			}
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil && !isNotExist(rmErr) {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	fileSizeBytes, err := io.Copy(w, &ctxReader{ctx: ctx, r: br})
	if err != nil {
		return fsgate.WriteResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return fsgate.WriteResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	closed = true
	if err := t.Close(); err != nil {
		return fsgate.WriteResult{}, fmt.Errorf("could not close written file: %w", err)
	}

	if renameErr := s.root.Rename(tmpFile, name); renameErr != nil {
		return fsgate.WriteResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	etag := hex.EncodeToString(h.Sum(nil))
	success = true

	return fsgate.WriteResult{BytesWritten: fileSizeBytes, Etag: etag}, nil
}

// Delete removes a regular file. Returns fsgate.ErrNotFound if nothing
// exists at name and fsgate.ErrNotPermitted for directories.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := s.root.Lstat(name)
	if err != nil {
		if isNotExist(err) {
			return fsgate.ErrNotFound
		}
		return fmt.Errorf("could not stat file: %w", err)
	}
	if info.IsDir() {
		return fsgate.ErrNotPermitted
	}

	if err := s.root.Remove(name); err != nil {
		if isNotExist(err) {
			return fsgate.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// Copy streams the regular file src into dst through Write, so dst gets
// the same atomicity and parent creation as an upload.
func (s *Store) Copy(ctx context.Context, src, dst string, overwrite bool) (fsgate.WriteResult, error) {
	h, err := s.Read(ctx, src)
	if err != nil {
		if errors.Is(err, fsgate.ErrNotFound) {
			return fsgate.WriteResult{}, fsgate.ErrSourceMissing
		}
		return fsgate.WriteResult{}, err
	}

	f, err := h.Open()
	if err != nil {
		if errors.Is(err, fsgate.ErrNotFound) {
			return fsgate.WriteResult{}, fsgate.ErrSourceMissing
		}
		return fsgate.WriteResult{}, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close source file", "path", src, "err", closeErr)
		}
	}()

	res, err := s.Write(ctx, dst, f, overwrite)
	if errors.Is(err, fsgate.ErrAlreadyExists) {
		return fsgate.WriteResult{}, fsgate.ErrDestinationExists
	}
	return res, err
}

// isNotExist also treats ENOTDIR as missing: "a.txt/b" does not exist
// when a.txt is a file.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

func mkdirError(err error) error {
	if errors.Is(err, syscall.ENOTDIR) || errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %w: %w", fsgate.ErrDirectoryCreate, fsgate.ErrNotADirectory, err)
	}
	return fmt.Errorf("%w: %w", fsgate.ErrDirectoryCreate, err)
}

func detectContentType(name string) string {
	ext := filepath.Ext(name)
	contentType := mime.TypeByExtension(ext)

	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}

// tmpPrefix marks in-flight upload files. They are hidden from listings.
const tmpPrefix = ".fsgate-upload-"

func tmpFileName() string {
	return tmpPrefix + uuid.New().String()
}

func isTempName(name string) bool {
	rest, ok := strings.CutPrefix(name, tmpPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
