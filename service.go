package fsgate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// DefaultMaxDepth caps listing recursion when ServiceConfig.MaxDepth is unset.
const DefaultMaxDepth = 32

// FileStorage defines the interface for operations on the sandboxed tree.
//
// Every name passed to a FileStorage is the Name of a PathResult: cleaned,
// slash-separated and relative to the data root ("." for the root itself).
// Implementations must never resolve a name outside the data root.
type FileStorage interface {
	// List reads the directory at name.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - name: Directory to read
	//   - fullPath: Client-facing path used to build each entry's FullPath
	//   - depth: Number of levels to read, at least 1
	//
	// Returns:
	//   - []DirectoryEntry: Entries of the directory; subdirectories carry
	//     Contents when depth > 1
	//   - error: ErrNotFound if name does not exist, ErrNotADirectory if it
	//     is not a directory, or other I/O errors
	List(ctx context.Context, name, fullPath string, depth int) ([]DirectoryEntry, error)

	// DirExists reports whether name is an existing directory.
	DirExists(ctx context.Context, name string) (bool, error)

	// FileExists reports whether name is an existing regular file.
	FileExists(ctx context.Context, name string) (bool, error)

	// CreateDir creates name and any missing parents.
	//
	// Returns ErrAlreadyExists if name is already a directory and
	// ErrNotADirectory if name or one of its parents is a file.
	CreateDir(ctx context.Context, name string) error

	// Read returns a handle for the regular file at name.
	//
	// Returns ErrNotFound when name is missing or is not a regular file.
	Read(ctx context.Context, name string) (FileHandle, error)

	// Write stores content at name.
	//
	// Parameters:
	//   - ctx: Context for cancellation, checked while copying
	//   - name: Destination file
	//   - content: Data to store; must yield at least one byte
	//   - overwrite: Replace an existing file instead of failing
	//
	// Returns:
	//   - WriteResult: Bytes written and a SHA-256 etag
	//   - error: ErrEmptyContent, ErrNotAFile, ErrAlreadyExists,
	//     ErrDirectoryCreate, or other I/O errors
	//
	// Implementations should:
	//   - Reject empty content before touching the filesystem
	//   - Create missing parent directories
	//   - Write atomically so readers never observe a partial file
	Write(ctx context.Context, name string, content io.Reader, overwrite bool) (WriteResult, error)

	// Delete removes the regular file at name.
	//
	// Returns ErrNotFound if name is missing and ErrNotPermitted if it is a
	// directory.
	Delete(ctx context.Context, name string) error

	// Copy duplicates the regular file src to dst.
	//
	// Returns ErrSourceMissing if src is missing or not a regular file and
	// ErrDestinationExists if dst exists and overwrite is false.
	Copy(ctx context.Context, src, dst string, overwrite bool) (WriteResult, error)
}

// Journal records mutating operations. Implementations live in the
// database package.
type Journal interface {
	// Record stores e and returns it with ID and CreatedAt filled in.
	Record(ctx context.Context, e Event) (Event, error)

	// List returns a page of events ordered by creation time.
	List(ctx context.Context, q EventQuery) (EventPage, error)

	// Prune deletes events created before the given time and returns how
	// many were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type Service struct {
	storage        FileStorage
	journal        Journal
	dataDir        string
	maxDepth       int
	journalTimeout time.Duration
}

// ServiceConfig holds configuration options for Service.
type ServiceConfig struct {
	DataDir        string
	MaxDepth       int           // Upper bound for listing depth (default: 32)
	JournalTimeout time.Duration // Timeout for recording a journal event (default: 5s)
}

// NewService builds a Service over storage. journal may be nil, in which
// case nothing is recorded.
func NewService(storage FileStorage, journal Journal, cfg ServiceConfig) (*Service, error) {
	if storage == nil {
		return nil, errors.New("new service: storage is required")
	}
	if cfg.DataDir == "" {
		return nil, errors.New("new service: data dir is required")
	}

	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	journalTimeout := cfg.JournalTimeout
	if journalTimeout <= 0 {
		journalTimeout = 5 * time.Second
	}

	return &Service{
		storage:        storage,
		journal:        journal,
		dataDir:        cfg.DataDir,
		maxDepth:       maxDepth,
		journalTimeout: journalTimeout,
	}, nil
}

// List returns the contents of the directory at path.
//
// Depth defaults to 1 and is clamped to [1, MaxDepth]. Without
// IncludeDirs the tree is flattened to its files only.
func (s *Service) List(ctx context.Context, path string, opts ListOptions) ([]DirectoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	p, err := ValidatePath(s.dataDir, path)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	depth := min(max(opts.Depth, 1), s.maxDepth)

	entries, err := s.storage.List(ctx, p.Name, p.RelativePath, depth)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	if !opts.IncludeDirs {
		return Flatten(entries, true), nil
	}
	if entries == nil {
		entries = []DirectoryEntry{}
	}

	return entries, nil
}

func (s *Service) DirExists(ctx context.Context, path string) (bool, error) {
	p, err := ValidatePath(s.dataDir, path)
	if err != nil {
		return false, fmt.Errorf("dir exists: %w", err)
	}

	ok, err := s.storage.DirExists(ctx, p.Name)
	if err != nil {
		return false, fmt.Errorf("dir exists %s: %w", path, err)
	}
	return ok, nil
}

func (s *Service) FileExists(ctx context.Context, path string) (bool, error) {
	p, err := ValidatePath(s.dataDir, path)
	if err != nil {
		return false, fmt.Errorf("file exists: %w", err)
	}

	ok, err := s.storage.FileExists(ctx, p.Name)
	if err != nil {
		return false, fmt.Errorf("file exists %s: %w", path, err)
	}
	return ok, nil
}

func (s *Service) CreateDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	p, err := ValidatePath(s.dataDir, path)
	if err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	if err := s.storage.CreateDir(ctx, p.Name); err != nil {
		return fmt.Errorf("create dir %s: %w", path, err)
	}

	s.record(ctx, Event{Operation: OpMkdir, Path: p.Name})
	return nil
}

// Read returns a handle for the file at path. The handle reopens the file
// for every Open call.
func (s *Service) Read(ctx context.Context, path string) (FileHandle, error) {
	if err := ctx.Err(); err != nil {
		return FileHandle{}, fmt.Errorf("read: %w", err)
	}

	p, err := ValidatePath(s.dataDir, path)
	if err != nil {
		return FileHandle{}, fmt.Errorf("read: %w", err)
	}

	h, err := s.storage.Read(ctx, p.Name)
	if err != nil {
		return FileHandle{}, fmt.Errorf("read %s: %w", path, err)
	}
	return h, nil
}

func (s *Service) FileSize(ctx context.Context, path string) (int64, error) {
	h, err := s.Read(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("file size: %w", err)
	}
	return h.Size, nil
}

// Write stores content at path, creating parent directories as needed.
// An existing file is only replaced when overwrite is set.
func (s *Service) Write(ctx context.Context, path string, content io.Reader, overwrite bool) (WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return WriteResult{}, fmt.Errorf("write: %w", err)
	}

	p, err := ValidatePath(s.dataDir, path)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write: %w", err)
	}

	res, err := s.storage.Write(ctx, p.Name, content, overwrite)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write %s: %w", path, err)
	}

	s.record(ctx, Event{Operation: OpWrite, Path: p.Name, SizeBytes: res.BytesWritten})
	return res, nil
}

func (s *Service) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	p, err := ValidatePath(s.dataDir, path)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if err := s.storage.Delete(ctx, p.Name); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}

	s.record(ctx, Event{Operation: OpDelete, Path: p.Name})
	return nil
}

// Copy duplicates the file at src to dst. Both paths are validated before
// the filesystem is touched.
func (s *Service) Copy(ctx context.Context, src, dst string, overwrite bool) (WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return WriteResult{}, fmt.Errorf("copy: %w", err)
	}

	from, err := ValidatePath(s.dataDir, src)
	if err != nil {
		return WriteResult{}, fmt.Errorf("copy source: %w", err)
	}
	to, err := ValidatePath(s.dataDir, dst)
	if err != nil {
		return WriteResult{}, fmt.Errorf("copy destination: %w", err)
	}

	res, err := s.storage.Copy(ctx, from.Name, to.Name, overwrite)
	if err != nil {
		return WriteResult{}, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}

	s.record(ctx, Event{Operation: OpCopy, Path: from.Name, Destination: to.Name, SizeBytes: res.BytesWritten})
	return res, nil
}

// record appends e to the journal. Failures are logged and never reach the
// caller since the filesystem change already happened.
func (s *Service) record(ctx context.Context, e Event) {
	if s.journal == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.journalTimeout)
	defer cancel()

	if _, err := s.journal.Record(ctx, e); err != nil {
		slog.Warn("journal record failed", "operation", e.Operation, "path", e.Path, "error", err)
	}
}
