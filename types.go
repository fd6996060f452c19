package fsgate

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"
)

// EntryType distinguishes files from directories in a listing.
type EntryType string

const (
	EntryFile      EntryType = "file"
	EntryDirectory EntryType = "dir"
)

// DirectoryEntry is one node of a directory listing. Contents is only set
// for directories that were expanded (depth > 1); an expanded empty
// directory has an empty, non-nil Contents and serialises as "contents": [].
type DirectoryEntry struct {
	Name     string           `json:"name"`
	Type     EntryType        `json:"type"`
	FullPath string           `json:"fullPath"`
	Contents []DirectoryEntry `json:"contents,omitzero"`
}

// IsDir reports whether the entry is a directory.
func (e DirectoryEntry) IsDir() bool {
	return e.Type == EntryDirectory
}

// PathResult is the outcome of validating a client-supplied path.
type PathResult struct {
	// RelativePath is the path as supplied by the client.
	RelativePath string
	// AbsolutePath is DataDir joined with RelativePath.
	AbsolutePath string
	// Name is the cleaned, slash-separated path relative to the data root.
	// The root itself is ".".
	Name string
}

type ListOptions struct {
	Depth       int
	IncludeDirs bool
}

type WriteResult struct {
	BytesWritten int64
	Etag         string
}

// FileHandle describes a regular file and reopens it on demand.
type FileHandle struct {
	Path        string
	Size        int64
	ModTime     time.Time
	ContentType string

	open func() (io.ReadSeekCloser, error)
}

func NewFileHandle(path string, size int64, modTime time.Time, contentType string, open func() (io.ReadSeekCloser, error)) FileHandle {
	return FileHandle{
		Path:        path,
		Size:        size,
		ModTime:     modTime,
		ContentType: contentType,
		open:        open,
	}
}

// Open returns a fresh reader over the file content. The caller closes it.
func (h FileHandle) Open() (io.ReadSeekCloser, error) {
	if h.open == nil {
		return nil, ErrNotFound
	}
	return h.open()
}

// Operation names a mutating call recorded in the journal.
type Operation string

const (
	OpWrite  Operation = "write"
	OpDelete Operation = "delete"
	OpCopy   Operation = "copy"
	OpMkdir  Operation = "mkdir"
)

func (o Operation) IsValid() bool {
	switch o {
	case OpWrite, OpDelete, OpCopy, OpMkdir:
		return true
	default:
		return false
	}
}

type Event struct {
	ID          string    `json:"id"`
	Operation   Operation `json:"operation"`
	Path        string    `json:"path"`
	Destination string    `json:"destination,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

type EventQuery struct {
	PathPrefix string
	Limit      int
	Cursor     string
}

type EventPage struct {
	Items      []Event `json:"items"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// Tables holds configurable table names for the journal.
// This allows several gateways to share one database.
type Tables struct {
	Events string `mapstructure:"events"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Events == "" {
		return errors.New("validate tables: events table name cannot be empty")
	}

	if !IsValidTableName(t.Events) {
		return fmt.Errorf("validate tables: invalid events table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Events)
	}

	return nil
}
