package fsgate

import "errors"

var (
	// ErrInvalidPath is returned when a path is empty or contains a parent traversal segment
	ErrInvalidPath = errors.New("invalid path")
	// ErrNotFound is returned when a file or directory does not exist
	ErrNotFound = errors.New("not found")
	// ErrNotADirectory is returned when a directory operation targets something else
	ErrNotADirectory = errors.New("not a directory")
	// ErrNotAFile is returned when a file operation targets a directory
	ErrNotAFile = errors.New("not a file")
	// ErrAlreadyExists is returned when the target exists and overwrite was not requested
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyContent is returned when an upload carries zero bytes
	ErrEmptyContent = errors.New("empty content")
	// ErrDirectoryCreate is returned when a parent directory could not be created
	ErrDirectoryCreate = errors.New("could not create directory")
	// ErrNotPermitted is returned when deleting something that is not a regular file
	ErrNotPermitted = errors.New("operation not permitted")
	// ErrSourceMissing is returned when a copy source is missing or not a regular file
	ErrSourceMissing = errors.New("source file does not exist")
	// ErrDestinationExists is returned when a copy destination exists and overwrite is not set
	ErrDestinationExists = errors.New("destination exists")
	// ErrUnauthorized is returned when the request key does not match the configured key
	ErrUnauthorized = errors.New("unauthorized")
)
