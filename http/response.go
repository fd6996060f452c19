package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/fsgate"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FileSizeResponse is the body of GET /file/size.
type FileSizeResponse struct {
	Size int64 `json:"size"`
}

// UploadResponse is the body of a successful POST /file.
type UploadResponse struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Etag      string `json:"etag"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Checked in order; ErrNotADirectory must come before ErrDirectoryCreate so
// a file sitting where a parent directory belongs is reported as a client
// error.
var errorMappings = []errorMapping{
	{fsgate.ErrInvalidPath, http.StatusBadRequest, "invalid_path", "Invalid path"},
	{fsgate.ErrEmptyContent, http.StatusBadRequest, "empty_content", "The file is empty"},
	{fsgate.ErrNotAFile, http.StatusBadRequest, "not_a_file", "Path is a directory"},
	{fsgate.ErrNotADirectory, http.StatusBadRequest, "not_a_directory", "Path is not a directory"},
	{fsgate.ErrNotFound, http.StatusNotFound, "not_found", "Path not found"},
	{fsgate.ErrNotPermitted, http.StatusNotFound, "not_permitted", "Operation not permitted"},
	{fsgate.ErrSourceMissing, http.StatusNotFound, "source_missing", "Source file does not exist or is a directory"},
	{fsgate.ErrDestinationExists, http.StatusConflict, "destination_exists", "File exists and overwrite is not set"},
	{fsgate.ErrAlreadyExists, http.StatusConflict, "already_exists", "The file already exists"},
	{ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/octet-stream or multipart/form-data"},
	{ErrMalformedPayload, http.StatusUnprocessableEntity, "malformed_payload", "Could not read a file part from the request"},
	{ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Invalid or missing API key"},
	{fsgate.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Invalid or missing API key"},
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		slog.Warn("request body too large", "limit", maxBytesErr.Limit)
		WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			slog.Debug("request rejected", "status", m.status, "error", err)
			WriteError(w, m.status, m.code, m.message)
			return
		}
	}

	if errors.Is(err, context.Canceled) {
		slog.Info("request canceled", "error", err)
	} else {
		slog.Error("request error", "error", err)
	}

	// Default internal error
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
