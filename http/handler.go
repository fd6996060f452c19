package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sagarc03/fsgate"
)

type Service interface {
	List(ctx context.Context, path string, opts fsgate.ListOptions) ([]fsgate.DirectoryEntry, error)
	DirExists(ctx context.Context, path string) (bool, error)
	CreateDir(ctx context.Context, path string) error
	FileExists(ctx context.Context, path string) (bool, error)
	Read(ctx context.Context, path string) (fsgate.FileHandle, error)
	FileSize(ctx context.Context, path string) (int64, error)
	Write(ctx context.Context, path string, content io.Reader, overwrite bool) (fsgate.WriteResult, error)
	Delete(ctx context.Context, path string) error
	Copy(ctx context.Context, src, dst string, overwrite bool) (fsgate.WriteResult, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Verifier      KeyVerifier
	CORS          CORSConfig
	MaxUploadSize int64 // 0 means unlimited
	AccessLog     bool
}

// Handler provides HTTP handlers for directory and file operations.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with every route behind the API key
// guard. CORS preflight is answered before the guard runs, and unknown
// routes are guarded too.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if h.config.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Use(AuthMiddleware(h.config.Verifier))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	r.Get("/list", h.handleList)

	r.Route("/dir", func(r chi.Router) {
		r.Post("/", h.handleCreateDir)
		r.Get("/exists", h.handleDirExists)
	})

	r.Route("/file", func(r chi.Router) {
		r.Get("/", h.handleGetFile)
		r.Post("/", h.handleUpload)
		r.Delete("/", h.handleDelete)
		r.Get("/exists", h.handleFileExists)
		r.Get("/size", h.handleFileSize)
		r.Get("/copy", h.handleCopy)
		r.Post("/copy", h.handleCopy)
	})

	return r
}

var errInvalidBool = errors.New("invalid boolean")

// queryBool treats a missing parameter as false.
func queryBool(q url.Values, key string) (bool, error) {
	v := q.Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errInvalidBool
	}
	return b, nil
}

// validPathParam writes a 400 and returns false when the parameter is not
// a usable path.
func validPathParam(w http.ResponseWriter, q url.Values, key, message string) (string, bool) {
	p := q.Get(key)
	if !fsgate.IsValidPath(p) {
		WriteError(w, http.StatusBadRequest, "invalid_path", message)
		return "", false
	}
	return p, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	path, ok := validPathParam(w, q, "path", "You must provide a valid path to a directory")
	if !ok {
		return
	}

	includeDirs, err := queryBool(q, "dirs")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_query", `dirs must be one of "true" and "false"`)
		return
	}

	depth := 1
	if depthStr := q.Get("depth"); depthStr != "" {
		parsed, err := strconv.Atoi(depthStr)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_query", "depth must be an integer")
			return
		}
		depth = parsed
	}

	entries, err := h.service.List(r.Context(), path, fsgate.ListOptions{Depth: depth, IncludeDirs: includeDirs})
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleDirExists(w http.ResponseWriter, r *http.Request) {
	path, ok := validPathParam(w, r.URL.Query(), "path", "You must provide a valid path to a directory")
	if !ok {
		return
	}

	exists, err := h.service.DirExists(r.Context(), path)
	if err != nil {
		HandleError(w, err)
		return
	}
	if !exists {
		WriteError(w, http.StatusNotFound, "not_found", "Directory does not exist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateDir(w http.ResponseWriter, r *http.Request) {
	path, ok := validPathParam(w, r.URL.Query(), "path", "You must provide a valid path to a directory")
	if !ok {
		return
	}

	if err := h.service.CreateDir(r.Context(), path); err != nil {
		if errors.Is(err, fsgate.ErrAlreadyExists) {
			WriteError(w, http.StatusConflict, "already_exists", "The directory already exists")
			return
		}
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleFileExists(w http.ResponseWriter, r *http.Request) {
	path, ok := validPathParam(w, r.URL.Query(), "path", "You must provide a valid path to a file")
	if !ok {
		return
	}

	exists, err := h.service.FileExists(r.Context(), path)
	if err != nil {
		HandleError(w, err)
		return
	}
	if !exists {
		WriteError(w, http.StatusNotFound, "not_found", "File does not exist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetFile(w http.ResponseWriter, r *http.Request) {
	path, ok := validPathParam(w, r.URL.Query(), "path", "You must provide a valid path to a file")
	if !ok {
		return
	}

	file, err := h.service.Read(r.Context(), path)
	if err != nil {
		if errors.Is(err, fsgate.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "not_found", "File does not exist")
			return
		}
		HandleError(w, err)
		return
	}

	content, err := file.Open()
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	w.Header().Set("Content-Type", file.ContentType)
	http.ServeContent(w, r, file.Path, file.ModTime, content)
}

func (h *Handler) handleFileSize(w http.ResponseWriter, r *http.Request) {
	path, ok := validPathParam(w, r.URL.Query(), "path", "You must provide a valid path to a file")
	if !ok {
		return
	}

	size, err := h.service.FileSize(r.Context(), path)
	if err != nil {
		if errors.Is(err, fsgate.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "not_found", "File does not exist")
			return
		}
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, FileSizeResponse{Size: size})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	path, ok := validPathParam(w, q, "path", "You must provide a valid path to a file")
	if !ok {
		return
	}

	overwrite, err := queryBool(q, "overwrite")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_query", `Overwrite must be one of "true" and "false"`)
		return
	}

	if h.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	content, err := uploadContent(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	result, err := h.service.Write(r.Context(), path, content, overwrite)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, UploadResponse{
		Path:      path,
		SizeBytes: result.BytesWritten,
		Etag:      result.Etag,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	path, ok := validPathParam(w, r.URL.Query(), "path", "You must provide a valid path to a file")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), path); err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCopy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	overwrite, err := queryBool(q, "overwrite")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_query", `Overwrite must be one of "true" and "false"`)
		return
	}

	source, ok := validPathParam(w, q, "source", "You must provide a valid source path")
	if !ok {
		return
	}
	destination, ok := validPathParam(w, q, "destination", "You must provide a valid destination path")
	if !ok {
		return
	}

	if _, err := h.service.Copy(r.Context(), source, destination, overwrite); err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
