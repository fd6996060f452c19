package clientcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// APIKeyHeader is the header carrying the shared API key.
	APIKeyHeader = "apikey"
)

// Client performs operations against an fsgate server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	// Apply defaults
	cfg = cfg.WithDefaults()

	c := &Client{
		config: &Config{
			Endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
			APIKey:   cfg.APIKey,
		},
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// newRequest builds a request for route with the API key attached.
func (c *Client) newRequest(ctx context.Context, method, route string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.config.Endpoint + route
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.config.APIKey != "" {
		req.Header.Set(APIKeyHeader, c.config.APIKey)
	}
	return req, nil
}

// do executes req and returns an *APIError for any status other than want.
// On success the caller owns the response body.
func (c *Client) do(req *http.Request, want int) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, parseServerError(resp.StatusCode, body)
	}

	return resp, nil
}

// exec runs a request whose success response carries no body of interest.
func (c *Client) exec(ctx context.Context, method, route string, query url.Values, want int) error {
	req, err := c.newRequest(ctx, method, route, query, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req, want)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// getJSON runs a GET and decodes the 200 response into v.
func (c *Client) getJSON(ctx context.Context, route string, query url.Values, v any) error {
	req, err := c.newRequest(ctx, http.MethodGet, route, query, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req, http.StatusOK)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// List lists the directory at opts.Path.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	path := opts.Path
	if path == "" {
		path = "/"
	}

	query := url.Values{}
	query.Set("path", path)
	if opts.IncludeDirs {
		query.Set("dirs", "true")
	}
	if opts.Depth > 0 {
		query.Set("depth", strconv.Itoa(opts.Depth))
	}

	var entries []Entry
	if err := c.getJSON(ctx, "/list", query, &entries); err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	return &ListResult{Path: path, Entries: entries}, nil
}

// DirExists reports whether path is a directory on the server.
func (c *Client) DirExists(ctx context.Context, path string) (bool, error) {
	return c.exists(ctx, "/dir/exists", path)
}

// FileExists reports whether path is a file on the server.
func (c *Client) FileExists(ctx context.Context, path string) (bool, error) {
	return c.exists(ctx, "/file/exists", path)
}

func (c *Client) exists(ctx context.Context, route, path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("exists: %w", ErrEmptyPath)
	}

	err := c.exec(ctx, http.MethodGet, route, url.Values{"path": {path}}, http.StatusNoContent)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("exists %s: %w", path, err)
}

// CreateDir creates a directory and any missing parents.
func (c *Client) CreateDir(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("create dir: %w", ErrEmptyPath)
	}

	if err := c.exec(ctx, http.MethodPost, "/dir", url.Values{"path": {path}}, http.StatusNoContent); err != nil {
		return fmt.Errorf("create dir %s: %w", path, err)
	}
	return nil
}

// Size returns the size in bytes of the file at path.
func (c *Client) Size(ctx context.Context, path string) (*SizeResult, error) {
	if path == "" {
		return nil, fmt.Errorf("size: %w", ErrEmptyPath)
	}

	var resp struct {
		Size int64 `json:"size"`
	}
	if err := c.getJSON(ctx, "/file/size", url.Values{"path": {path}}, &resp); err != nil {
		return nil, fmt.Errorf("size %s: %w", path, err)
	}

	return &SizeResult{Path: path, Size: resp.Size}, nil
}

// Copy duplicates a file on the server.
func (c *Client) Copy(ctx context.Context, opts CopyOptions) error {
	if opts.Source == "" || opts.Destination == "" {
		return fmt.Errorf("copy: %w", ErrEmptyPath)
	}

	query := url.Values{}
	query.Set("source", opts.Source)
	query.Set("destination", opts.Destination)
	if opts.Overwrite {
		query.Set("overwrite", "true")
	}

	if err := c.exec(ctx, http.MethodPost, "/file/copy", query, http.StatusNoContent); err != nil {
		return fmt.Errorf("copy %s to %s: %w", opts.Source, opts.Destination, err)
	}
	return nil
}

// Upload uploads file(s) to the server.
// For recursive uploads, walks directory and preserves relative paths.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if opts.Recursive {
		return c.uploadRecursive(ctx, opts)
	}
	result, err := c.uploadSingle(ctx, opts.LocalPath, opts.RemotePath, opts.Overwrite)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

// uploadRecursive walks a directory and uploads all files.
func (c *Client) uploadRecursive(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		// Not a directory, just upload single file
		result, uploadErr := c.uploadSingle(ctx, opts.LocalPath, opts.RemotePath, opts.Overwrite)
		if uploadErr != nil {
			return nil, uploadErr
		}
		return []UploadResult{result}, nil
	}

	var results []UploadResult
	baseDir := opts.LocalPath
	remotePrefix := strings.TrimSuffix(opts.RemotePath, "/")

	walkErr := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}

		// Check context cancellation
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// Skip directories
		if d.IsDir() {
			return nil
		}

		// Calculate relative path
		relPath, relErr := filepath.Rel(baseDir, path)
		if relErr != nil {
			results = append(results, UploadResult{
				LocalPath: path,
				Err:       fmt.Errorf("calculate relative path: %w", relErr),
			})
			return nil
		}

		// Convert to forward slashes for remote path
		remotePath := filepath.ToSlash(relPath)
		if remotePrefix != "" {
			remotePath = remotePrefix + "/" + remotePath
		}

		result, uploadErr := c.uploadSingle(ctx, path, remotePath, opts.Overwrite)
		if uploadErr != nil {
			result = UploadResult{
				LocalPath:  path,
				RemotePath: remotePath,
				Err:        uploadErr,
			}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

// uploadSingle streams a single file to the server as a raw body.
func (c *Client) uploadSingle(ctx context.Context, localPath, remotePath string, overwrite bool) (UploadResult, error) {
	// Open the file
	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Get file info for size
	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat file: %w", err)
	}

	if remotePath == "" {
		remotePath = NormalizeLocalToRemotePath(localPath)
	}

	query := url.Values{}
	query.Set("path", remotePath)
	if overwrite {
		query.Set("overwrite", "true")
	}

	// Create request with file as body (streaming, no memory copy)
	req, err := c.newRequest(ctx, http.MethodPost, "/file", query, file)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = info.Size()

	resp, err := c.do(req, http.StatusCreated)
	if err != nil {
		return UploadResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var uploaded serverUpload
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return UploadResult{}, fmt.Errorf("parse response: %w", err)
	}

	return UploadResult{
		LocalPath:  localPath,
		RemotePath: uploaded.Path,
		ETag:       uploaded.Etag,
		Size:       uploaded.SizeBytes,
	}, nil
}

// Download downloads a file from the server.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.RemotePath == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyPath)
	}
	remotePath := opts.RemotePath

	req, err := c.newRequest(ctx, http.MethodGet, "/file", url.Values{"path": {remotePath}}, nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.do(req, http.StatusOK)
	if err != nil {
		return nil, nil, err
	}

	result := &DownloadResult{
		RemotePath:  remotePath,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	// If stdout requested, return the body for the caller to handle
	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	// Determine local path
	localPath := opts.LocalPath
	if localPath == "" {
		// Derive from remote path
		localPath = filepath.Base(filepath.FromSlash(remotePath))
	}
	result.LocalPath = localPath

	// Create parent directories if needed
	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	// Create the file
	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	// Copy content to file
	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// Delete deletes one or more files from the server.
// Continues on error, collecting results for all paths.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}

	results := make([]DeleteResult, 0, len(opts.Paths))

	for _, path := range opts.Paths {
		// Check context cancellation
		if err := ctx.Err(); err != nil {
			return results, err
		}

		err := c.exec(ctx, http.MethodDelete, "/file", url.Values{"path": {path}}, http.StatusNoContent)
		results = append(results, DeleteResult{
			Path:    path,
			Deleted: err == nil,
			Err:     err,
		})
	}

	return results, nil
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// HasUploadErrors returns true if any upload failed.
func HasUploadErrors(results []UploadResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// NormalizeLocalToRemotePath converts a local path to a clean remote path.
// It handles:
//   - Leading "./" is stripped (./foo/bar.txt -> foo/bar.txt)
//   - Leading "/" is stripped (/abs/path/file.txt -> abs/path/file.txt)
//   - Parent traversal is resolved (../sibling/file.txt -> sibling/file.txt)
//   - Multiple slashes are collapsed
//   - Backslashes are converted to forward slashes (Windows)
func NormalizeLocalToRemotePath(localPath string) string {
	// Convert to forward slashes (Windows compatibility)
	path := filepath.ToSlash(localPath)

	// Clean the path (resolves . and .. segments)
	path = filepath.Clean(path)

	// Convert back to forward slashes after Clean (Clean uses OS separator)
	path = filepath.ToSlash(path)

	// Strip leading "./"
	path = strings.TrimPrefix(path, "./")

	// Strip leading "/" (absolute paths)
	path = strings.TrimPrefix(path, "/")

	// Keep stripping leading "../" segments
	for strings.HasPrefix(path, "../") {
		path = strings.TrimPrefix(path, "../")
	}

	// Handle edge case where path is just ".." or "."
	if path == ".." || path == "." {
		return ""
	}

	return path
}

// parseServerError builds an *APIError, using the JSON error body when the
// server sent one.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	var se serverError
	if json.Unmarshal(body, &se) == nil {
		apiErr.Code = se.Error
		apiErr.Message = se.Message
	}

	return apiErr
}
