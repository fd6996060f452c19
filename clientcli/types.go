package clientcli

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath  string
	RemotePath string
	Overwrite  bool
	Recursive  bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath  string `json:"local_path"`
	RemotePath string `json:"remote_path"`
	ETag       string `json:"etag"`
	Size       int64  `json:"size_bytes"`
	Err        error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	RemotePath string
	LocalPath  string // empty = derive from remote, "-" = stdout
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	RemotePath  string `json:"remote_path"`
	LocalPath   string `json:"local_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Paths []string
}

// DeleteResult represents the result of deleting a single file.
type DeleteResult struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// ListOptions configures a list operation.
type ListOptions struct {
	Path        string // defaults to the data root
	Depth       int    // 0 lets the server pick
	IncludeDirs bool
}

// CopyOptions configures a copy operation.
type CopyOptions struct {
	Source      string
	Destination string
	Overwrite   bool
}

// Entry is one node of a directory listing.
type Entry struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	FullPath string  `json:"fullPath"`
	Contents []Entry `json:"contents,omitzero"`
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Type == "dir"
}

// ListResult contains the entries returned by the server.
type ListResult struct {
	Path    string  `json:"path"`
	Entries []Entry `json:"entries"`
}

// Count returns the number of entries including nested ones.
func (r *ListResult) Count() int {
	var count func([]Entry) int
	count = func(entries []Entry) int {
		n := len(entries)
		for i := range entries {
			n += count(entries[i].Contents)
		}
		return n
	}
	return count(r.Entries)
}

// SizeResult is the size of a remote file.
type SizeResult struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// ExistsResult reports whether a remote path exists.
type ExistsResult struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Exists bool   `json:"exists"`
}

// serverUpload mirrors the JSON response from the server for uploads.
type serverUpload struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Etag      string `json:"etag"`
}

// serverError mirrors the JSON error body from the server.
type serverError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
