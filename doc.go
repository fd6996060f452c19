// Package fsgate exposes a directory tree on local disk over a small HTTP
// API guarded by a shared API key.
//
// The root package holds the domain: path validation, listing helpers, the
// sentinel errors, and Service, which ties a FileStorage to an optional
// Journal of mutating operations.
//
// # Key Components
//
//   - Service: Validates client paths and delegates to storage
//   - FileStorage: Interface for the sandboxed tree (see the filesystem package)
//   - Journal: Interface for the operation log (see the database package)
//   - ValidatePath: Rejects empty paths and ".." segments
//   - Flatten, CompareByPath, CompareByType: Listing helpers
//
// # Paths
//
// Clients send paths such as "/", "dir1/file3" or "/a/b.txt". A path is
// accepted when it is non-empty and has no ".." segment. Leading slashes
// are relative to the data root; nothing outside the root is reachable.
//
// # Example Usage
//
//	root, err := os.OpenRoot("/srv/data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	storage := filesystem.NewFileStorage(root)
//
//	service, err := fsgate.NewService(storage, nil, fsgate.ServiceConfig{DataDir: "/srv/data"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	entries, err := service.List(ctx, "/", fsgate.ListOptions{Depth: 2})
//
// See the http package for the REST API and the database package for
// journal backends.
package fsgate
