// Package http provides the HTTP API of the fsgate gateway.
//
// Every route takes its arguments from the query string and sits behind a
// shared API key. The key is read from the "apikey" header, or from the
// "apikey" query parameter when the header is absent.
//
// # Routes
//
//	GET    /list         path, dirs, depth   directory listing (JSON)
//	GET    /dir/exists   path                204 or 404
//	POST   /dir          path                create directory and parents
//	GET    /file/exists  path                204 or 404
//	GET    /file         path                file bytes, Range supported
//	GET    /file/size    path                {"size": n}
//	POST   /file         path, overwrite     upload, raw or multipart "file" field
//	DELETE /file         path                remove a regular file
//	GET    /file/copy    source, destination, overwrite
//	POST   /file/copy    same as GET
//
// The depth parameter of /list must be an integer. Values below 1 read one
// level and values above the service limit (ServiceConfig.MaxDepth, 32 by
// default) are clamped to it rather than rejected. A directory expanded by
// the listing always carries "contents", an empty one as []; directories
// beyond the requested depth omit the field.
//
// Errors are JSON objects with an "error" code and a human readable
// "message". Status codes are derived from the sentinel errors of package
// fsgate in HandleError.
//
// # Usage
//
//	store := keybackend.NewStaticStore(apiKey)
//
//	handlerCfg := http.HandlerConfig{
//	    Verifier:      store, // nil for public access
//	    MaxUploadSize: 100 << 20,
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":5708", handler.Router())
//
// The service parameter must implement the Service interface; *fsgate.Service
// does.
//
// # Middleware
//
// Router installs chi's RequestID, RealIP and Recoverer, the optional
// access log and CORS handlers, and AuthMiddleware:
//
//	router.Use(http.AuthMiddleware(store)) // authenticated
//	router.Use(http.AuthMiddleware(nil))   // public access
//
// Path validation is handled by individual handlers and the service layer.
package http
