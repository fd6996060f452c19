package http

import (
	"net/http"
)

const (
	// APIKeyHeader is checked first.
	APIKeyHeader = "apikey"
	// APIKeyParam is used only when the header is absent.
	APIKeyParam = "apikey"
)

// KeyVerifier checks the key presented by a request.
type KeyVerifier interface {
	Verify(key string) error
}

// AuthMiddleware creates middleware that rejects requests whose API key
// does not match. Pass nil for verifier to disable authentication (public
// access).
func AuthMiddleware(verifier KeyVerifier) func(http.Handler) http.Handler {
	if verifier == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := verifier.Verify(apiKeyFromRequest(r)); err != nil {
				HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// apiKeyFromRequest prefers the header, even when it is present but empty.
func apiKeyFromRequest(r *http.Request) string {
	if values := r.Header.Values(APIKeyHeader); len(values) > 0 {
		return values[0]
	}
	return r.URL.Query().Get(APIKeyParam)
}
