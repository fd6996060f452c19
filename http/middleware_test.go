package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	fsgatehttp "github.com/sagarc03/fsgate/http"
	"github.com/sagarc03/fsgate/keybackend"
	"github.com/stretchr/testify/assert"
)

const testKey = "let-me-in"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func TestAuthMiddleware_PublicAccess(t *testing.T) {
	// nil verifier = public access
	wrapped := fsgatehttp.AuthMiddleware(nil)(okHandler())

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("GET", "/list?path=/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	verifier := keybackend.NewStaticStore(testKey)
	wrapped := fsgatehttp.AuthMiddleware(verifier)(okHandler())

	tests := []struct {
		name   string
		url    string
		header []string
		status int
	}{
		{name: "header", url: "/list?path=/", header: []string{testKey}, status: http.StatusOK},
		{name: "query", url: "/list?path=/&apikey=" + testKey, status: http.StatusOK},
		{name: "missing", url: "/list?path=/", status: http.StatusUnauthorized},
		{name: "wrong header", url: "/list?path=/", header: []string{"nope"}, status: http.StatusUnauthorized},
		{name: "wrong query", url: "/list?path=/&apikey=nope", status: http.StatusUnauthorized},
		{name: "header wins over query", url: "/list?path=/&apikey=" + testKey, header: []string{"nope"}, status: http.StatusUnauthorized},
		{name: "empty header still wins", url: "/list?path=/&apikey=" + testKey, header: []string{""}, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			for _, h := range tt.header {
				req.Header.Add(fsgatehttp.APIKeyHeader, h)
			}
			rec := httptest.NewRecorder()

			wrapped.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), "unauthorized")
			}
		})
	}
}

func TestRouter_GuardsEveryRoute(t *testing.T) {
	router, service := newRouter(t, &fsgatehttp.HandlerConfig{Verifier: keybackend.NewStaticStore(testKey)})

	for _, target := range []struct{ method, url string }{
		{"GET", "/list?path=/"},
		{"GET", "/file?path=file1.lorem"},
		{"POST", "/file?path=x"},
		{"DELETE", "/file?path=x"},
		{"GET", "/file/copy?source=a&destination=b"},
		{"POST", "/dir?path=x"},
		{"GET", "/does/not/exist"},
	} {
		rec := serve(router, httptest.NewRequest(target.method, target.url, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", target.method, target.url)
	}

	assert.Empty(t, service.Calls, "guard must run before the service")
}

func TestRouter_CORSPreflightBeforeGuard(t *testing.T) {
	router, _ := newRouter(t, &fsgatehttp.HandlerConfig{
		Verifier: keybackend.NewStaticStore(testKey),
		CORS: fsgatehttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://app.example.com"},
			AllowedMethods: []string{"GET", "POST", "DELETE"},
			AllowedHeaders: []string{"apikey", "Content-Type"},
		},
	})

	req := httptest.NewRequest("OPTIONS", "/list?path=/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "apikey")
	rec := serve(router, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
}
