package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupSPADir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html": "<html>finnacle</html>",
		"app.js":     "console.log('hi')",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestWithSPA(t *testing.T) {
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := WithSPA(apiHandler, setupSPADir(t))

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{name: "api passthrough", path: "/api/health", wantCode: http.StatusTeapot},
		{name: "root serves index", path: "/", wantCode: http.StatusOK, wantBody: "finnacle"},
		{name: "static file", path: "/app.js", wantCode: http.StatusOK, wantBody: "console"},
		{name: "client route falls back to index", path: "/dashboard", wantCode: http.StatusOK, wantBody: "finnacle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			if tt.wantBody != "" && !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestWithSPA_MissingIndex(t *testing.T) {
	handler := WithSPA(http.NotFoundHandler(), t.TempDir())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}
