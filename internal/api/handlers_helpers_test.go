package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finnacle/pkg/finnacle"
)

// setupTestRouter creates a test router backed by a temporary database.
func setupTestRouter(t *testing.T) (http.Handler, func()) {
	t.Helper()
	return setupTestRouterWithOptions(t, finnacle.Options{})
}

func setupTestRouterWithOptions(t *testing.T, opts finnacle.Options) (http.Handler, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	opts.DBPath = filepath.Join(tmpDir, "test.db")
	if opts.JWTSecret == "" {
		opts.JWTSecret = "test-secret"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	core, err := finnacle.OpenWithOptions(opts)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to open test db: %v", err)
	}

	router := NewRouter(core, opts.Logger)

	cleanup := func() {
		core.Close()
		os.RemoveAll(tmpDir)
	}

	return router, cleanup
}

// doRequest performs a request and returns the response. An empty token
// leaves the request unauthenticated.
func doRequest(router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response %q: %v", rr.Body.String(), err)
	}
	return result
}

// parseJSONList parses the response body into a slice of maps.
func parseJSONList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var result []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response %q: %v", rr.Body.String(), err)
	}
	return result
}

// registerTestUser registers a user through the API and returns its token.
func registerTestUser(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	rr := doRequest(router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"fullName": "Test User",
		"email":    email,
		"password": "hunter22",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register failed with %d: %s", rr.Code, rr.Body.String())
	}
	token, _ := parseJSON(t, rr)["token"].(string)
	if token == "" {
		t.Fatal("register returned no token")
	}
	return token
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

// fakeQuoteClient serves canned prices per symbol for portfolio tests.
type fakeQuoteClient struct {
	prices map[string]float64
}

func (f *fakeQuoteClient) Do(req *http.Request) (*http.Response, error) {
	symbol := strings.ToUpper(req.URL.Query().Get("symbols"))
	body := `{"quoteResponse":{"result":[],"error":null}}`
	if price, ok := f.prices[symbol]; ok {
		body = fmt.Sprintf(`{"quoteResponse":{"result":[{"symbol":%q,"regularMarketPrice":%g}],"error":null}}`, symbol, price)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}
