package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// WithSPA wraps the API handler with static serving for the frontend build.
// Unknown paths fall back to index.html so client side routing works.
func WithSPA(apiHandler http.Handler, webDir string) http.Handler {
	fileServer := http.FileServer(http.Dir(webDir))
	indexPath := filepath.Join(webDir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiHandler.ServeHTTP(w, r)
			return
		}

		cleanPath := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if cleanPath == "." || cleanPath == "" {
			serveIndex(w, r, indexPath)
			return
		}

		fullPath := filepath.Join(webDir, cleanPath)
		if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
			w.Header().Set("Cache-Control", "no-store")
			fileServer.ServeHTTP(w, r)
			return
		}

		serveIndex(w, r, indexPath)
	})
}

func serveIndex(w http.ResponseWriter, r *http.Request, indexPath string) {
	if _, err := os.Stat(indexPath); err == nil {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, indexPath)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("index.html not found"))
}
