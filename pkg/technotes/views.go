package technotes

import (
	"net/http"
	"os"
	"path/filepath"
)

func (a *App) serveIndex(w http.ResponseWriter, r *http.Request) {
	if !serveFile(w, r, filepath.Join(a.config.ViewsDir, "index.html")) {
		a.notFound(w, r)
	}
}

// notFound answers with the 404 page, a JSON body or plain text, in that
// order of preference, depending on what the client accepts.
func (a *App) notFound(w http.ResponseWriter, r *http.Request) {
	if accepts(r, "text/html") {
		if page, err := os.ReadFile(filepath.Join(a.config.ViewsDir, "404.html")); err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write(page)
			return
		}
	}
	if accepts(r, "application/json") {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("404 Not found"))
}
