package technotes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type middleware func(http.Handler) http.Handler

// chain wraps h so that the first middleware sees the request first.
func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func (a *App) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.console.Info(r.Method + " " + r.URL.Path)
		a.logs.Request.Logger.Info().
			Str("method", r.Method).
			Str("url", r.URL.RequestURI()).
			Str("origin", r.Header.Get("Origin")).
			Msg(fmt.Sprintf("%s\t%s\t%s", r.Method, r.URL.RequestURI(), r.Header.Get("Origin")))
		next.ServeHTTP(w, r)
	})
}

// corsPolicy allows credentialed requests from the configured origins.
// Requests without Origin are not cross-origin and pass untouched; other
// origins get no CORS headers.
func (a *App) corsPolicy() middleware {
	return cors.Handler(cors.Options{
		AllowedOrigins:   a.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// parseBody decodes a JSON object body once and stores it on the request
// context for bodyFields.
func (a *App) parseBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody || !isJSON(r.Header.Get("Content-Type")) {
			next.ServeHTTP(w, r)
			return
		}

		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				a.handleError(w, r, &apiError{
					status:  http.StatusRequestEntityTooLarge,
					name:    "PayloadTooLarge",
					message: "Request entity too large",
				})
				return
			}
			a.handleError(w, r, validationError("Failed to read request body"))
			return
		}

		f := fields{}
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, &f); err != nil || f == nil {
				a.handleError(w, r, validationError("Malformed JSON body"))
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(withBody(r.Context(), f)))
	})
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func (a *App) parseCookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookies := make(map[string]string)
		for _, c := range r.Cookies() {
			cookies[c.Name] = c.Value
		}
		next.ServeHTTP(w, r.WithContext(contextWithCookies(r.Context(), cookies)))
	})
}

// serveStatic serves GET and HEAD requests naming a regular file under the
// public directory. Everything else falls through.
func (a *App) serveStatic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		name := filepath.Join(a.config.PublicDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if !serveFile(w, r, name) {
			next.ServeHTTP(w, r)
		}
	})
}

// serveFile serves name if it is a regular file and reports whether it did.
// http.ServeFile is avoided because it redirects paths ending in index.html.
func serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

// recoverPanics turns a panicking handler into a 500.
func (a *App) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				a.handleError(w, r, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
