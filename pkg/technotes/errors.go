package technotes

import (
	"errors"
	"net/http"

	"github.com/technotes/technotes/pkg/store"
)

// apiError is an error with a status and a message safe to show to clients.
type apiError struct {
	status  int
	name    string
	message string
}

func (e *apiError) Error() string {
	return e.message
}

func validationError(message string) error {
	return &apiError{status: http.StatusBadRequest, name: "ValidationError", message: message}
}

func conflictError(message string) error {
	return &apiError{status: http.StatusConflict, name: "Conflict", message: message}
}

func notFoundError(message string) error {
	return &apiError{status: http.StatusNotFound, name: "NotFound", message: message}
}

// handlerFunc is an HTTP handler that reports failure by returning an error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts h to http.HandlerFunc, sending any returned error through
// handleError.
func (a *App) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			a.handleError(w, r, err)
		}
	}
}

// handleError is the single place where errors become responses. Every error
// is written to the durable error log.
func (a *App) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status int
		name   string
		body   map[string]any
		apiErr *apiError
	)
	switch {
	case errors.As(err, &apiErr):
		status, name = apiErr.status, apiErr.name
		body = map[string]any{"message": apiErr.message}
	case errors.Is(err, store.ErrReadOnly):
		status, name = http.StatusServiceUnavailable, "ReadOnly"
		body = map[string]any{"message": err.Error()}
	default:
		status, name = http.StatusInternalServerError, "InternalError"
		body = map[string]any{"message": err.Error(), "isError": true}
	}

	a.logs.Error.Logger.Error().
		Str("name", name).
		Str("message", err.Error()).
		Str("method", r.Method).
		Str("url", r.URL.RequestURI()).
		Str("origin", r.Header.Get("Origin")).
		Int("status", status).
		Msg(name + ": " + err.Error())

	if status >= http.StatusInternalServerError {
		a.console.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		a.console.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	respondJSON(w, status, body)
}
