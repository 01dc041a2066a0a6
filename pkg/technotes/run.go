package technotes

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// Handler returns the full request pipeline. In order, a request is logged,
// checked against the CORS policy, has its JSON body and cookies parsed, is
// served from the public directory if it names a file there, and is finally
// routed. Unmatched requests get a content-negotiated 404, and every handler
// error ends in handleError. Panics are recovered around the whole pipeline,
// so one raised by a middleware ends there too.
//
// # Routes
//
//	GET          /, /index, /index.html   - views/index.html
//	GET          /health                  - store health and routing mode
//	GET          /notes                   - all notes with their owner's username
//	POST         /notes                   - create a note {user, title, text}
//	PATCH        /notes                   - update a note {id, user, title, text, completed}
//	DELETE       /notes                   - delete a note {id}
//	GET          /users                   - all users
//	POST         /users                   - create a user {username, roles}
//	PATCH        /users                   - update a user {id, username, roles, active}
//	DELETE       /users                   - delete a user without notes {id}
func (a *App) Handler() http.Handler {
	router := mux.NewRouter()

	for _, p := range []string{"/", "/index", "/index.html"} {
		router.HandleFunc(p, a.serveIndex).Methods(http.MethodGet, http.MethodHead)
	}
	router.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)

	router.HandleFunc("/notes", a.handle(a.listNotes)).Methods(http.MethodGet)
	router.HandleFunc("/notes", a.handle(a.createNote)).Methods(http.MethodPost)
	router.HandleFunc("/notes", a.handle(a.updateNote)).Methods(http.MethodPatch)
	router.HandleFunc("/notes", a.handle(a.deleteNote)).Methods(http.MethodDelete)

	router.HandleFunc("/users", a.handle(a.listUsers)).Methods(http.MethodGet)
	router.HandleFunc("/users", a.handle(a.createUser)).Methods(http.MethodPost)
	router.HandleFunc("/users", a.handle(a.updateUser)).Methods(http.MethodPatch)
	router.HandleFunc("/users", a.handle(a.deleteUser)).Methods(http.MethodDelete)

	router.NotFoundHandler = http.HandlerFunc(a.notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(a.notFound)

	return chain(router,
		a.recoverPanics,
		a.logRequests,
		a.corsPolicy(),
		a.parseBody,
		a.parseCookies,
		a.serveStatic,
	)
}

// Run migrates the store, then serves HTTP on the configured port until ctx
// is canceled. The store is monitored in the background for the lifetime of
// the server. On cancellation, in-flight requests get up to five seconds to
// complete.
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	if err := a.Migrate(ctx, &MigrateCommand{}); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", ":"+a.config.Port)
	if err != nil {
		return err
	}
	return a.Serve(ctx, listener)
}

// Serve is Run on an existing listener, without the migration.
func (a *App) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	var monitor sync.WaitGroup
	monitor.Add(1)
	go func() {
		defer monitor.Done()
		a.monitorStore(monitorCtx, a.config.HealthInterval)
	}()
	defer func() {
		stopMonitor()
		monitor.Wait()
	}()

	a.console.Info("server is running",
		"addr", listener.Addr().String(),
		"env", a.config.Env,
		"backend", a.config.StoreBackend,
		"mode", a.mode())

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.console.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
