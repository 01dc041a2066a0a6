package technotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/technotes/technotes/pkg/store"
	"github.com/technotes/technotes/pkg/store/cqrs"
	"github.com/technotes/technotes/pkg/store/memory"
	"github.com/technotes/technotes/pkg/store/postgres"
	"github.com/technotes/technotes/pkg/store/surrealdb"
)

// App holds the application state. The store is connected once by New and
// shared by every request until Close.
type App struct {
	store    store.Store
	config   *Config
	logs     *Logs
	console  *slog.Logger
	readOnly atomic.Bool
}

// Option customizes New.
type Option func(*App)

// WithStore uses s instead of dialing the configured backend.
func WithStore(s store.Store) Option {
	return func(a *App) {
		a.store = s
	}
}

// WithLogs replaces the durable log files.
func WithLogs(logs *Logs) Option {
	return func(a *App) {
		a.logs = logs
	}
}

// WithLogger replaces the console logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.console = l
	}
}

// New creates the application and connects its store. Connection failures
// are retried with exponential backoff up to config.ConnectRetries times;
// every failure is recorded in the durable DB log.
func New(ctx context.Context, config *Config, opts ...Option) (*App, error) {
	app := &App{config: config}
	for _, opt := range opts {
		opt(app)
	}

	if app.console == nil {
		app.console = newConsoleLogger(config)
	}
	if app.logs == nil {
		logs, err := OpenLogs(config.LogDir)
		if err != nil {
			return nil, err
		}
		app.logs = logs
	}
	app.readOnly.Store(config.ReadOnly)

	appStore := app.store
	if appStore == nil {
		dial, err := dialer(config)
		if err != nil {
			_ = app.logs.Close()
			return nil, err
		}

		appStore, err = store.Connect(ctx, dial,
			store.NewExponentialBackoffRetryer(config.ConnectRetries),
			func(attempt int, err error) {
				d := app.logs.DB.LogConnError(err, config.storeHost())
				app.console.Warn("store connection failed",
					"attempt", attempt+1, "backend", config.StoreBackend, "diagnostic", d.String())
			})
		if err != nil {
			_ = app.logs.Close()
			return nil, fmt.Errorf("failed to connect to %s: %w", config.StoreBackend, err)
		}
		app.console.Info("connected to store", "backend", config.StoreBackend)
	}

	app.store = store.NewReadOnlyStore(appStore, app.IsReadOnly)
	if c := app.cqrsStore(); c != nil {
		c.SetLogger(app.console)
	}
	return app, nil
}

func newConsoleLogger(config *Config) *slog.Logger {
	level := slog.LevelInfo
	if config.IsDevelopment() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// dialer returns a Dialer for the configured backend.
func dialer(config *Config) (store.Dialer, error) {
	dialSurreal := func(ctx context.Context) (*surrealdb.SurrealStoreCBOR, error) {
		return surrealdb.NewSurrealStoreCBOR(ctx,
			config.DatabaseURI,
			config.SurrealDBNS,
			config.SurrealDBDB,
			config.SurrealDBUser,
			config.SurrealDBPass,
		)
	}

	switch config.StoreBackend {
	case BackendSurrealDB:
		return func(ctx context.Context) (store.Store, error) {
			s, err := dialSurreal(ctx)
			if err != nil {
				return nil, err
			}
			return s, nil
		}, nil
	case BackendPostgres:
		return func(ctx context.Context) (store.Store, error) {
			s, err := postgres.NewPostgresStore(ctx, config.PostgresDSN)
			if err != nil {
				return nil, err
			}
			return s, nil
		}, nil
	case BackendMemory:
		return func(context.Context) (store.Store, error) {
			return memory.New(), nil
		}, nil
	case BackendCQRS:
		// PostgreSQL is the primary, SurrealDB the store being migrated to.
		return func(ctx context.Context) (store.Store, error) {
			pg, err := postgres.NewPostgresStore(ctx, config.PostgresDSN)
			if err != nil {
				return nil, fmt.Errorf("primary: %w", err)
			}
			sdb, err := dialSurreal(ctx)
			if err != nil {
				_ = pg.Close()
				return nil, fmt.Errorf("secondary: %w", err)
			}
			return cqrs.NewCQRSStore(pg, sdb, config.MigrationMode), nil
		}, nil
	}
	return nil, fmt.Errorf("invalid store backend: %s", config.StoreBackend)
}

// Close closes the store and the log files.
func (a *App) Close() error {
	var storeErr error
	if a.store != nil {
		storeErr = a.store.Close()
	}
	return errors.Join(storeErr, a.logs.Close())
}

// Store returns the store the handlers use.
func (a *App) Store() store.Store {
	return a.store
}

// SetReadOnly toggles rejection of every write at runtime.
func (a *App) SetReadOnly(readOnly bool) {
	a.readOnly.Store(readOnly)
	a.console.Info("application read-only mode changed", "readOnly", readOnly)
}

func (a *App) IsReadOnly() bool {
	return a.readOnly.Load()
}

// cqrsStore finds the cqrs store beneath any wrappers, or returns nil.
func (a *App) cqrsStore() *cqrs.CQRSStore {
	s := a.store
	for {
		if c, ok := s.(*cqrs.CQRSStore); ok {
			return c
		}
		u, ok := s.(store.Unwrapper)
		if !ok {
			return nil
		}
		s = u.Unwrap()
	}
}

// mode reports the cqrs routing mode, or single for other backends.
func (a *App) mode() cqrs.MigrationMode {
	if c := a.cqrsStore(); c != nil {
		return c.GetMode()
	}
	return cqrs.ModeSingle
}
