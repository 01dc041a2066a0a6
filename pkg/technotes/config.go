package technotes

import (
	"net/url"
	"time"

	"github.com/technotes/technotes/pkg/store/cqrs"
)

// Store backends selectable with -store or STORE_BACKEND.
const (
	BackendSurrealDB = "surrealdb"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
	BackendCQRS      = "cqrs"
)

// Config holds application configuration.
type Config struct {
	Port string
	Env  string

	StoreBackend string

	// SurrealDB
	DatabaseURI   string
	SurrealDBNS   string
	SurrealDBDB   string
	SurrealDBUser string
	SurrealDBPass string

	PostgresDSN string

	// MigrationMode routes reads and writes when StoreBackend is cqrs.
	MigrationMode cqrs.MigrationMode
	ReadOnly      bool

	CORSOrigins []string

	LogDir    string
	PublicDir string
	ViewsDir  string

	ConnectRetries int
	HealthInterval time.Duration
}

// IsDevelopment reports whether the console log runs at debug level.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// storeHost names the host the configured backend connects to. It is
// reported in connection diagnostics when the error itself carries none.
func (c *Config) storeHost() string {
	raw := c.DatabaseURI
	if c.StoreBackend == BackendPostgres {
		raw = c.PostgresDSN
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
