package technotes

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technotes/technotes/pkg/store/cqrs"
)

var configEnv = []string{
	"PORT", "APP_ENV", "NODE_ENV", "STORE_BACKEND", "DATABASE_URI",
	"SURREALDB_NS", "SURREALDB_DB", "SURREALDB_USER", "SURREALDB_PASS",
	"POSTGRES_DSN", "CQRS_MODE", "CORS_ORIGINS", "LOG_DIR", "PUBLIC_DIR",
	"VIEWS_DIR", "DB_CONNECT_RETRIES", "DB_HEALTH_INTERVAL",
}

// unsetConfigEnv removes every configuration variable for the duration of
// the test.
func unsetConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func noEnvFile(t *testing.T) string {
	return "-env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestParseDefaults(t *testing.T) {
	unsetConfigEnv(t)

	cmd, config, err := Parse([]string{noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "run", cmd.Name())

	assert.Equal(t, "3500", config.Port)
	assert.Equal(t, "development", config.Env)
	assert.True(t, config.IsDevelopment())
	assert.Equal(t, BackendSurrealDB, config.StoreBackend)
	assert.Equal(t, "ws://localhost:8000/rpc", config.DatabaseURI)
	assert.Equal(t, "technotes", config.SurrealDBNS)
	assert.Equal(t, cqrs.ModeSingle, config.MigrationMode)
	assert.False(t, config.ReadOnly)
	assert.Equal(t, []string{"http://localhost:3000"}, config.CORSOrigins)
	assert.Equal(t, "logs", config.LogDir)
	assert.Equal(t, 5, config.ConnectRetries)
	assert.Equal(t, 30*time.Second, config.HealthInterval)
	assert.Equal(t, "localhost", config.storeHost())
}

func TestParseFlagsOverrideEnv(t *testing.T) {
	unsetConfigEnv(t)
	t.Setenv("PORT", "4000")
	t.Setenv("STORE_BACKEND", BackendPostgres)
	t.Setenv("CORS_ORIGINS", "https://a.example/, https://b.example ,")
	t.Setenv("NODE_ENV", "production")

	cmd, config, err := Parse([]string{noEnvFile(t), "-port", "5000", "-store", "cqrs", "-mode", "switching", "-read-only", "migrate"})
	require.NoError(t, err)
	assert.Equal(t, "migrate", cmd.Name())
	assert.Equal(t, "5000", config.Port)
	assert.Equal(t, "production", config.Env)
	assert.Equal(t, BackendCQRS, config.StoreBackend)
	assert.Equal(t, cqrs.ModeSwitching, config.MigrationMode)
	assert.True(t, config.ReadOnly)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, config.CORSOrigins)
}

func TestParseEnvFile(t *testing.T) {
	unsetConfigEnv(t)
	t.Setenv("PORT", "4100")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=4200\nSTORE_BACKEND=memory\nDB_CONNECT_RETRIES=2\n"), 0o600))

	_, config, err := Parse([]string{"-env-file", path})
	require.NoError(t, err)
	assert.Equal(t, "4100", config.Port, "the process environment wins over the file")
	assert.Equal(t, BackendMemory, config.StoreBackend)
	assert.Equal(t, 2, config.ConnectRetries)
}

func TestParseSync(t *testing.T) {
	unsetConfigEnv(t)

	cmd, _, err := Parse([]string{noEnvFile(t), "-store", "cqrs", "sync", "-sync-direction", "reverse", "-sync-since", "2024-01-01T00:00:00Z"})
	require.NoError(t, err)
	sync, ok := cmd.(*SyncCommand)
	require.True(t, ok)
	assert.Equal(t, "reverse", sync.Direction)
	assert.Equal(t, "2024-01-01T00:00:00Z", sync.Since)
	assert.Empty(t, sync.Until)

	cmd, _, err = Parse([]string{noEnvFile(t), "sync"})
	require.NoError(t, err)
	assert.Equal(t, "forward", cmd.(*SyncCommand).Direction)
}

func TestParseZeroRetries(t *testing.T) {
	unsetConfigEnv(t)
	t.Setenv("DB_CONNECT_RETRIES", "0")

	_, config, err := Parse([]string{noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, 0, config.ConnectRetries)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{"unknown command", []string{"serve"}, nil, "unknown command: serve"},
		{"unknown flag", []string{"-verbose"}, nil, "flag provided but not defined"},
		{"invalid backend", []string{"-store", "mongo"}, nil, "invalid store backend: mongo"},
		{"invalid mode", []string{"-mode", "sideways"}, nil, "invalid migration mode: sideways"},
		{"invalid direction", []string{"sync", "-sync-direction", "up"}, nil, "invalid sync direction: up"},
		{"invalid retries", nil, map[string]string{"DB_CONNECT_RETRIES": "many"}, "invalid DB_CONNECT_RETRIES"},
		{"negative retries", nil, map[string]string{"DB_CONNECT_RETRIES": "-1"}, "invalid DB_CONNECT_RETRIES"},
		{"invalid interval", nil, map[string]string{"DB_HEALTH_INTERVAL": "0s"}, "invalid DB_HEALTH_INTERVAL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			unsetConfigEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, _, err := Parse(append([]string{noEnvFile(t)}, tc.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseTime(t *testing.T) {
	def := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := ParseTime("", def)
	require.NoError(t, err)
	assert.Equal(t, def, got)

	got, err = ParseTime("2024-06-01T12:00:00Z", def)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), got)

	_, err = ParseTime("yesterday", def)
	assert.Error(t, err)
}
