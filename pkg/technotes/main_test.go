package technotes

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainRunStopsOnCancel(t *testing.T) {
	unsetConfigEnv(t)
	logDir := t.TempDir()
	t.Setenv("LOG_DIR", logDir)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Main(ctx, []string{noEnvFile(t), "-store", "memory", "-port", "0"}) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Main did not return after cancel")
	}
	assert.FileExists(t, filepath.Join(logDir, requestLogFile))
}

func TestMainMigrate(t *testing.T) {
	unsetConfigEnv(t)
	t.Setenv("LOG_DIR", t.TempDir())

	require.NoError(t, Main(context.Background(), []string{noEnvFile(t), "-store", "memory", "migrate"}))
}

func TestMainSyncNeedsCQRS(t *testing.T) {
	unsetConfigEnv(t)
	t.Setenv("LOG_DIR", t.TempDir())

	err := Main(context.Background(), []string{noEnvFile(t), "-store", "memory", "sync"})
	assert.ErrorContains(t, err, "requires the cqrs backend")
}

func TestMainRejectsBadArguments(t *testing.T) {
	unsetConfigEnv(t)
	logDir := t.TempDir()
	t.Setenv("LOG_DIR", logDir)

	err := Main(context.Background(), []string{noEnvFile(t), "-store", "memory", "launch"})
	assert.ErrorContains(t, err, "failed to parse configuration")

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is opened before the configuration is valid")
}
