package testlog

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleLogger() {
	logger := Logger(os.Stdout)

	logger.Info("server started", slog.Int("port", 3500))
	logger.Warn("store ping failed")
	logger.With(slog.String("method", "GET")).Info("request", slog.String("path", "/notes"))

	// Output:
	// [0] INFO: server started port=3500
	// [1] WARN: store ping failed
	// [2] INFO: request method=GET, path=/notes
}

func TestGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := Logger(&buf)

	logger.WithGroup("db").Info("connect", slog.String("host", "localhost"))
	logger.Info("nested", slog.Group("err", slog.String("code", "ECONNREFUSED")))

	assert.Equal(t,
		"[0] INFO: connect db.host=localhost\n"+
			"[1] INFO: nested err.code=ECONNREFUSED\n",
		buf.String())
}

func TestIgnoreDebugSharesIndex(t *testing.T) {
	var buf bytes.Buffer
	logger := Logger(&buf, WithIgnoreDebug())

	logger.Debug("dropped")
	logger.Info("first")
	logger.With("k", "v").Error("second")

	assert.Equal(t, "[0] INFO: first\n[1] ERROR: second k=v\n", buf.String())
}
