package technotes

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/technotes/technotes/pkg/logger"
)

const (
	requestLogFile = "reqLog.log"
	errorLogFile   = "errLog.log"
	dbErrorLogFile = "dbErrLog.log"
)

// Logs are the durable event logs of the server.
type Logs struct {
	// Request receives one line per request.
	Request *logger.Log
	// Error receives every error turned into a response.
	Error *logger.Log
	// DB receives store connection failures.
	DB *logger.Log
}

// OpenLogs opens (or creates) the three log files under dir.
func OpenLogs(dir string) (*Logs, error) {
	logs := &Logs{}
	for _, f := range []struct {
		name string
		dst  **logger.Log
	}{
		{requestLogFile, &logs.Request},
		{errorLogFile, &logs.Error},
		{dbErrorLogFile, &logs.DB},
	} {
		l, err := logger.New().FromPath(filepath.Join(dir, f.name)).Make()
		if err != nil {
			_ = logs.Close()
			return nil, fmt.Errorf("failed to open %s: %w", f.name, err)
		}
		*f.dst = l
	}
	return logs, nil
}

// DiscardLogs returns Logs that write nowhere.
func DiscardLogs() *Logs {
	return &Logs{
		Request: logger.Nop(),
		Error:   logger.Nop(),
		DB:      logger.Nop(),
	}
}

func (l *Logs) Close() error {
	return errors.Join(l.Request.Close(), l.Error.Close(), l.DB.Close())
}
