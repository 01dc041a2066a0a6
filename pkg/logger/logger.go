// Package logger builds the durable event logs of technotes.
//
// Each log is a zerolog logger writing one JSON object per line, with a
// timestamp, to an append-only file or to any io.Writer.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const (
	permission    = 0664
	dirPermission = 0755
)

type LogBuild struct {
	writer io.Writer
	path   string
}

type Log struct {
	file   *os.File
	Logger zerolog.Logger
}

func New() *LogBuild {
	return &LogBuild{}
}

// FromPath writes to the file at path, creating it and its directory when
// needed. It takes precedence over FromWriter.
func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromWriter(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

func (build *LogBuild) Make() (*Log, error) {
	log := new(Log)
	writer := build.writer
	if writer == nil {
		writer = os.Stdout
	}
	if build.path != "" {
		if err := os.MkdirAll(filepath.Dir(build.path), dirPermission); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		log.file = f
		writer = f
	}
	// request goroutines share one Log
	log.Logger = zerolog.New(zerolog.SyncWriter(writer)).With().Timestamp().Logger()
	return log, nil
}

// Close closes the underlying file, if any.
func (l *Log) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Nop returns a Log that discards everything.
func Nop() *Log {
	return &Log{Logger: zerolog.Nop()}
}
