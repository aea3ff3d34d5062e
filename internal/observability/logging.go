package observability

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation limits.
const (
	logMaxSizeMB  = 50
	logMaxBackups = 5
	logMaxAgeDays = 30
)

// NewLogger returns a logger with a bracketed component prefix writing to
// stderr and, when logFile is set, to a size-rotated file.
// The returned closer releases the file and is safe to call when logFile is empty.
func NewLogger(component, logFile string) (*log.Logger, io.Closer) {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stderr, rotator)
		closer = rotator
	}

	return log.New(out, "["+component+"] ", log.LstdFlags|log.Lshortfile), closer
}

// WithPrefix derives a logger for another component sharing l's output.
func WithPrefix(l *log.Logger, component string) *log.Logger {
	return log.New(l.Writer(), "["+component+"] ", l.Flags())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
