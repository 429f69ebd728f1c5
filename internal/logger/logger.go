// Package logger provides module-scoped logrus loggers.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu   sync.RWMutex
	root = newRoot(os.Stderr, logrus.InfoLevel)
)

func newRoot(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// Setup replaces the root logger. Unknown levels fall back to info.
func Setup(level string, out io.Writer) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if out == nil {
		out = io.Discard
	}

	mu.Lock()
	root = newRoot(out, lvl)
	mu.Unlock()
}

// For returns a logger tagged with the given module name
func For(module string) *logrus.Entry {
	mu.RLock()
	defer mu.RUnlock()
	return root.WithField("module", module)
}

// Root returns the shared logger
func Root() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}
