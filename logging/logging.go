// ABOUTME: Structured logger construction for quotedesk
// ABOUTME: Wraps charmbracelet/log with the app prefix and a configurable level
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	current *log.Logger
)

// New builds a logger writing to w at level. Unknown levels mean info.
func New(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "quotedesk",
		Level:           ParseLevel(level),
	})
	return logger
}

// ParseLevel maps debug, info, warn and error to a log level.
func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Setup builds the process logger on stderr and installs it as the
// charmbracelet/log default.
func Setup(level string) *log.Logger {
	logger := New(os.Stderr, level)
	mu.Lock()
	current = logger
	mu.Unlock()
	log.SetDefault(logger)
	return logger
}

// Default returns the process logger, creating an info-level one if Setup
// was never called.
func Default() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = New(os.Stderr, "info")
	}
	return current
}
