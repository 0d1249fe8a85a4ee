package logging

import (
	"log/slog"
	"os"
	"sync"

	"github.com/sufield/tlsdiag/internal/core/ports"
)

var (
	defaultMu     sync.RWMutex
	defaultLogger ports.Logger
)

// Default returns the process-wide default logger, creating it lazily on
// first use: a debug-level text handler writing to stdout. Components accept
// an injected logger; Default is only the fallback wired in at the public
// API edge, so tests can substitute a capturing sink per facade instead of
// touching global state.
func Default() ports.Logger {
	defaultMu.RLock()
	logger := defaultLogger
	defaultMu.RUnlock()
	if logger != nil {
		return logger
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewSlogLogger(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return defaultLogger
}

// SetDefault overrides the process-wide default logger. Passing nil resets
// to the lazily-created default.
func SetDefault(logger ports.Logger) {
	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
}
