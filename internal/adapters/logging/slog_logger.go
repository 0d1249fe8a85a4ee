// Package logging provides slog-backed implementations of the ports.Logger
// capability, plus the process-wide default logger registry.
package logging

import (
	"context"
	"log/slog"

	"github.com/sufield/tlsdiag/internal/core/ports"
)

// SlogLogger implements ports.Logger on top of a slog handler. slog handlers
// emit one complete line per record, which satisfies the no-interleaving
// requirement for concurrent writers.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a logger over the given handler.
func NewSlogLogger(handler slog.Handler) *SlogLogger {
	return &SlogLogger{logger: slog.New(handler)}
}

// Enabled reports whether the given level is emitted. It is the cheap gate
// callers check before building expensive diagnostic strings.
func (l *SlogLogger) Enabled(level ports.LogLevel) bool {
	return l.logger.Enabled(context.Background(), slogLevel(level))
}

// Debug logs a debug level message.
func (l *SlogLogger) Debug(message string, attrs ...ports.LogAttribute) {
	l.log(slog.LevelDebug, message, attrs...)
}

// Info logs an info level message.
func (l *SlogLogger) Info(message string, attrs ...ports.LogAttribute) {
	l.log(slog.LevelInfo, message, attrs...)
}

// Warn logs a warning level message.
func (l *SlogLogger) Warn(message string, attrs ...ports.LogAttribute) {
	l.log(slog.LevelWarn, message, attrs...)
}

func (l *SlogLogger) log(level slog.Level, message string, attrs ...ports.LogAttribute) {
	slogAttrs := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		slogAttrs[i] = slog.Any(attr.Key, attr.Value)
	}
	l.logger.LogAttrs(context.Background(), level, message, slogAttrs...)
}

func slogLevel(level ports.LogLevel) slog.Level {
	switch level {
	case ports.LogLevelDebug:
		return slog.LevelDebug
	case ports.LogLevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// ParseLevel maps a configuration string to a slog level. Unknown values
// default to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
