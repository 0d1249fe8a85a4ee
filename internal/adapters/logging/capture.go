package logging

import (
	"strings"
	"sync"

	"github.com/sufield/tlsdiag/internal/core/ports"
)

// CaptureEntry is one message recorded by a CaptureLogger.
type CaptureEntry struct {
	Level   ports.LogLevel
	Message string
	Attrs   []ports.LogAttribute
}

// CaptureLogger records every message in memory. It exists so tests can
// assert on diagnostic output without a real sink; all levels are enabled.
// Safe for concurrent use.
type CaptureLogger struct {
	mu      sync.Mutex
	entries []CaptureEntry
}

// NewCapture creates an empty capturing logger.
func NewCapture() *CaptureLogger {
	return &CaptureLogger{}
}

// Enabled implements ports.Logger; every level is enabled.
func (l *CaptureLogger) Enabled(ports.LogLevel) bool { return true }

// Debug implements ports.Logger.
func (l *CaptureLogger) Debug(message string, attrs ...ports.LogAttribute) {
	l.record(ports.LogLevelDebug, message, attrs)
}

// Info implements ports.Logger.
func (l *CaptureLogger) Info(message string, attrs ...ports.LogAttribute) {
	l.record(ports.LogLevelInfo, message, attrs)
}

// Warn implements ports.Logger.
func (l *CaptureLogger) Warn(message string, attrs ...ports.LogAttribute) {
	l.record(ports.LogLevelWarn, message, attrs)
}

func (l *CaptureLogger) record(level ports.LogLevel, message string, attrs []ports.LogAttribute) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, CaptureEntry{Level: level, Message: message, Attrs: attrs})
}

// Entries returns a snapshot of everything recorded so far.
func (l *CaptureLogger) Entries() []CaptureEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]CaptureEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Messages returns the recorded messages at the given level, in order.
func (l *CaptureLogger) Messages(level ports.LogLevel) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var messages []string
	for _, e := range l.entries {
		if e.Level == level {
			messages = append(messages, e.Message)
		}
	}
	return messages
}

// Contains reports whether any recorded message contains substr.
func (l *CaptureLogger) Contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
