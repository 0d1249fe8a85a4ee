// Package ports defines the capability interfaces the diagnostic layer wraps
// and consumes. Each interface follows the hexagonal architecture pattern:
// the core depends on these contracts only, and adapters supply conforming
// implementations.
package ports

// LogLevel represents the logging level for messages.
type LogLevel int

const (
	// LogLevelDebug represents debug (trace/fine) level logging. Chain
	// renders and socket configuration blocks are emitted at this level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo represents info level logging.
	LogLevelInfo
	// LogLevelWarn represents warning level logging. Forensic failure
	// blocks and selection misses are emitted at this level.
	LogLevelWarn
)

// LogAttribute represents a key-value pair for structured logging.
type LogAttribute struct {
	Key   string
	Value interface{}
}

// Logger is the structured logging capability injected into every wrapped
// component. Implementations must be safe for concurrent use and must emit
// line-oriented output with no interleaved partial lines.
//
// Enabled exists so expensive diagnostic string construction can be skipped
// entirely when a level is disabled; callers check it before any formatting
// work on the handshake critical path.
type Logger interface {
	// Enabled reports whether messages at the given level are emitted.
	Enabled(level LogLevel) bool
	// Debug logs a debug level message.
	Debug(message string, attrs ...LogAttribute)
	// Info logs an info level message.
	Info(message string, attrs ...LogAttribute)
	// Warn logs a warning level message.
	Warn(message string, attrs ...LogAttribute)
}

// NopLogger discards everything and reports every level disabled.
type NopLogger struct{}

// Enabled implements Logger.
func (NopLogger) Enabled(LogLevel) bool { return false }

// Debug implements Logger.
func (NopLogger) Debug(string, ...LogAttribute) {}

// Info implements Logger.
func (NopLogger) Info(string, ...LogAttribute) {}

// Warn implements Logger.
func (NopLogger) Warn(string, ...LogAttribute) {}
