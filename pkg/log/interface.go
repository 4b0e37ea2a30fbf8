// Package log provides structured logging for churn-risk operations.
//
// It defines a minimal, slog-compatible Logger interface so the library
// code stays backend-agnostic: the default implementation emits JSON
// through log/slog, and a zerolog-backed console logger is available for
// interactive use. Errors logged through ErrAttr have their
// cockroachdb/errors stack trace lifted into a "stacktrace" attribute.
package log

import (
	"context"
	"sync"
)

// Logger is a structured logging interface compatible with log/slog.
// Fields are alternating key/value pairs, as in slog.
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs a condition that does not stop the operation.
	Warn(msg string, fields ...any)

	// Error logs a failure.
	Error(msg string, fields ...any)

	// With returns a Logger that includes fields in every message.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level is a logging level, value-compatible with slog.Level.
type Level int

// Standard levels.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the textual form of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error")
// into a Level, defaulting to LevelInfo for unknown names.
func ParseLevel(name string) Level {
	switch name {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = newSlogDefault()
)

// SetDefault replaces the logger returned by GetLogger.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// GetLogger returns the process-wide default logger.
func GetLogger() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// GetLoggerWithName returns the default logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}
