// Package log provides a structured logging interface for scitab estimators.
//
// The Logger interface is slog-compatible so that implementations can be swapped
// without touching estimator code. The default implementation is backed by
// zerolog (see zerolog.go); SetupLogger configures log/slog for applications that
// prefer the standard handler chain.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("tree").With(
//	    log.ModelNameKey, "DecisionTreeClassifier",
//	)
//	logger.Debug("fit completed",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 14,
//	    log.FeaturesKey, 4,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. With returns a child logger whose
// fields are attached to every subsequent record.
type Logger interface {
	// Debug logs detailed diagnostic information, usually disabled in production.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs a potentially problematic situation that does not stop execution.
	Warn(msg string, fields ...any)

	// Error logs an error condition. If the first field is an error value it is
	// attached as the record's error.
	//
	// Example:
	//   logger.Error("fit failed",
	//       err,
	//       log.OperationKey, log.OperationFit,
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip building expensive fields.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
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

// LoggerProvider creates and configures loggers. Swap the global provider with
// SetProvider, for example to capture logs in tests.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
