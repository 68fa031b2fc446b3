// Package logging wraps log/slog behind the small Logger interface the servers take.
package logging

// file: internal/logging/logger.go

import (
	"context"
	"sync/atomic"
)

// Logger takes a message sentence plus key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// WithContext attaches request-scoped values such as the request ID.
	WithContext(ctx context.Context) Logger
	WithField(key string, value any) Logger
}

// NoopLogger discards everything.
type NoopLogger struct{}

func (l *NoopLogger) Debug(string, ...any)               {}
func (l *NoopLogger) Info(string, ...any)                {}
func (l *NoopLogger) Warn(string, ...any)                {}
func (l *NoopLogger) Error(string, ...any)               {}
func (l *NoopLogger) WithContext(context.Context) Logger { return l }
func (l *NoopLogger) WithField(string, any) Logger       { return l }

var (
	noop Logger = &NoopLogger{}

	// defaultLogger backs GetLogger; main installs the slog logger at startup.
	defaultLogger atomic.Pointer[Logger]
)

// GetNoopLogger returns the shared no-op logger.
func GetNoopLogger() Logger {
	return noop
}

// SetDefaultLogger replaces the logger GetLogger derives from. Nil is ignored.
func SetDefaultLogger(logger Logger) {
	if logger != nil {
		defaultLogger.Store(&logger)
	}
}

// GetLogger returns the default logger with a "component" field set to name.
func GetLogger(name string) Logger {
	base := noop
	if l := defaultLogger.Load(); l != nil {
		base = *l
	}
	return base.WithField("component", name)
}

// OrNoop returns logger, or the no-op logger when logger is nil.
func OrNoop(logger Logger) Logger {
	if logger == nil {
		return noop
	}
	return logger
}
