package logging

// file: internal/logging/slog.go

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log levels accepted by InitLogging and SetLevel.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// levelVar is shared by every slog-backed logger so SetLevel takes effect everywhere.
var levelVar = new(slog.LevelVar)

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

// WithContext attaches the request ID stored in ctx, if any.
func (s *slogLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return s
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return &slogLogger{l: s.l.With("requestID", id)}
	}
	return s
}

func (s *slogLogger) WithField(key string, value any) Logger {
	return &slogLogger{l: s.l.With(key, value)}
}

// InitLogging installs a JSON slog logger writing to w as the default logger.
// A nil writer logs to stderr; stdout is reserved for protocol frames.
func InitLogging(level slog.Level, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	levelVar.Set(level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelVar})
	SetDefaultLogger(NewSlogLogger(slog.New(handler)))
}

// SetupDefaultLogger initializes stderr logging from a textual level name.
func SetupDefaultLogger(level string) {
	InitLogging(ParseLevel(level), os.Stderr)
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel changes the level of all slog-backed loggers.
func SetLevel(level slog.Level) {
	levelVar.Set(level)
}

// IsDebugEnabled reports whether debug messages are currently emitted.
func IsDebugEnabled() bool {
	return levelVar.Level() <= LevelDebug
}

type requestIDKey struct{}

// ContextWithRequestID returns a context carrying id for WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
