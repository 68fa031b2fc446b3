// internal/logging/logger_test.go
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger(t *testing.T) {
	logger := GetLogger("test")
	require.NotNil(t, logger, "GetLogger returned nil")
}

func TestLogOutput(t *testing.T) {
	var buf bytes.Buffer
	InitLogging(LevelDebug, &buf)
	t.Cleanup(func() { SetDefaultLogger(GetNoopLogger()) })

	logger := GetLogger("test_component")
	logger.Info("test message", "key1", "value1", "key2", 123)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry), "Failed to parse log entry.")

	assert.Equal(t, "test message", logEntry["msg"])
	assert.Equal(t, "test_component", logEntry["component"])
	assert.Equal(t, "value1", logEntry["key1"])
	assert.EqualValues(t, 123, logEntry["key2"])
}

func TestIsDebugEnabled(t *testing.T) {
	SetLevel(LevelInfo)
	assert.False(t, IsDebugEnabled(), "IsDebugEnabled should return false when level is INFO")

	SetLevel(LevelDebug)
	assert.True(t, IsDebugEnabled(), "IsDebugEnabled should return true when level is DEBUG")
}

func TestWithContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitLogging(LevelInfo, &buf)
	t.Cleanup(func() { SetDefaultLogger(GetNoopLogger()) })

	ctx := ContextWithRequestID(context.Background(), "req-42")
	GetLogger("http").WithContext(ctx).Info("handled.")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "req-42", logEntry["requestID"])
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestNoopLogger_ReturnsItself(t *testing.T) {
	l := GetNoopLogger()
	assert.Same(t, l, l.WithField("k", "v"))
	assert.Same(t, l, l.WithContext(context.Background()))
	assert.Same(t, l, OrNoop(nil))
}

func TestSetDefaultLogger_IgnoresNil(t *testing.T) {
	var buf bytes.Buffer
	InitLogging(LevelInfo, &buf)
	t.Cleanup(func() { SetDefaultLogger(GetNoopLogger()) })

	SetDefaultLogger(nil)
	GetLogger("kept").Info("still logging.")
	assert.Contains(t, buf.String(), `"component":"kept"`)
}
