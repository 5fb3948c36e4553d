package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return &Logger{zlog: zerolog.New(buf).With().Timestamp().Logger()}
}

func TestNewWithWriter_DevelopmentMode(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("development", &buf)
	require.NotNil(t, logger)

	logger.Debug("loading warehouse day", map[string]interface{}{"day": "2022-05-01"})

	output := buf.String()
	assert.Contains(t, output, "loading warehouse day")
	assert.Contains(t, output, "2022-05-01")
	// console output is not JSON
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestNewWithWriter_ProductionMode(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	logger.Debug("hidden", nil)
	assert.Empty(t, buf.String(), "debug is below the production level")

	logger.Info("shown", nil)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew(t *testing.T) {
	assert.NotNil(t, New("production"))
}

func TestDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Debug("debug message", map[string]interface{}{
		"key1": "value1",
		"key2": 42,
	})

	output := buf.String()
	assert.Contains(t, output, "debug message")
	assert.Contains(t, output, "value1")
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Info("session started", map[string]interface{}{
		"day":    "2022-05-01",
		"groups": 12,
	})

	output := buf.String()
	assert.Contains(t, output, "session started")
	assert.Contains(t, output, `"groups":12`)
}

func TestWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Warn("rejected warehouse row", map[string]interface{}{
		"reason": "latitude out of range",
	})

	output := buf.String()
	assert.Contains(t, output, "rejected warehouse row")
	assert.Contains(t, output, "latitude out of range")
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Error("query failed", errors.New("connection refused"), map[string]interface{}{
		"context": "warehouse",
	})

	output := buf.String()
	assert.Contains(t, output, "query failed")
	assert.Contains(t, output, "connection refused")
	assert.Contains(t, output, "warehouse")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.With(map[string]interface{}{
		"day":  "2022-05-01",
		"page": 3,
	}).Info("test message", nil)

	output := buf.String()
	assert.Contains(t, output, "2022-05-01")
	assert.Contains(t, output, `"page":3`)
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.WithRequestID("req-12345").Info("request received", nil)

	assert.Contains(t, buf.String(), `"request_id":"req-12345"`)
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Component("review").Info("page changed", nil)

	assert.Contains(t, buf.String(), `"component":"review"`)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error("discarded", errors.New("boom"), map[string]interface{}{"k": "v"})
	})
}

func TestNilFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Info("message with nil fields", nil)

	assert.True(t, strings.Contains(buf.String(), "message with nil fields"))
}
