package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("HITCALL_LOG_LEVEL", "DEBUG")
	t.Setenv("HITCALL_LOG_FORMAT", "json")
	t.Setenv("HITCALL_LOG_SOURCE", "1")

	cfg := FromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.AddSource)
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("HITCALL_LOG_LEVEL", "")
	t.Setenv("HITCALL_LOG_FORMAT", "")
	t.Setenv("HITCALL_LOG_SOURCE", "")

	cfg := FromEnv()
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, FormatText, cfg.Format)
	assert.False(t, cfg.AddSource)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})

	logger.Debug("call finished", SuiteKey, "users", StatusKey, 201)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "call finished", rec["msg"])
	assert.Equal(t, "users", rec[SuiteKey])
	assert.Equal(t, 201.0, rec[StatusKey])
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "warn", Format: FormatText, Output: &buf})

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_NilConfig(t *testing.T) {
	assert.NotNil(t, New(nil))
	assert.NotNil(t, Discard())
}
