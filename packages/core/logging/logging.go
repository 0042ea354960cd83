// Package logging builds the structured logger used by the runner and CLI.
//
// The level and format come from HITCALL_LOG_LEVEL and HITCALL_LOG_FORMAT.
// Logs go to stderr so they never mix with reporter output on stdout.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format represents the log output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Field keys shared by every log line about a call.
const (
	SuiteKey    = "suite"
	CallKey     = "call"
	MethodKey   = "method"
	URLKey      = "url"
	StatusKey   = "status"
	DurationKey = "duration_ms"
	RunIDKey    = "run_id"
)

// Config holds the logging configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level  string
	Format Format
	Output io.Writer
	// AddSource adds source file and line to every record.
	AddSource bool
}

// DefaultConfig logs warnings and errors as text to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  "warn",
		Format: FormatText,
		Output: os.Stderr,
	}
}

// FromEnv creates a Config from environment variables:
//   - HITCALL_LOG_LEVEL: debug, info, warn, error (default: warn)
//   - HITCALL_LOG_FORMAT: text, json (default: text)
//   - HITCALL_LOG_SOURCE: 1 to add source file and line
func FromEnv() *Config {
	cfg := DefaultConfig()

	if level := os.Getenv("HITCALL_LOG_LEVEL"); level != "" {
		cfg.Level = strings.ToLower(level)
	}
	if format := os.Getenv("HITCALL_LOG_FORMAT"); format != "" {
		cfg.Format = Format(strings.ToLower(format))
	}
	if os.Getenv("HITCALL_LOG_SOURCE") == "1" {
		cfg.AddSource = true
	}

	return cfg
}

// New creates a new structured logger from the given configuration.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

// ParseLevel converts a level name to slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
