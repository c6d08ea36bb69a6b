// Package log provides JSON-lines structured logging for frostwall.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelInfo,
	}
}

// New creates a JSON-lines structured logger. Lines look like:
//
//	{"ts":"2024-01-15T10:30:00Z","level":"INFO","msg":"pairing recorded","screens":2}
//
// Levels:
//   - debug: ranking breakdowns (enabled via FROSTWALL_DEBUG=1)
//   - info: pairings applied, history rebuilt
//   - warn: persistence failures the session survives
//   - error: failures that abort a command
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Key = "ts"
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(output, opts))
}

// NewFromEnv creates a logger configured from environment variables.
// FROSTWALL_DEBUG=1 enables debug logging.
func NewFromEnv() *slog.Logger {
	cfg := DefaultConfig()
	if os.Getenv("FROSTWALL_DEBUG") == "1" {
		cfg.Debug = true
	}
	return New(cfg)
}

// ParseLevel maps a config level name to a slog level. Unknown names map
// to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OpenFile opens path for appending, creating its directory. The caller
// closes the returned file.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// LogSaveFailed logs a pairing history save that failed after the
// in-memory state was already updated.
func LogSaveFailed(logger *slog.Logger, operation string, err error) {
	logger.Warn("pairing history save failed",
		"operation", operation,
		"error", err,
	)
}

// LogLoadRecovered logs a history load that failed and was replaced by an
// empty history.
func LogLoadRecovered(logger *slog.Logger, path string, err error) {
	logger.Warn("pairing history unreadable; starting empty",
		"path", path,
		"error", err,
	)
}

// LogRebuild logs an affinity table rebuild.
func LogRebuild(logger *slog.Logger, records, affinities int) {
	logger.Info("affinity table rebuilt",
		"records", records,
		"affinities", affinities,
	)
}

// LogPairingApplied logs an assignment sent to the setter.
func LogPairingApplied(logger *slog.Logger, assignment map[string]string, manual bool) {
	logger.Info("pairing applied",
		"screens", len(assignment),
		"manual", manual,
	)
}

// LogSetterFailed logs a setter invocation that failed for one screen.
func LogSetterFailed(logger *slog.Logger, screen, path string, err error) {
	logger.Error("wallpaper setter failed",
		"screen", screen,
		"path", path,
		"error", err,
	)
}
