package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/frostwall/internal/pairing/match"
	"github.com/runger/frostwall/internal/wallpaper"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	assert.True(t, cfg.Pairing.Enabled)
	assert.False(t, cfg.Pairing.AutoApply)
	assert.Equal(t, 0.7, cfg.Pairing.AutoApplyThreshold)
	assert.Equal(t, 5, cfg.Pairing.UndoWindowSecs)
	assert.Equal(t, 1000, cfg.Pairing.MaxHistoryRecords)
	assert.Equal(t, "soft", cfg.Pairing.StyleMode)
	assert.Equal(t, "file", cfg.Pairing.HistoryBackend)
	assert.Equal(t, match.DefaultWeights(), cfg.Pairing.Weights.MatchWeights())
	assert.Equal(t, "swww img", cfg.Display.SetterCommand)
	assert.Equal(t, "crop", cfg.Display.ResizeMode)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.Equal(t, match.ModeSoft, cfg.Mode())
	assert.Equal(t, wallpaper.MatchFlexible, cfg.MatchMode())
	assert.Equal(t, 5*time.Second, cfg.UndoWindow())
	assert.NoError(t, cfg.Validate())
}

func TestConfigGet(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	tests := []struct {
		key      string
		expected string
	}{
		{"pairing.enabled", "true"},
		{"pairing.auto_apply", "false"},
		{"pairing.auto_apply_threshold", "0.7"},
		{"pairing.undo_window_secs", "5"},
		{"pairing.max_history_records", "1000"},
		{"pairing.style_mode", "soft"},
		{"pairing.preview_alternatives", "5"},
		{"pairing.history_backend", "file"},
		{"pairing.history_path", ""},
		{"pairing.weights.visual", "5"},
		{"pairing.weights.repetition_penalty", "1"},
		{"display.setter_command", "swww img"},
		{"display.transition_type", "fade"},
		{"display.transition_duration", "1"},
		{"display.transition_fps", "60"},
		{"display.fill_color", "000000ff"},
		{"display.match_mode", "flexible"},
		{"log.level", "info"},
		{"log.file", ""},
	}

	for _, tt := range tests {
		got, err := cfg.Get(tt.key)
		require.NoError(t, err, tt.key)
		assert.Equal(t, tt.expected, got, tt.key)
	}
}

func TestConfigGet_Invalid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	for _, key := range []string{"pairing", "nope.enabled", "pairing.nope", "pairing.weights.nope", "display.", "log.nope"} {
		_, err := cfg.Get(key)
		assert.Error(t, err, key)
	}
}

func TestConfigSet(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	tests := []struct {
		key   string
		value string
	}{
		{"pairing.enabled", "false"},
		{"pairing.auto_apply", "true"},
		{"pairing.auto_apply_threshold", "0.55"},
		{"pairing.undo_window_secs", "10"},
		{"pairing.max_history_records", "50"},
		{"pairing.style_mode", "strict"},
		{"pairing.preview_alternatives", "8"},
		{"pairing.history_backend", "sqlite"},
		{"pairing.catalog_path", "/tmp/wallpapers.json"},
		{"pairing.weights.semantic", "2.5"},
		{"display.setter_command", "swww img --no-resize"},
		{"display.transition_fps", "144"},
		{"display.resize_mode", "fit"},
		{"display.fill_color", "1e1e2e"},
		{"display.match_mode", "all"},
		{"log.level", "debug"},
	}

	for _, tt := range tests {
		require.NoError(t, cfg.Set(tt.key, tt.value), tt.key)
		got, err := cfg.Get(tt.key)
		require.NoError(t, err)
		assert.Equal(t, tt.value, got, tt.key)
	}

	assert.Equal(t, match.ModeStrict, cfg.Mode())
	assert.Equal(t, 2.5, cfg.Pairing.Weights.MatchWeights().Semantic)
	assert.NoError(t, cfg.Validate())
}

func TestConfigSet_NormalizesStyleMode(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Set("pairing.style_mode", "STRICT"))
	assert.Equal(t, "strict", cfg.Pairing.StyleMode)
}

func TestConfigSet_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key   string
		value string
	}{
		{"pairing.enabled", "maybe"},
		{"pairing.auto_apply_threshold", "1.5"},
		{"pairing.auto_apply_threshold", "abc"},
		{"pairing.undo_window_secs", "-1"},
		{"pairing.max_history_records", "0"},
		{"pairing.style_mode", "loose"},
		{"pairing.preview_alternatives", "0"},
		{"pairing.history_backend", "redis"},
		{"pairing.weights.visual", "-1"},
		{"pairing.weights.bogus", "1"},
		{"display.setter_command", "  "},
		{"display.transition_fps", "0"},
		{"display.resize_mode", "zoom"},
		{"display.fill_color", "red"},
		{"display.match_mode", "loose"},
		{"log.level", "verbose"},
		{"invalid", "x"},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		assert.Error(t, cfg.Set(tt.key, tt.value), "%s=%s", tt.key, tt.value)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold", func(c *Config) { c.Pairing.AutoApplyThreshold = -0.1 }},
		{"undo window", func(c *Config) { c.Pairing.UndoWindowSecs = -1 }},
		{"max records", func(c *Config) { c.Pairing.MaxHistoryRecords = 0 }},
		{"style mode", func(c *Config) { c.Pairing.StyleMode = "wild" }},
		{"backend", func(c *Config) { c.Pairing.HistoryBackend = "postgres" }},
		{"weight", func(c *Config) { c.Pairing.Weights.Harmony = -2 }},
		{"setter", func(c *Config) { c.Display.SetterCommand = "" }},
		{"resize", func(c *Config) { c.Display.ResizeMode = "tile" }},
		{"fill", func(c *Config) { c.Display.FillColor = "zzzzzz" }},
		{"match mode", func(c *Config) { c.Display.MatchMode = "fuzzy" }},
		{"log level", func(c *Config) { c.Log.Level = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_ClampsPreviewAlternatives(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Pairing.PreviewAlternatives = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Pairing.PreviewAlternatives)

	cfg.Pairing.PreviewAlternatives = 100
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20, cfg.Pairing.PreviewAlternatives)
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Pairing.AutoApply = true
	cfg.Pairing.StyleMode = "off"
	cfg.Pairing.Weights.Tag = 3.5
	cfg.Display.TransitionType = "wipe"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, loaded.Pairing.AutoApply)
	assert.Equal(t, match.ModeOff, loaded.Mode())
	assert.Equal(t, 3.5, loaded.Pairing.Weights.Tag)
	assert.Equal(t, "wipe", loaded.Display.TransitionType)
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pairing:\n  undo_window_secs: 9\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Pairing.UndoWindowSecs)
	assert.Equal(t, 0.7, cfg.Pairing.AutoApplyThreshold)
	assert.Equal(t, "swww img", cfg.Display.SetterCommand)
}

func TestLoadFromFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("pairing: [unclosed"), 0644))
	_, err := LoadFromFile(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("log:\n  level: loud\n"), 0644))
	_, err = LoadFromFile(invalid)
	assert.Error(t, err)
}

func TestLoadFromFile_MissingAppliesEnv(t *testing.T) {
	t.Setenv("FROSTWALL_DEBUG", "1")
	t.Setenv("FROSTWALL_LOG_LEVEL", "")
	t.Setenv("FROSTWALL_STYLE_MODE", "strict")

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, match.ModeStrict, cfg.Mode())
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("FROSTWALL_DEBUG", "")
	t.Setenv("FROSTWALL_LOG_LEVEL", "warn")
	t.Setenv("FROSTWALL_STYLE_MODE", "bogus")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "soft", cfg.Pairing.StyleMode)
}

func TestListKeys_AllGettable(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	for _, key := range ListKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}
