package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/runger/frostwall/internal/pairing/match"
	"github.com/runger/frostwall/internal/wallpaper"
)

// Config represents the frostwall configuration.
type Config struct {
	Pairing PairingConfig `yaml:"pairing"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
}

// PairingConfig holds the pairing engine settings.
type PairingConfig struct {
	Enabled             bool          `yaml:"enabled"`              // Suggest pairings at all
	AutoApply           bool          `yaml:"auto_apply"`           // Apply the best match to other screens without asking
	AutoApplyThreshold  float64       `yaml:"auto_apply_threshold"` // Minimum match confidence for auto-apply
	UndoWindowSecs      int           `yaml:"undo_window_secs"`     // How long an applied pairing can be undone
	MaxHistoryRecords   int           `yaml:"max_history_records"`  // Event log bound
	StyleMode           string        `yaml:"style_mode"`           // off, soft or strict
	PreviewAlternatives int           `yaml:"preview_alternatives"` // Matches listed per screen in the preview
	HistoryBackend      string        `yaml:"history_backend"`      // file or sqlite
	HistoryPath         string        `yaml:"history_path"`         // Overrides the default history location
	CatalogPath         string        `yaml:"catalog_path"`         // Overrides the default wallpaper catalog
	Weights             WeightsConfig `yaml:"weights"`
}

// WeightsConfig holds the base scoring weights.
type WeightsConfig struct {
	ScreenContext     float64 `yaml:"screen_context"`
	Visual            float64 `yaml:"visual"`
	Harmony           float64 `yaml:"harmony"`
	Tag               float64 `yaml:"tag"`
	Semantic          float64 `yaml:"semantic"`
	RepetitionPenalty float64 `yaml:"repetition_penalty"`
}

// DisplayConfig holds the wallpaper setter settings.
type DisplayConfig struct {
	SetterCommand      string  `yaml:"setter_command"`      // Command prefix, shell-quoted
	TransitionType     string  `yaml:"transition_type"`     // e.g. fade, wipe, grow
	TransitionDuration float64 `yaml:"transition_duration"` // Seconds
	TransitionFPS      int     `yaml:"transition_fps"`
	ResizeMode         string  `yaml:"resize_mode"` // crop, fit, no or stretch
	FillColor          string  `yaml:"fill_color"`  // RRGGBB or RRGGBBAA
	MatchMode          string  `yaml:"match_mode"`  // strict, flexible or all
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (empty = <data dir>/logs/frostwall.log)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	w := match.DefaultWeights()
	return &Config{
		Pairing: PairingConfig{
			Enabled:             true,
			AutoApply:           false,
			AutoApplyThreshold:  0.7,
			UndoWindowSecs:      5,
			MaxHistoryRecords:   1000,
			StyleMode:           match.DefaultMode.String(),
			PreviewAlternatives: 5,
			HistoryBackend:      "file",
			Weights: WeightsConfig{
				ScreenContext:     w.ScreenContext,
				Visual:            w.Visual,
				Harmony:           w.Harmony,
				Tag:               w.Tag,
				Semantic:          w.Semantic,
				RepetitionPenalty: w.RepetitionPenalty,
			},
		},
		Display: DisplayConfig{
			SetterCommand:      "swww img",
			TransitionType:     "fade",
			TransitionDuration: 1.0,
			TransitionFPS:      60,
			ResizeMode:         "crop",
			FillColor:          "000000ff",
			MatchMode:          wallpaper.MatchFlexible.String(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFromFile(DefaultPaths().ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveToFile(DefaultPaths().ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Mode returns the configured style mode. An invalid value falls back to
// the default mode.
func (c *Config) Mode() match.Mode {
	m, err := match.ParseMode(c.Pairing.StyleMode)
	if err != nil {
		return match.DefaultMode
	}
	return m
}

// MatchMode returns the configured screen match mode. An invalid value
// falls back to flexible.
func (c *Config) MatchMode() wallpaper.MatchMode {
	m, err := wallpaper.ParseMatchMode(c.Display.MatchMode)
	if err != nil {
		return wallpaper.MatchFlexible
	}
	return m
}

// UndoWindow returns the undo window as a duration.
func (c *Config) UndoWindow() time.Duration {
	return time.Duration(c.Pairing.UndoWindowSecs) * time.Second
}

// MatchWeights converts the configured weights for the match engine.
func (w WeightsConfig) MatchWeights() match.Weights {
	return match.Weights{
		ScreenContext:     w.ScreenContext,
		Visual:            w.Visual,
		Harmony:           w.Harmony,
		Tag:               w.Tag,
		Semantic:          w.Semantic,
		RepetitionPenalty: w.RepetitionPenalty,
	}
}

// Get retrieves a configuration value by dot-separated key, for example
// "pairing.style_mode" or "pairing.weights.visual".
func (c *Config) Get(key string) (string, error) {
	section, field, ok := strings.Cut(key, ".")
	if !ok || field == "" {
		return "", errors.New("key must be in format 'section.key'")
	}

	switch section {
	case "pairing":
		return c.getPairingField(field)
	case "display":
		return c.getDisplayField(field)
	case "log":
		return c.getLogField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	section, field, ok := strings.Cut(key, ".")
	if !ok || field == "" {
		return errors.New("key must be in format 'section.key'")
	}

	switch section {
	case "pairing":
		return c.setPairingField(field, value)
	case "display":
		return c.setDisplayField(field, value)
	case "log":
		return c.setLogField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (c *Config) getPairingField(field string) (string, error) {
	p := &c.Pairing
	if name, ok := strings.CutPrefix(field, "weights."); ok {
		ptr := p.Weights.field(name)
		if ptr == nil {
			return "", fmt.Errorf("unknown field: pairing.%s", field)
		}
		return formatFloat(*ptr), nil
	}

	switch field {
	case "enabled":
		return strconv.FormatBool(p.Enabled), nil
	case "auto_apply":
		return strconv.FormatBool(p.AutoApply), nil
	case "auto_apply_threshold":
		return formatFloat(p.AutoApplyThreshold), nil
	case "undo_window_secs":
		return strconv.Itoa(p.UndoWindowSecs), nil
	case "max_history_records":
		return strconv.Itoa(p.MaxHistoryRecords), nil
	case "style_mode":
		return p.StyleMode, nil
	case "preview_alternatives":
		return strconv.Itoa(p.PreviewAlternatives), nil
	case "history_backend":
		return p.HistoryBackend, nil
	case "history_path":
		return p.HistoryPath, nil
	case "catalog_path":
		return p.CatalogPath, nil
	default:
		return "", fmt.Errorf("unknown field: pairing.%s", field)
	}
}

func (c *Config) setPairingField(field, value string) error {
	p := &c.Pairing
	if name, ok := strings.CutPrefix(field, "weights."); ok {
		ptr := p.Weights.field(name)
		if ptr == nil {
			return fmt.Errorf("unknown field: pairing.%s", field)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", field, err)
		}
		if v < 0 {
			return fmt.Errorf("invalid %s: must be non-negative", field)
		}
		*ptr = v
		return nil
	}

	switch field {
	case "enabled":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for enabled: %w", err)
		}
		p.Enabled = v
	case "auto_apply":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for auto_apply: %w", err)
		}
		p.AutoApply = v
	case "auto_apply_threshold":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for auto_apply_threshold: %w", err)
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("invalid auto_apply_threshold: must be between 0 and 1")
		}
		p.AutoApplyThreshold = v
	case "undo_window_secs":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for undo_window_secs: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid undo_window_secs: must be non-negative")
		}
		p.UndoWindowSecs = v
	case "max_history_records":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_history_records: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid max_history_records: must be positive")
		}
		p.MaxHistoryRecords = v
	case "style_mode":
		m, err := match.ParseMode(value)
		if err != nil {
			return err
		}
		p.StyleMode = m.String()
	case "preview_alternatives":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for preview_alternatives: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid preview_alternatives: must be positive")
		}
		p.PreviewAlternatives = v
	case "history_backend":
		if !isValidHistoryBackend(value) {
			return fmt.Errorf("invalid history_backend: must be file or sqlite")
		}
		p.HistoryBackend = value
	case "history_path":
		p.HistoryPath = value
	case "catalog_path":
		p.CatalogPath = value
	default:
		return fmt.Errorf("unknown field: pairing.%s", field)
	}
	return nil
}

// field returns a pointer to the named weight, or nil.
func (w *WeightsConfig) field(name string) *float64 {
	switch name {
	case "screen_context":
		return &w.ScreenContext
	case "visual":
		return &w.Visual
	case "harmony":
		return &w.Harmony
	case "tag":
		return &w.Tag
	case "semantic":
		return &w.Semantic
	case "repetition_penalty":
		return &w.RepetitionPenalty
	default:
		return nil
	}
}

func (c *Config) getDisplayField(field string) (string, error) {
	d := &c.Display
	switch field {
	case "setter_command":
		return d.SetterCommand, nil
	case "transition_type":
		return d.TransitionType, nil
	case "transition_duration":
		return formatFloat(d.TransitionDuration), nil
	case "transition_fps":
		return strconv.Itoa(d.TransitionFPS), nil
	case "resize_mode":
		return d.ResizeMode, nil
	case "fill_color":
		return d.FillColor, nil
	case "match_mode":
		return d.MatchMode, nil
	default:
		return "", fmt.Errorf("unknown field: display.%s", field)
	}
}

func (c *Config) setDisplayField(field, value string) error {
	d := &c.Display
	switch field {
	case "setter_command":
		if strings.TrimSpace(value) == "" {
			return errors.New("invalid setter_command: must not be empty")
		}
		d.SetterCommand = value
	case "transition_type":
		d.TransitionType = value
	case "transition_duration":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for transition_duration: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid transition_duration: must be non-negative")
		}
		d.TransitionDuration = v
	case "transition_fps":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for transition_fps: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid transition_fps: must be positive")
		}
		d.TransitionFPS = v
	case "resize_mode":
		if !isValidResizeMode(value) {
			return fmt.Errorf("invalid resize_mode: must be crop, fit, no or stretch")
		}
		d.ResizeMode = value
	case "fill_color":
		if !isValidFillColor(value) {
			return fmt.Errorf("invalid fill_color: want RRGGBB or RRGGBBAA hex")
		}
		d.FillColor = value
	case "match_mode":
		m, err := wallpaper.ParseMatchMode(value)
		if err != nil {
			return err
		}
		d.MatchMode = m.String()
	default:
		return fmt.Errorf("unknown field: display.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid level: must be debug, info, warn, or error")
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	p := &c.Pairing
	if p.AutoApplyThreshold < 0 || p.AutoApplyThreshold > 1 {
		return fmt.Errorf("pairing.auto_apply_threshold must be between 0 and 1 (got: %g)", p.AutoApplyThreshold)
	}
	if p.UndoWindowSecs < 0 {
		return errors.New("pairing.undo_window_secs must be >= 0")
	}
	if p.MaxHistoryRecords < 1 {
		return errors.New("pairing.max_history_records must be >= 1")
	}
	if _, err := match.ParseMode(p.StyleMode); err != nil {
		return fmt.Errorf("pairing.style_mode: %w", err)
	}
	if !isValidHistoryBackend(p.HistoryBackend) {
		return fmt.Errorf("pairing.history_backend must be file or sqlite (got: %s)", p.HistoryBackend)
	}
	for _, name := range []string{"screen_context", "visual", "harmony", "tag", "semantic", "repetition_penalty"} {
		if *p.Weights.field(name) < 0 {
			return fmt.Errorf("pairing.weights.%s must be >= 0", name)
		}
	}

	// Clamp preview size to [1, 20]
	if p.PreviewAlternatives < 1 {
		p.PreviewAlternatives = 1
	}
	if p.PreviewAlternatives > 20 {
		p.PreviewAlternatives = 20
	}

	if strings.TrimSpace(c.Display.SetterCommand) == "" {
		return errors.New("display.setter_command must not be empty")
	}
	if !isValidResizeMode(c.Display.ResizeMode) {
		return fmt.Errorf("display.resize_mode must be crop, fit, no, or stretch (got: %s)", c.Display.ResizeMode)
	}
	if !isValidFillColor(c.Display.FillColor) {
		return fmt.Errorf("display.fill_color must be RRGGBB or RRGGBBAA hex (got: %s)", c.Display.FillColor)
	}
	if _, err := wallpaper.ParseMatchMode(c.Display.MatchMode); err != nil {
		return fmt.Errorf("display.match_mode: %w", err)
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidHistoryBackend(backend string) bool {
	switch backend {
	case "file", "sqlite":
		return true
	default:
		return false
	}
}

func isValidResizeMode(mode string) bool {
	switch mode {
	case "crop", "fit", "no", "stretch":
		return true
	default:
		return false
	}
}

func isValidFillColor(s string) bool {
	if len(s) != 6 && len(s) != 8 {
		return false
	}
	_, err := strconv.ParseUint(s, 16, 32)
	return err == nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("FROSTWALL_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("FROSTWALL_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
	if v := os.Getenv("FROSTWALL_STYLE_MODE"); v != "" {
		if m, err := match.ParseMode(v); err == nil {
			c.Pairing.StyleMode = m.String()
		}
	}
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"pairing.enabled",
		"pairing.auto_apply",
		"pairing.auto_apply_threshold",
		"pairing.undo_window_secs",
		"pairing.max_history_records",
		"pairing.style_mode",
		"pairing.preview_alternatives",
		"pairing.history_backend",
		"pairing.history_path",
		"pairing.catalog_path",
		"pairing.weights.screen_context",
		"pairing.weights.visual",
		"pairing.weights.harmony",
		"pairing.weights.tag",
		"pairing.weights.semantic",
		"pairing.weights.repetition_penalty",
		"display.setter_command",
		"display.transition_type",
		"display.transition_duration",
		"display.transition_fps",
		"display.resize_mode",
		"display.fill_color",
		"display.match_mode",
		"log.level",
		"log.file",
	}
}
