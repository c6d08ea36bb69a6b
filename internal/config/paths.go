// Package config provides configuration management for frostwall.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds the directories frostwall reads and writes.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/frostwall)
	ConfigDir string

	// DataDir is the directory for data files (~/.local/share/frostwall)
	DataDir string

	// CacheDir holds the wallpaper catalog and pairing history
	// (~/.cache/frostwall)
	CacheDir string
}

// DefaultPaths returns the default paths following the XDG base directory layout.
// On Windows, it uses %APPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}

		return &Paths{
			ConfigDir: filepath.Join(appData, "frostwall"),
			DataDir:   filepath.Join(localAppData, "frostwall"),
			CacheDir:  filepath.Join(localAppData, "frostwall", "cache"),
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		cacheHome = filepath.Join(home, ".cache")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, "frostwall"),
		DataDir:   filepath.Join(dataHome, "frostwall"),
		CacheDir:  filepath.Join(cacheHome, "frostwall"),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// PairingHistoryFile returns the path to the JSON pairing history.
func (p *Paths) PairingHistoryFile() string {
	return filepath.Join(p.CacheDir, "pairing_history.json")
}

// PairingDatabaseFile returns the path to the SQLite pairing history.
func (p *Paths) PairingDatabaseFile() string {
	return filepath.Join(p.CacheDir, "pairing_history.db")
}

// CatalogFile returns the path to the scanned wallpaper catalog.
func (p *Paths) CatalogFile() string {
	return filepath.Join(p.CacheDir, "wallpapers.json")
}

// LogDir returns the path to the log directory.
func (p *Paths) LogDir() string {
	return filepath.Join(p.DataDir, "logs")
}

// LogFile returns the path to the default log file.
func (p *Paths) LogFile() string {
	return filepath.Join(p.LogDir(), "frostwall.log")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir, p.CacheDir, p.LogDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// HistoryFile resolves the pairing history location for cfg, honouring
// pairing.history_path and the configured backend.
func (p *Paths) HistoryFile(cfg *Config) string {
	if cfg.Pairing.HistoryPath != "" {
		return cfg.Pairing.HistoryPath
	}
	if cfg.Pairing.HistoryBackend == "sqlite" {
		return p.PairingDatabaseFile()
	}
	return p.PairingHistoryFile()
}

// Catalog resolves the wallpaper catalog location for cfg.
func (p *Paths) Catalog(cfg *Config) string {
	if cfg.Pairing.CatalogPath != "" {
		return cfg.Pairing.CatalogPath
	}
	return p.CatalogFile()
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}
