package config

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaths(t *testing.T) {
	t.Parallel()

	paths := DefaultPaths()

	assert.NotEmpty(t, paths.ConfigDir)
	assert.NotEmpty(t, paths.DataDir)
	assert.NotEmpty(t, paths.CacheDir)
}

func TestDefaultPaths_XDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG test not applicable on Windows")
	}

	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")

	paths := DefaultPaths()

	assert.Equal(t, "/custom/config/frostwall", paths.ConfigDir)
	assert.Equal(t, "/custom/data/frostwall", paths.DataDir)
	assert.Equal(t, "/custom/cache/frostwall", paths.CacheDir)
	assert.Equal(t, "/custom/config/frostwall/config.yaml", paths.ConfigFile())
	assert.Equal(t, "/custom/cache/frostwall/pairing_history.json", paths.PairingHistoryFile())
	assert.Equal(t, "/custom/cache/frostwall/pairing_history.db", paths.PairingDatabaseFile())
	assert.Equal(t, "/custom/cache/frostwall/wallpapers.json", paths.CatalogFile())
	assert.Equal(t, "/custom/data/frostwall/logs/frostwall.log", paths.LogFile())
}

func TestPaths_HistoryFile(t *testing.T) {
	t.Parallel()

	p := &Paths{CacheDir: "/c"}
	cfg := DefaultConfig()

	assert.Equal(t, filepath.Join("/c", "pairing_history.json"), p.HistoryFile(cfg))

	cfg.Pairing.HistoryBackend = "sqlite"
	assert.Equal(t, filepath.Join("/c", "pairing_history.db"), p.HistoryFile(cfg))

	cfg.Pairing.HistoryPath = "/elsewhere/h.db"
	assert.Equal(t, "/elsewhere/h.db", p.HistoryFile(cfg))

	assert.Equal(t, filepath.Join("/c", "wallpapers.json"), p.Catalog(cfg))
	cfg.Pairing.CatalogPath = "/x.json"
	assert.Equal(t, "/x.json", p.Catalog(cfg))
}

func TestPaths_EnsureDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	p := &Paths{
		ConfigDir: filepath.Join(root, "config"),
		DataDir:   filepath.Join(root, "data"),
		CacheDir:  filepath.Join(root, "cache"),
	}
	require.NoError(t, p.EnsureDirectories())
	assert.DirExists(t, p.LogDir())
	assert.DirExists(t, p.CacheDir)
}
