package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runger/frostwall/internal/config"
	"github.com/runger/frostwall/internal/setter"
	"github.com/runger/frostwall/internal/wallpaper"
)

// testEnv points every frostwall directory at a temp dir and resets the
// package-level flag variables.
func testEnv(t *testing.T) *config.Paths {
	t.Helper()

	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root+"/config")
	t.Setenv("XDG_DATA_HOME", root+"/data")
	t.Setenv("XDG_CACHE_HOME", root+"/cache")
	t.Setenv("NO_COLOR", "1")
	t.Setenv("COLUMNS", "120")
	t.Setenv("FROSTWALL_DEBUG", "")
	t.Setenv("FROSTWALL_LOG_LEVEL", "")
	t.Setenv("FROSTWALL_STYLE_MODE", "")

	withPairGlobals(t, pairGlobals{affinityLimit: 10})
	return config.DefaultPaths()
}

type pairGlobals struct {
	configPath    string
	catalogPath   string
	historyPath   string
	styleFlag     string
	matchFlag     string
	screen        string
	target        string
	limit         int
	json          bool
	all           bool
	dryRun        bool
	affinityLimit int
	recordAuto    bool
	migrateTo     string
}

func withPairGlobals(t *testing.T, g pairGlobals) {
	t.Helper()
	old := pairGlobals{
		configPath:    configPath,
		catalogPath:   catalogPath,
		historyPath:   historyPath,
		styleFlag:     styleFlag,
		matchFlag:     matchFlag,
		screen:        pairScreen,
		target:        suggestTarget,
		limit:         suggestLimit,
		json:          suggestJSON,
		all:           applyAll,
		dryRun:        applyDryRun,
		affinityLimit: affinityLimit,
		recordAuto:    recordAuto,
		migrateTo:     migrateTo,
	}
	set := func(g pairGlobals) {
		configPath = g.configPath
		catalogPath = g.catalogPath
		historyPath = g.historyPath
		styleFlag = g.styleFlag
		matchFlag = g.matchFlag
		pairScreen = g.screen
		suggestTarget = g.target
		suggestLimit = g.limit
		suggestJSON = g.json
		applyAll = g.all
		applyDryRun = g.dryRun
		affinityLimit = g.affinityLimit
		recordAuto = g.recordAuto
		migrateTo = g.migrateTo
	}
	set(g)
	t.Cleanup(func() { set(old) })
}

// testCatalog has two landscape screens, three landscape wallpapers and
// one portrait wallpaper.
func testCatalog() *wallpaper.Catalog {
	return &wallpaper.Catalog{
		SourceDir: "/w",
		Screens: []wallpaper.Screen{
			{Name: "DP-1", Width: 2560, Height: 1440, AspectCategory: wallpaper.Landscape},
			{Name: "HDMI-A-1", Width: 1920, Height: 1080, AspectCategory: wallpaper.Landscape},
		},
		Wallpapers: []wallpaper.Wallpaper{
			{
				Path: "/w/forest.png", Width: 3840, Height: 2160, AspectCategory: wallpaper.Landscape,
				Colors: []string{"#1f4d2b", "#2e6b3a", "#a3c48e"}, Tags: []string{"nature", "forest"},
			},
			{
				Path: "/w/moss.png", Width: 3840, Height: 2160, AspectCategory: wallpaper.Landscape,
				Colors: []string{"#27553a", "#3b7a4c", "#b5d1a0"}, Tags: []string{"nature"},
			},
			{
				Path: "/w/neon.png", Width: 2560, Height: 1440, AspectCategory: wallpaper.Landscape,
				Colors: []string{"#ff2bd6", "#2b1bff", "#101020"}, Tags: []string{"city", "neon"},
			},
			{
				Path: "/w/tall.png", Width: 1080, Height: 1920, AspectCategory: wallpaper.Portrait,
				Colors: []string{"#1f4d2b"}, Tags: []string{"nature"},
			},
		},
	}
}

func writeCatalog(t *testing.T, paths *config.Paths) {
	t.Helper()
	require.NoError(t, testCatalog().SaveToFile(paths.CatalogFile()))
}

type fakeSetter struct {
	mu    sync.Mutex
	calls map[string]string
	fail  map[string]bool
}

func (f *fakeSetter) Set(_ context.Context, screen, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[screen] {
		return io.ErrUnexpectedEOF
	}
	if f.calls == nil {
		f.calls = make(map[string]string)
	}
	f.calls[screen] = path
	return nil
}

func withFakeSetter(t *testing.T) *fakeSetter {
	t.Helper()
	fake := &fakeSetter{}
	old := newSetter
	newSetter = func(*config.Config, *slog.Logger) (setter.Setter, error) { return fake, nil }
	t.Cleanup(func() { newSetter = old })
	return fake
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() failed: %v", err)
	}
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()
	_ = w.Close()
	os.Stdout = old
	out := <-outC
	_ = r.Close()
	return out
}
