package cmd

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/frostwall/internal/config"
	"github.com/runger/frostwall/internal/pairing/history"
	"github.com/runger/frostwall/internal/preview"
	"github.com/runger/frostwall/internal/storage"
)

func loadHistory(t *testing.T, p history.Persister) *history.Store {
	t.Helper()
	opts := history.DefaultOptions()
	opts.Persister = p
	store, err := history.Open(context.Background(), opts)
	require.NoError(t, err)
	return store
}

func TestParseAssignment(t *testing.T) {
	got, err := parseAssignment([]string{"DP-1=/w/a.png", "HDMI-A-1=/w/b=c.png"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"DP-1": "/w/a.png", "HDMI-A-1": "/w/b=c.png"}, got)

	for _, bad := range [][]string{
		{"DP-1"},
		{"=/w/a.png"},
		{"DP-1="},
		{"DP-1=/w/a.png", "DP-1=/w/b.png"},
	} {
		_, err := parseAssignment(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestPairRecord_StatsAffinityClear(t *testing.T) {
	paths := testEnv(t)

	var err error
	captureStdout(t, func() {
		err = runPairRecord(pairRecordCmd, []string{"DP-1=/w/forest.png", "HDMI-A-1=/w/moss.png"})
	})
	require.NoError(t, err)
	captureStdout(t, func() {
		err = runPairRecord(pairRecordCmd, []string{"DP-1=/w/forest.png", "HDMI-A-1=/w/neon.png"})
	})
	require.NoError(t, err)

	store := loadHistory(t, history.NewFilePersister(paths.PairingHistoryFile()))
	assert.Equal(t, 2, store.RecordCount())
	assert.Equal(t, 1, store.AffinityCount())
	assert.True(t, store.Records()[0].Manual)

	out := captureStdout(t, func() { err = runPairStats(pairStatsCmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "Records:        2")
	assert.Contains(t, out, "Affinity pairs: 1")
	assert.Contains(t, out, "Style mode: Soft")
	assert.Contains(t, out, "Pairing is enabled")
	assert.Contains(t, out, "Auto-apply is disabled")

	out = captureStdout(t, func() { err = runPairAffinity(pairAffinityCmd, []string{"/w/forest.png"}) })
	require.NoError(t, err)
	assert.Contains(t, out, "/w/moss.png")
	assert.NotContains(t, out, "/w/neon.png")

	out = captureStdout(t, func() { err = runPairAffinity(pairAffinityCmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "/w/forest.png")

	out = captureStdout(t, func() { err = runPairLast(pairLastCmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "HDMI-A-1")
	assert.Contains(t, out, "/w/neon.png")

	out = captureStdout(t, func() { err = runPairRebuild(pairRebuildCmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "Rebuilt 1 affinity pairs from 2 records")

	out = captureStdout(t, func() { err = runPairClear(pairClearCmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "Pairing history cleared")

	store = loadHistory(t, history.NewFilePersister(paths.PairingHistoryFile()))
	assert.Zero(t, store.RecordCount())
	assert.Zero(t, store.AffinityCount())
}

func TestPairRecord_Auto(t *testing.T) {
	paths := testEnv(t)
	recordAuto = true

	var err error
	captureStdout(t, func() {
		err = runPairRecord(pairRecordCmd, []string{"DP-1=/w/forest.png", "HDMI-A-1=/w/moss.png"})
	})
	require.NoError(t, err)

	store := loadHistory(t, history.NewFilePersister(paths.PairingHistoryFile()))
	require.Equal(t, 1, store.RecordCount())
	assert.False(t, store.Records()[0].Manual)
}

func TestPairRecord_InvalidArgs(t *testing.T) {
	testEnv(t)
	assert.Error(t, runPairRecord(pairRecordCmd, []string{"nonsense"}))
}

func TestPairAffinity_Empty(t *testing.T) {
	testEnv(t)

	var err error
	out := captureStdout(t, func() { err = runPairAffinity(pairAffinityCmd, []string{"/w/forest.png"}) })
	require.NoError(t, err)
	assert.Contains(t, out, "No pairing history for: /w/forest.png")

	out = captureStdout(t, func() { err = runPairAffinity(pairAffinityCmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "No affinity pairs recorded yet.")

	out = captureStdout(t, func() { err = runPairLast(pairLastCmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "No recent multi-screen pairing found.")
}

func TestPairStats_CorruptHistoryRecovers(t *testing.T) {
	paths := testEnv(t)
	require.NoError(t, os.MkdirAll(paths.CacheDir, 0755))
	require.NoError(t, os.WriteFile(paths.PairingHistoryFile(), []byte("{not json"), 0644))

	var err error
	out := captureStdout(t, func() { err = runPairStats(pairStatsCmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "Records:        0")

	logData, readErr := os.ReadFile(paths.LogFile())
	require.NoError(t, readErr)
	assert.Contains(t, string(logData), "pairing history unreadable")
}

func TestPairMigrate_FileToSQLite(t *testing.T) {
	paths := testEnv(t)

	var err error
	captureStdout(t, func() {
		err = runPairRecord(pairRecordCmd, []string{"DP-1=/w/forest.png", "HDMI-A-1=/w/moss.png"})
	})
	require.NoError(t, err)
	captureStdout(t, func() {
		err = runPairRecord(pairRecordCmd, []string{"DP-1=/w/moss.png", "HDMI-A-1=/w/neon.png"})
	})
	require.NoError(t, err)

	out := captureStdout(t, func() { err = runPairMigrate(pairMigrateCmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "Copied 2 records and 1 affinity pairs")
	assert.Contains(t, out, "pairing.history_backend sqlite")

	db, err := storage.NewSQLiteStore(paths.PairingDatabaseFile())
	require.NoError(t, err)
	defer db.Close()
	store := loadHistory(t, db)
	assert.Equal(t, 2, store.RecordCount())
	assert.Equal(t, 1, store.AffinityCount())
}

func TestPairMigrate_SameBackend(t *testing.T) {
	testEnv(t)
	migrateTo = "file"
	assert.Error(t, runPairMigrate(pairMigrateCmd, nil))
}

func TestPairStats_SQLiteBackend(t *testing.T) {
	paths := testEnv(t)

	cfg := config.DefaultConfig()
	cfg.Pairing.HistoryBackend = "sqlite"
	require.NoError(t, cfg.SaveToFile(paths.ConfigFile()))

	var err error
	captureStdout(t, func() {
		err = runPairRecord(pairRecordCmd, []string{"DP-1=/w/forest.png", "HDMI-A-1=/w/moss.png"})
	})
	require.NoError(t, err)

	out := captureStdout(t, func() { err = runPairStats(pairStatsCmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "Records:        1")
	assert.Contains(t, out, "sqlite")
	assert.FileExists(t, paths.PairingDatabaseFile())
	assert.NoFileExists(t, paths.PairingHistoryFile())
}

func TestPairSuggest_JSON(t *testing.T) {
	paths := testEnv(t)
	writeCatalog(t, paths)
	pairScreen = "DP-1"
	suggestJSON = true
	matchFlag = "strict"

	var err error
	out := captureStdout(t, func() { err = runPairSuggest(pairSuggestCmd, []string{"/w/forest.png"}) })
	require.NoError(t, err)

	var got struct {
		Selected string                 `json:"selected"`
		Screens  map[string][]matchJSON `json:"screens"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "/w/forest.png", got.Selected)
	require.Contains(t, got.Screens, "HDMI-A-1")
	assert.NotContains(t, got.Screens, "DP-1")

	var ranked []string
	for _, m := range got.Screens["HDMI-A-1"] {
		ranked = append(ranked, m.Path)
		assert.GreaterOrEqual(t, m.Confidence, 0.0)
		assert.LessOrEqual(t, m.Confidence, 1.0)
	}
	assert.ElementsMatch(t, []string{"/w/moss.png", "/w/neon.png"}, ranked)
}

func TestPairSuggest_Text(t *testing.T) {
	paths := testEnv(t)
	writeCatalog(t, paths)
	matchFlag = "strict"
	suggestTarget = "HDMI-A-1"
	suggestLimit = 1

	var err error
	out := captureStdout(t, func() { err = runPairSuggest(pairSuggestCmd, []string{"/w/forest.png"}) })
	require.NoError(t, err)
	assert.Contains(t, out, "Pairing suggestions for /w/forest.png on DP-1")
	assert.Contains(t, out, "HDMI-A-1")
	assert.Contains(t, out, "1   ")
	assert.NotContains(t, out, "tall.png")
}

func TestPairSuggest_Errors(t *testing.T) {
	paths := testEnv(t)

	err := runPairSuggest(pairSuggestCmd, []string{"/w/forest.png"})
	assert.ErrorContains(t, err, "wallpaper catalog not found")

	writeCatalog(t, paths)
	assert.ErrorContains(t, runPairSuggest(pairSuggestCmd, []string{"/w/missing.png"}), "not in catalog")

	pairScreen = "DP-9"
	assert.ErrorContains(t, runPairSuggest(pairSuggestCmd, []string{"/w/forest.png"}), "unknown screen")

	pairScreen = ""
	suggestTarget = "DP-9"
	assert.ErrorContains(t, runPairSuggest(pairSuggestCmd, []string{"/w/forest.png"}), "unknown target screen")

	suggestTarget = ""
	styleFlag = "loose"
	assert.Error(t, runPairSuggest(pairSuggestCmd, []string{"/w/forest.png"}))
}

func TestPairSuggest_Disabled(t *testing.T) {
	paths := testEnv(t)
	writeCatalog(t, paths)

	cfg := config.DefaultConfig()
	cfg.Pairing.Enabled = false
	require.NoError(t, cfg.SaveToFile(paths.ConfigFile()))

	var err error
	out := captureStdout(t, func() { err = runPairSuggest(pairSuggestCmd, []string{"/w/forest.png"}) })
	require.NoError(t, err)
	assert.Contains(t, out, "Pairing is disabled")
}

func TestPairApply_DryRun(t *testing.T) {
	paths := testEnv(t)
	writeCatalog(t, paths)
	fake := withFakeSetter(t)
	applyAll = true
	applyDryRun = true
	matchFlag = "strict"

	var err error
	out := captureStdout(t, func() { err = runPairApply(pairApplyCmd, []string{"/w/forest.png"}) })
	require.NoError(t, err)
	assert.Contains(t, out, "Would apply:")
	assert.Contains(t, out, "DP-1: /w/forest.png")
	assert.Contains(t, out, "HDMI-A-1: ")
	assert.Empty(t, fake.calls)
}

func TestPairApply_AllRecordsPairing(t *testing.T) {
	paths := testEnv(t)
	writeCatalog(t, paths)
	fake := withFakeSetter(t)
	applyAll = true
	matchFlag = "strict"

	var err error
	out := captureStdout(t, func() { err = runPairApply(pairApplyCmd, []string{"/w/forest.png"}) })
	require.NoError(t, err)
	assert.Contains(t, out, "DP-1: /w/forest.png")

	require.Len(t, fake.calls, 2)
	assert.Equal(t, "/w/forest.png", fake.calls["DP-1"])
	assert.Contains(t, []string{"/w/moss.png", "/w/neon.png"}, fake.calls["HDMI-A-1"])

	store := loadHistory(t, history.NewFilePersister(paths.PairingHistoryFile()))
	require.Equal(t, 1, store.RecordCount())
	assert.Equal(t, fake.calls, store.Records()[0].Wallpapers)
	assert.True(t, store.Records()[0].Manual)
}

func TestPairApply_SelectedScreenOnly(t *testing.T) {
	paths := testEnv(t)
	writeCatalog(t, paths)
	fake := withFakeSetter(t)
	pairScreen = "HDMI-A-1"

	var err error
	out := captureStdout(t, func() { err = runPairApply(pairApplyCmd, []string{"/w/neon.png"}) })
	require.NoError(t, err)
	assert.Contains(t, out, "HDMI-A-1: /w/neon.png")
	assert.Equal(t, map[string]string{"HDMI-A-1": "/w/neon.png"}, fake.calls)

	store := loadHistory(t, history.NewFilePersister(paths.PairingHistoryFile()))
	assert.Zero(t, store.RecordCount())
}

func TestPairApply_MergesWithLastPairing(t *testing.T) {
	paths := testEnv(t)
	writeCatalog(t, paths)
	fake := withFakeSetter(t)

	var err error
	captureStdout(t, func() {
		err = runPairRecord(pairRecordCmd, []string{"DP-1=/w/moss.png", "HDMI-A-1=/w/neon.png"})
	})
	require.NoError(t, err)

	captureStdout(t, func() { err = runPairApply(pairApplyCmd, []string{"/w/forest.png"}) })
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"DP-1": "/w/forest.png"}, fake.calls)

	store := loadHistory(t, history.NewFilePersister(paths.PairingHistoryFile()))
	require.Equal(t, 2, store.RecordCount())
	assert.Equal(t, map[string]string{"DP-1": "/w/forest.png", "HDMI-A-1": "/w/neon.png"}, store.Records()[1].Wallpapers)
}

func TestPairApply_SetterFailure(t *testing.T) {
	paths := testEnv(t)
	writeCatalog(t, paths)
	fake := withFakeSetter(t)
	fake.fail = map[string]bool{"DP-1": true}

	var err error
	captureStdout(t, func() { err = runPairApply(pairApplyCmd, []string{"/w/forest.png"}) })
	assert.ErrorContains(t, err, "apply incomplete")
}

func TestPairPreview_BuildsModel(t *testing.T) {
	paths := testEnv(t)
	writeCatalog(t, paths)
	withFakeSetter(t)
	matchFlag = "strict"

	var seen preview.Model
	old := runPreview
	runPreview = func(_ context.Context, m tea.Model) (tea.Model, error) {
		seen = m.(preview.Model)
		return m, nil
	}
	t.Cleanup(func() { runPreview = old })

	var err error
	out := captureStdout(t, func() { err = runPairPreview(pairPreviewCmd, []string{"/w/forest.png"}) })
	require.NoError(t, err)
	assert.NotContains(t, out, "Applied:")
	assert.Equal(t, 2, seen.Alternatives())
	assert.Equal(t, "/w/forest.png", seen.Assignment()["DP-1"])
}
