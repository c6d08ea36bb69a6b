package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/runger/frostwall/internal/config"
	fwlog "github.com/runger/frostwall/internal/log"
	"github.com/runger/frostwall/internal/pairing/history"
	"github.com/runger/frostwall/internal/pairing/match"
	"github.com/runger/frostwall/internal/setter"
	"github.com/runger/frostwall/internal/storage"
	"github.com/runger/frostwall/internal/wallpaper"
)

// app bundles what a pairing command needs: configuration, logger and the
// loaded pairing history.
type app struct {
	cfg     *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	history *history.Store
	closers []func() error
}

// newSetter builds the wallpaper setter from the display settings.
// Tests replace it.
var newSetter = func(cfg *config.Config, logger *slog.Logger) (setter.Setter, error) {
	d := cfg.Display
	opts := setter.DefaultOptions()
	opts.Command = d.SetterCommand
	opts.TransitionType = d.TransitionType
	opts.TransitionDuration = d.TransitionDuration
	opts.TransitionFPS = d.TransitionFPS
	opts.ResizeMode = d.ResizeMode
	opts.FillColor = d.FillColor
	opts.Logger = logger
	return setter.NewCommandSetter(opts)
}

// loadConfig loads the config file and applies the persistent flags.
func loadConfig() (*config.Config, *config.Paths, error) {
	paths := config.DefaultPaths()
	cfg, err := config.LoadFromFile(configFile(paths))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if styleFlag != "" {
		if err := cfg.Set("pairing.style_mode", styleFlag); err != nil {
			return nil, nil, err
		}
	}
	if matchFlag != "" {
		if err := cfg.Set("display.match_mode", matchFlag); err != nil {
			return nil, nil, err
		}
	}
	if historyPath != "" {
		cfg.Pairing.HistoryPath = historyPath
	}
	if catalogPath != "" {
		cfg.Pairing.CatalogPath = catalogPath
	}
	if debugFlag {
		cfg.Log.Level = "debug"
	}
	return cfg, paths, nil
}

// openApp loads configuration, opens the log file and loads the pairing
// history. An unreadable history is logged and replaced by an empty one.
func openApp(ctx context.Context) (*app, error) {
	cfg, paths, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, paths: paths}
	if err := a.openLogger(); err != nil {
		return nil, err
	}
	if err := a.openHistory(ctx); err != nil {
		_ = a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) openLogger() error {
	path := a.cfg.Log.File
	if path == "" {
		path = a.paths.LogFile()
	}
	f, err := fwlog.OpenFile(path)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, f.Close)
	a.logger = fwlog.New(&fwlog.Config{
		Output: f,
		Level:  fwlog.ParseLevel(a.cfg.Log.Level),
	})
	return nil
}

// persister returns the configured history backend.
func (a *app) persister() (history.Persister, error) {
	path := a.paths.HistoryFile(a.cfg)
	if a.cfg.Pairing.HistoryBackend == "sqlite" {
		db, err := storage.NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	}
	return history.NewFilePersister(path), nil
}

func (a *app) openHistory(ctx context.Context) error {
	p, err := a.persister()
	if err != nil {
		return fmt.Errorf("failed to open pairing history: %w", err)
	}

	opts := history.DefaultOptions()
	opts.MaxRecords = a.cfg.Pairing.MaxHistoryRecords
	opts.Persister = p
	opts.Logger = a.logger

	store, err := history.Open(ctx, opts)
	if err != nil {
		fwlog.LogLoadRecovered(a.logger, a.paths.HistoryFile(a.cfg), err)
	}
	a.history = store
	return nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) catalog() (*wallpaper.Catalog, error) {
	path := a.paths.Catalog(a.cfg)
	cat, err := wallpaper.LoadCatalog(path)
	if err != nil {
		if errors.Is(err, wallpaper.ErrCatalogNotFound) {
			return nil, fmt.Errorf("%w (scan your wallpapers first or set pairing.catalog_path)", err)
		}
		return nil, err
	}
	return cat, nil
}

func (a *app) engine() *match.Engine {
	ec := match.DefaultEngineConfig()
	ec.Weights = a.cfg.Pairing.Weights.MatchWeights()
	ec.Logger = a.logger
	return match.NewEngine(a.history, ec)
}

// selection is a resolved "this wallpaper on this screen" request.
type selection struct {
	wallpaper wallpaper.Wallpaper
	screen    wallpaper.Screen
	// targets are the other screens, sorted by name.
	targets []wallpaper.Screen
}

// resolveSelection finds path and screenName in the catalog. An empty
// screenName picks the first screen by name.
func resolveSelection(cat *wallpaper.Catalog, path, screenName string) (*selection, error) {
	wp, ok := cat.Find(path)
	if !ok {
		if abs, err := filepath.Abs(path); err == nil {
			wp, ok = cat.Find(abs)
		}
	}
	if !ok {
		return nil, fmt.Errorf("wallpaper not in catalog: %s", path)
	}

	names := cat.ScreenNames()
	if len(names) == 0 {
		return nil, errors.New("catalog lists no screens")
	}
	if screenName == "" {
		screenName = names[0]
	}
	screen, ok := cat.Screen(screenName)
	if !ok {
		return nil, fmt.Errorf("unknown screen %q (known: %v)", screenName, names)
	}

	sel := &selection{wallpaper: *wp, screen: screen}
	for _, name := range names {
		if name == screenName {
			continue
		}
		s, _ := cat.Screen(name)
		sel.targets = append(sel.targets, s)
	}
	return sel, nil
}

// pools returns the candidate pool of every target screen under mode.
func (s *selection) pools(cat *wallpaper.Catalog, mode wallpaper.MatchMode) map[string][]wallpaper.Wallpaper {
	out := make(map[string][]wallpaper.Wallpaper, len(s.targets))
	for _, t := range s.targets {
		out[t.Name] = cat.Pool(t, mode)
	}
	return out
}

// matchContext builds the ranking request for sel under the configured mode.
func (a *app) matchContext(sel *selection) match.Context {
	return match.Context{
		Selected: sel.wallpaper,
		Mode:     a.cfg.Mode(),
	}
}
