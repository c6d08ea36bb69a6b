package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	fwlog "github.com/runger/frostwall/internal/log"
	"github.com/runger/frostwall/internal/pairing/history"
	"github.com/runger/frostwall/internal/storage"
)

var (
	affinityLimit int
	recordAuto    bool
	migrateTo     string
)

var pairCmd = &cobra.Command{
	Use:     "pair",
	Short:   "Manage intelligent wallpaper pairing",
	GroupID: groupPairing,
	Long: `Manage intelligent wallpaper pairing.

frostwall records which wallpapers you keep on screen together and for how
long, and uses that history alongside palette, style and tag similarity to
suggest wallpapers for your other screens.`,
}

var pairStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pairing statistics",
	Args:  cobra.NoArgs,
	RunE:  runPairStats,
}

var pairClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all pairing history",
	Args:  cobra.NoArgs,
	RunE:  runPairClear,
}

var pairRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute the affinity table from the pairing log",
	Args:  cobra.NoArgs,
	RunE:  runPairRebuild,
}

var pairAffinityCmd = &cobra.Command{
	Use:   "affinity [path]",
	Short: "List learned affinities, optionally for one wallpaper",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPairAffinity,
}

var pairLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the most recent multi-screen pairing",
	Args:  cobra.NoArgs,
	RunE:  runPairLast,
}

var pairRecordCmd = &cobra.Command{
	Use:   "record SCREEN=PATH...",
	Short: "Record an assignment made outside frostwall",
	Long: `Record an assignment made outside frostwall.

The assignment closes the pairing currently on screen, crediting it with
the time it was shown, and becomes the new open pairing.

Examples:
  frostwall pair record DP-1=/w/forest.png HDMI-A-1=/w/lake.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPairRecord,
}

var pairMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy the pairing history to another backend",
	Long: `Copy the pairing history to another backend.

Reads the history from the configured backend and writes it to the other
one at its default location. Set pairing.history_backend afterwards to
switch.`,
	Args: cobra.NoArgs,
	RunE: runPairMigrate,
}

func init() {
	pairAffinityCmd.Flags().IntVarP(&affinityLimit, "limit", "n", 10, "maximum number of pairs to show")
	pairRecordCmd.Flags().BoolVar(&recordAuto, "auto", false, "mark the assignment as automatic rather than manual")
	pairMigrateCmd.Flags().StringVar(&migrateTo, "to", "", "target backend: file or sqlite (default: the other one)")

	pairCmd.AddCommand(pairStatsCmd)
	pairCmd.AddCommand(pairClearCmd)
	pairCmd.AddCommand(pairRebuildCmd)
	pairCmd.AddCommand(pairAffinityCmd)
	pairCmd.AddCommand(pairLastCmd)
	pairCmd.AddCommand(pairRecordCmd)
	pairCmd.AddCommand(pairMigrateCmd)
	pairCmd.AddCommand(pairSuggestCmd)
	pairCmd.AddCommand(pairApplyCmd)
	pairCmd.AddCommand(pairPreviewCmd)
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	applyColorMode()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	return fn(ctx, a)
}

func runPairStats(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		fmt.Printf("%sPairing Statistics%s\n", colorBold, colorReset)
		fmt.Println(strings.Repeat("-", 40))
		fmt.Printf("  Records:        %d\n", a.history.RecordCount())
		fmt.Printf("  Affinity pairs: %d\n", a.history.AffinityCount())
		if start, ok := a.history.PairingStart(); ok {
			fmt.Printf("  On screen for:  %s\n", time.Since(start).Round(time.Second))
		}
		fmt.Println()
		fmt.Printf("  Backend:    %s (%s)\n", a.cfg.Pairing.HistoryBackend, a.paths.HistoryFile(a.cfg))
		fmt.Printf("  Style mode: %s\n", a.cfg.Mode().DisplayName())
		fmt.Println()
		fmt.Printf("Pairing is %s\n", formatBool(a.cfg.Pairing.Enabled))
		fmt.Printf("Auto-apply is %s\n", formatBool(a.cfg.Pairing.AutoApply))
		return nil
	})
}

func formatBool(b bool) string {
	if b {
		return colorGreen + "enabled" + colorReset
	}
	return colorDim + "disabled" + colorReset
}

func runPairClear(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.history.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear pairing history: %w", err)
		}
		fmt.Printf("%s✓%s Pairing history cleared\n", colorGreen, colorReset)
		return nil
	})
}

func runPairRebuild(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.history.RebuildAffinity(ctx); err != nil {
			return fmt.Errorf("failed to save rebuilt history: %w", err)
		}
		fwlog.LogRebuild(a.logger, a.history.RecordCount(), a.history.AffinityCount())
		fmt.Printf("%s✓%s Rebuilt %d affinity pairs from %d records\n",
			colorGreen, colorReset, a.history.AffinityCount(), a.history.RecordCount())
		return nil
	})
}

func runPairAffinity(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		width := terminalWidth()

		if len(args) == 1 {
			path := args[0]
			partners := a.history.AffinitiesFor(path)
			if len(partners) == 0 {
				fmt.Printf("No pairing history for: %s\n", path)
				fmt.Println("Use wallpapers together to build pairing history.")
				return nil
			}

			type partner struct {
				path  string
				score float64
			}
			list := make([]partner, 0, len(partners))
			for p, s := range partners {
				list = append(list, partner{p, s})
			}
			sort.Slice(list, func(i, j int) bool {
				if list[i].score != list[j].score {
					return list[i].score > list[j].score
				}
				return list[i].path < list[j].path
			})

			fmt.Printf("Pairing affinity for: %s\n\n", path)
			for i, p := range list {
				if i >= affinityLimit {
					break
				}
				fmt.Printf("  %.2f  %s\n", p.score, truncatePath(p.path, width-10))
			}
			return nil
		}

		scores := a.history.Affinities()
		if len(scores) == 0 {
			fmt.Println("No affinity pairs recorded yet.")
			return nil
		}

		half := (width - 24) / 2
		for i, s := range scores {
			if i >= affinityLimit {
				break
			}
			fmt.Printf("  %.2f  %3dx  %s %s↔%s %s\n",
				s.Score, s.PairCount,
				truncatePath(s.WallpaperA, half), colorDim, colorReset,
				truncatePath(s.WallpaperB, half))
		}
		return nil
	})
}

func runPairLast(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		last, ok := a.history.LastMultiScreenPairing()
		if !ok {
			fmt.Println("No recent multi-screen pairing found.")
			return nil
		}
		printAssignment(last)
		return nil
	})
}

func runPairRecord(cmd *cobra.Command, args []string) error {
	assignment, err := parseAssignment(args)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.history.RecordPairing(ctx, assignment, !recordAuto); err != nil {
			fwlog.LogSaveFailed(a.logger, "record", err)
			return fmt.Errorf("pairing recorded but not saved: %w", err)
		}
		fmt.Printf("%s✓%s Recorded pairing across %d screen(s)\n", colorGreen, colorReset, len(assignment))
		return nil
	})
}

// parseAssignment parses SCREEN=PATH arguments.
func parseAssignment(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		screen, path, ok := strings.Cut(arg, "=")
		screen = strings.TrimSpace(screen)
		if !ok || screen == "" || path == "" {
			return nil, fmt.Errorf("invalid assignment %q: want SCREEN=PATH", arg)
		}
		if _, dup := out[screen]; dup {
			return nil, fmt.Errorf("screen %s assigned twice", screen)
		}
		out[screen] = path
	}
	return out, nil
}

func runPairMigrate(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		from := a.cfg.Pairing.HistoryBackend
		to := migrateTo
		if to == "" {
			to = "sqlite"
			if from == "sqlite" {
				to = "file"
			}
		}
		if to == from {
			return fmt.Errorf("history already uses the %s backend", from)
		}

		var (
			dst     history.Persister
			dstPath string
		)
		switch to {
		case "sqlite":
			dstPath = a.paths.PairingDatabaseFile()
			db, err := storage.NewSQLiteStore(dstPath)
			if err != nil {
				return err
			}
			defer db.Close()
			dst = db
		case "file":
			dstPath = a.paths.PairingHistoryFile()
			dst = history.NewFilePersister(dstPath)
		default:
			return errors.New("--to must be file or sqlite")
		}

		doc := &history.Document{
			Records:        a.history.Records(),
			AffinityScores: a.history.Affinities(),
		}
		if err := dst.Save(ctx, doc); err != nil {
			return fmt.Errorf("failed to write %s history: %w", to, err)
		}

		fmt.Printf("%s✓%s Copied %d records and %d affinity pairs to %s\n",
			colorGreen, colorReset, len(doc.Records), len(doc.AffinityScores), dstPath)
		fmt.Printf("Run: frostwall config pairing.history_backend %s\n", to)
		return nil
	})
}
