package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/runger/frostwall/internal/preview"
	"github.com/runger/frostwall/internal/wallpaper"
)

var (
	pairScreen    string
	suggestTarget string
	suggestLimit  int
	suggestJSON   bool
	applyAll      bool
	applyDryRun   bool
)

// runPreview runs the preview program. Tests replace it.
var runPreview = func(ctx context.Context, m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
}

var pairSuggestCmd = &cobra.Command{
	Use:   "suggest PATH",
	Short: "Rank wallpapers for the other screens",
	Long: `Rank wallpapers for every other screen, given PATH on --screen.

Candidates are scored on learned pairing affinity, what each screen showed
alongside PATH before, palette similarity, color harmony, shared tags and
embedding similarity. The style mode (off, soft or strict) controls how
much the selection's style constrains the results.

Examples:
  frostwall pair suggest ~/walls/forest.png --screen DP-1
  frostwall pair suggest ~/walls/forest.png --target HDMI-A-1 -n 3
  frostwall pair suggest ~/walls/forest.png --style strict --json`,
	Args: cobra.ExactArgs(1),
	RunE: runPairSuggest,
}

var pairApplyCmd = &cobra.Command{
	Use:   "apply PATH",
	Short: "Set PATH on a screen and pair the others",
	Long: `Set PATH on --screen and fill the other screens with their best match.

Other screens only change when pairing.auto_apply is on and the match
confidence reaches pairing.auto_apply_threshold, or when --all is given.
The resulting assignment is recorded in the pairing history.`,
	Args: cobra.ExactArgs(1),
	RunE: runPairApply,
}

var pairPreviewCmd = &cobra.Command{
	Use:   "preview PATH",
	Short: "Browse and apply pairing alternatives interactively",
	Long: `Browse pairing alternatives for the other screens interactively.

Keys: ←/→ cycle alternatives, 1-9 jump, enter applies, u undoes the last
apply while its window is open, q quits.`,
	Args: cobra.ExactArgs(1),
	RunE: runPairPreview,
}

func init() {
	for _, c := range []*cobra.Command{pairSuggestCmd, pairApplyCmd, pairPreviewCmd} {
		c.Flags().StringVarP(&pairScreen, "screen", "s", "", "screen showing PATH (default: first screen)")
	}
	pairSuggestCmd.Flags().StringVarP(&suggestTarget, "target", "t", "", "only rank for this screen")
	pairSuggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "matches per screen (default: pairing.preview_alternatives)")
	pairSuggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output matches as JSON")
	pairApplyCmd.Flags().BoolVar(&applyAll, "all", false, "apply the best match on every screen regardless of confidence")
	pairApplyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "show the assignment without applying it")
}

// pairingDisabled reports, and prints, when pairing is switched off.
func pairingDisabled(a *app) bool {
	if a.cfg.Pairing.Enabled {
		return false
	}
	fmt.Println("Pairing is disabled. Enable it with: frostwall config pairing.enabled true")
	return true
}

func catalogIndex(cat *wallpaper.Catalog) map[string]*wallpaper.Wallpaper {
	out := make(map[string]*wallpaper.Wallpaper, len(cat.Wallpapers))
	for i := range cat.Wallpapers {
		out[cat.Wallpapers[i].Path] = &cat.Wallpapers[i]
	}
	return out
}

func runPairSuggest(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		if pairingDisabled(a) {
			return nil
		}

		cat, err := a.catalog()
		if err != nil {
			return err
		}
		sel, err := resolveSelection(cat, args[0], pairScreen)
		if err != nil {
			return err
		}

		pools := sel.pools(cat, a.cfg.MatchMode())
		if suggestTarget != "" {
			pool, ok := pools[suggestTarget]
			if !ok {
				return fmt.Errorf("unknown target screen %q", suggestTarget)
			}
			pools = map[string][]wallpaper.Wallpaper{suggestTarget: pool}
		}

		limit := suggestLimit
		if limit <= 0 {
			limit = a.cfg.Pairing.PreviewAlternatives
		}
		perScreen := a.engine().TopMatchesPerScreen(a.matchContext(sel), sel.screen.Name, pools, limit)

		if suggestJSON {
			return printMatchesJSON(sel.wallpaper.Path, perScreen)
		}

		if len(sel.targets) == 0 {
			fmt.Println("Only one screen is known; nothing to pair.")
			return nil
		}

		fmt.Printf("Pairing suggestions for %s on %s %s(%s mode)%s\n\n",
			truncatePath(sel.wallpaper.Path, terminalWidth()/2), sel.screen.Name,
			colorDim, a.cfg.Mode().DisplayName(), colorReset)

		byPath := catalogIndex(cat)
		for _, t := range sel.targets {
			if _, ok := pools[t.Name]; !ok {
				continue
			}
			printMatches(t, perScreen[t.Name], byPath)
		}
		return nil
	})
}

// currentAssignment returns the last recorded multi-screen pairing,
// restricted to screens the catalog knows.
func currentAssignment(a *app, cat *wallpaper.Catalog) map[string]string {
	last, ok := a.history.LastMultiScreenPairing()
	if !ok {
		return nil
	}
	for screen := range last {
		if _, known := cat.Screen(screen); !known {
			delete(last, screen)
		}
	}
	return last
}

func runPairApply(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		cat, err := a.catalog()
		if err != nil {
			return err
		}
		sel, err := resolveSelection(cat, args[0], pairScreen)
		if err != nil {
			return err
		}

		assignment := map[string]string{sel.screen.Name: sel.wallpaper.Path}
		manual := true

		if a.cfg.Pairing.Enabled && (applyAll || a.cfg.Pairing.AutoApply) {
			engine := a.engine()
			mc := a.matchContext(sel)
			pools := sel.pools(cat, a.cfg.MatchMode())
			threshold := a.cfg.Pairing.AutoApplyThreshold

			for _, t := range sel.targets {
				mc.TargetScreen = t.Name
				best, ok := engine.BestMatch(mc, pools[t.Name])
				if !ok {
					fmt.Printf("  %s%s: no compatible wallpaper%s\n", colorDim, t.Name, colorReset)
					continue
				}
				if !applyAll && best.Confidence() < threshold {
					fmt.Printf("  %s%s: best match below threshold (%.0f%% < %.0f%%)%s\n",
						colorDim, t.Name, best.Confidence()*100, threshold*100, colorReset)
					continue
				}
				assignment[t.Name] = best.Path
				if !applyAll {
					manual = false
				}
			}
		}

		if applyDryRun {
			fmt.Println("Would apply:")
			printAssignment(assignment)
			return nil
		}

		s, err := newSetter(a.cfg, a.logger)
		if err != nil {
			return err
		}
		session := preview.NewSession(a.history, s, preview.SessionOptions{
			Current:    currentAssignment(a, cat),
			UndoWindow: a.cfg.UndoWindow(),
			Logger:     a.logger,
		})

		applyErr := session.Apply(ctx, assignment, manual)
		current := session.Current()
		for _, screen := range sortedScreens(assignment) {
			if path := assignment[screen]; current[screen] == path {
				fmt.Printf("%s✓%s %s: %s\n", colorGreen, colorReset, screen, truncatePath(path, terminalWidth()-len(screen)-6))
			}
		}
		if applyErr != nil {
			return fmt.Errorf("apply incomplete: %w", applyErr)
		}
		return nil
	})
}

func runPairPreview(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if pairingDisabled(a) {
			return nil
		}

		cat, err := a.catalog()
		if err != nil {
			return err
		}
		sel, err := resolveSelection(cat, args[0], pairScreen)
		if err != nil {
			return err
		}

		pools := sel.pools(cat, a.cfg.MatchMode())
		perScreen := a.engine().TopMatchesPerScreen(a.matchContext(sel), sel.screen.Name, pools, a.cfg.Pairing.PreviewAlternatives)

		s, err := newSetter(a.cfg, a.logger)
		if err != nil {
			return err
		}
		session := preview.NewSession(a.history, s, preview.SessionOptions{
			Current:    currentAssignment(a, cat),
			UndoWindow: a.cfg.UndoWindow(),
			Logger:     a.logger,
		})

		model := preview.NewModel(session, sel.screen.Name, sel.wallpaper, perScreen, a.cfg.Mode())
		final, err := runPreview(ctx, model)
		if err != nil {
			return fmt.Errorf("preview failed: %w", err)
		}

		if m, ok := final.(preview.Model); ok && m.Applied() != nil {
			fmt.Println("Applied:")
			printAssignment(m.Applied())
		}
		return nil
	})
}
