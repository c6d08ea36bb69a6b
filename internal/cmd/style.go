package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/frostwall/internal/config"
	"github.com/runger/frostwall/internal/pairing/match"
)

var styleCmd = &cobra.Command{
	Use:     "style [off|soft|strict|next]",
	Short:   "Show or change the pairing style mode",
	GroupID: groupPairing,
	Long: `Show or change how strongly the selection's style constrains matches.

  off     rank on palette and history alone
  soft    prefer matching styles (default)
  strict  reject candidates whose style or content does not match

"next" cycles off → soft → strict → off.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"off", "soft", "strict", "next"},
	RunE:      runStyle,
}

func runStyle(cmd *cobra.Command, args []string) error {
	applyColorMode()

	paths := config.DefaultPaths()
	file := configFile(paths)
	cfg, err := config.LoadFromFile(file)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if len(args) == 0 {
		fmt.Printf("Style mode: %s%s%s\n", colorBold, cfg.Mode().DisplayName(), colorReset)
		return nil
	}

	var mode match.Mode
	if strings.EqualFold(args[0], "next") {
		mode = cfg.Mode().Next()
	} else if mode, err = match.ParseMode(args[0]); err != nil {
		return err
	}

	cfg.Pairing.StyleMode = mode.String()
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := cfg.SaveToFile(file); err != nil {
		return err
	}

	fmt.Printf("Style mode: %s%s%s\n", colorBold, mode.DisplayName(), colorReset)
	return nil
}
