// Package cmd implements the frostwall command line.
package cmd

import (
	"github.com/spf13/cobra"
)

const (
	groupPairing = "pairing"
	groupSetup   = "setup"
)

// Persistent flags shared by every command.
var (
	configPath  string
	catalogPath string
	historyPath string
	styleFlag   string
	matchFlag   string
	debugFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "frostwall",
	Short: "multi-monitor wallpaper pairing that learns what you like together",
	Long: `frostwall - multi-monitor wallpaper pairing
  - pick a wallpaper for one screen, get ranked matches for the others
  - learns from the pairings you keep on screen`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupPairing, Title: "Pairing Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ~/.config/frostwall/config.yaml)")
	pf.StringVar(&catalogPath, "catalog", "", "wallpaper catalog (overrides pairing.catalog_path)")
	pf.StringVar(&historyPath, "history", "", "pairing history location (overrides pairing.history_path)")
	pf.StringVar(&styleFlag, "style", "", "style mode for this run: off, soft or strict")
	pf.StringVar(&matchFlag, "match", "", "screen match mode for this run: strict, flexible or all")
	pf.BoolVar(&debugFlag, "debug", false, "log at debug level")

	rootCmd.AddCommand(pairCmd)
	rootCmd.AddCommand(styleCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
