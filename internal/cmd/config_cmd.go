package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/frostwall/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config [key] [value]",
	Short:   "Get or set configuration values",
	GroupID: groupSetup,
	Long: `Get or set frostwall configuration values.

Without arguments, lists all configuration keys.
With one argument, shows the value of that key.
With two arguments, sets the key to the value.

Configuration is stored in ~/.config/frostwall/config.yaml (XDG compliant).

Keys are in the format: section.key
Sections: pairing, display, log

Examples:
  frostwall config                              # List all keys
  frostwall config pairing.style_mode           # Get the style mode
  frostwall config pairing.auto_apply true      # Apply confident matches automatically
  frostwall config pairing.weights.visual 6     # Favour palette similarity`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	applyColorMode()

	paths := config.DefaultPaths()
	file := configFile(paths)
	cfg, err := config.LoadFromFile(file)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch len(args) {
	case 0:
		return listConfig(cfg, file)
	case 1:
		return getConfig(cfg, args[0])
	case 2:
		return setConfig(cfg, paths, file, args[0], args[1])
	}

	return nil
}

// configFile returns --config or the default config location.
func configFile(paths *config.Paths) string {
	if configPath != "" {
		return configPath
	}
	return paths.ConfigFile()
}

func listConfig(cfg *config.Config, file string) error {
	fmt.Printf("%sConfiguration Keys%s\n", colorBold, colorReset)
	fmt.Println(strings.Repeat("-", 40))
	fmt.Println()

	var failedKeys []string
	for _, key := range config.ListKeys() {
		value, err := cfg.Get(key)
		if err != nil {
			failedKeys = append(failedKeys, key)
			continue
		}

		displayValue := value
		if displayValue == "" {
			displayValue = colorDim + "(not set)" + colorReset
		}

		fmt.Printf("  %s%s%s = %s\n", colorCyan, key, colorReset, displayValue)
	}

	if len(failedKeys) > 0 {
		fmt.Printf("\n%sWarning:%s Failed to retrieve keys: %s\n", colorYellow, colorReset, strings.Join(failedKeys, ", "))
	}

	fmt.Println()
	fmt.Printf("Config file: %s\n", file)

	return nil
}

func getConfig(cfg *config.Config, key string) error {
	value, err := cfg.Get(key)
	if err != nil {
		return err
	}

	if value == "" {
		fmt.Printf("%s(not set)%s\n", colorDim, colorReset)
	} else {
		fmt.Println(value)
	}

	return nil
}

func setConfig(cfg *config.Config, paths *config.Paths, file, key, value string) error {
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure directories exist before saving
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := cfg.SaveToFile(file); err != nil {
		return err
	}

	saved, _ := cfg.Get(key)
	fmt.Printf("%s%s%s = %s\n", colorCyan, key, colorReset, saved)
	fmt.Printf("Saved to: %s\n", file)

	return nil
}
