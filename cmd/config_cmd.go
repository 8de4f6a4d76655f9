package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/config"
	"github.com/theirongolddev/stipend/internal/tui/theme"
)

var flagConfigForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current settings to the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&flagConfigForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file, create one with `stipend config init`)")
	}
	fmt.Printf("  Ledger: %s\n", dbPath())
	fmt.Println()

	fmt.Println("  [general]")
	fmt.Printf("    currency_symbol: %s\n", cfg.General.CurrencySymbol)
	fmt.Printf("    default_days:    %d\n", cfg.General.DefaultDays)
	fmt.Println()

	fmt.Println("  [appearance]")
	fmt.Printf("    theme: %s\n", cfg.Appearance.Theme)
	fmt.Printf("    available: %v\n", theme.Names())
	fmt.Println()

	fmt.Println("  [payment]")
	fmt.Printf("    scheme: %s\n", cfg.Payment.Scheme)
	fmt.Println()

	fmt.Println("  [storage]")
	if cfg.Storage.Path != "" {
		fmt.Printf("    path: %s\n", cfg.Storage.Path)
	} else {
		fmt.Println("    path: (default)")
	}
	fmt.Println()

	fmt.Println("  [daemon]")
	fmt.Printf("    addr:     %s\n", cfg.Daemon.Addr)
	fmt.Printf("    interval: %s\n", cfg.Daemon.PollInterval())
	fmt.Println()

	for _, env := range []string{config.EnvDB, config.EnvTheme, config.EnvDaemonAddr} {
		if v, ok := os.LookupEnv(env); ok {
			fmt.Printf("  %s=%s (overrides config)\n", env, v)
		}
	}
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if config.Exists() && !flagConfigForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.ConfigPath())
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("  Wrote %s\n", config.ConfigPath())
	return nil
}
