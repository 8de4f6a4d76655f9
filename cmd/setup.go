package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/config"
	"github.com/theirongolddev/stipend/internal/tui"
	"github.com/theirongolddev/stipend/internal/tui/theme"
)

var (
	setupOpts profileFlags
	flagTheme string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create your profile (first-time onboarding)",
	Long: "Asks for your name, monthly budget, school and optional payment id.\n" +
		"Pass --name, --budget and --school to skip the interactive form.",
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	setupOpts.register(setupCmd)
	setupCmd.Flags().StringVar(&flagTheme, "theme", "", "TUI color theme to save in the config file")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	existing, _ := res.Ledger.Profile()
	draft := draftFromProfile(existing)

	if !setupOpts.apply(cmd, &draft) {
		if err := tui.NewProfileForm(&draft).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("  Setup cancelled.")
				return nil
			}
			return fmt.Errorf("setup form: %w", err)
		}
	}

	p, err := res.Ledger.SetProfile(draft)
	if err != nil {
		return err
	}

	if err := writeSetupConfig(); err != nil {
		logger.Warn("could not save config", "err", err)
	}

	fmt.Println()
	fmt.Printf("  Welcome, %s! Budget set to %s a month.\n", p.Name, cli.FormatMoney(p.MonthlyBudget))
	if p.PaymentID == "" {
		fmt.Println(cli.Muted("  Add a payment id later with `stipend profile --payment-id <id>` to share pay links."))
	}
	fmt.Println("  Run `stipend` for a summary or `stipend tui` for the dashboard.")
	fmt.Println()
	return nil
}

// writeSetupConfig creates the config file on first setup and records --theme.
func writeSetupConfig() error {
	if config.Exists() && flagTheme == "" {
		return nil
	}
	if flagTheme != "" {
		cfg.Appearance.Theme = theme.ByName(flagTheme).Name
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	infof("  Config saved to %s\n", config.ConfigPath())
	return nil
}
