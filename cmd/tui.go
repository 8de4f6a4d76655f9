package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/logging"
	"github.com/theirongolddev/stipend/internal/tui"
	"github.com/theirongolddev/stipend/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor so background styling always produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Log lines on stderr would tear the alt screen.
	if !flagVerbose {
		logger = logging.Discard()
	}

	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	app := tui.NewApp(tui.Options{
		Ledger:        res.Ledger,
		PaymentScheme: cfg.Payment.Scheme,
		Days:          flagDays,
		Logger:        logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
