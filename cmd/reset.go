package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/tui"
)

var flagResetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete your profile and every entry",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(_ *cobra.Command, _ []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	confirmed := flagResetYes
	if !confirmed {
		if err := tui.NewResetForm(&confirmed).Run(); err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("confirm reset: %w", err)
		}
	}
	if !confirmed {
		fmt.Println("  Reset cancelled. Nothing was deleted.")
		return nil
	}

	if err := res.Ledger.ResetAll(); err != nil {
		return err
	}
	fmt.Println("  All data deleted. Run `stipend setup` to start again.")
	return nil
}
