package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/model"
	"github.com/theirongolddev/stipend/internal/pipeline"
)

var (
	flagAddCategory string
	flagAddNotes    string
)

// Negative amounts must follow "--" or cobra reads them as shorthand flags.
const addExample = `  stipend add spend 120 -c food -m "canteen lunch"
  stipend add credit 500 -m "pocket money"
  stipend add -m "correction" spend -- -20`

var addCmd = &cobra.Command{
	Use:       "add spend|credit <amount>",
	Short:     "Record a spend or a credit",
	Example:   addExample,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(model.KindSpend), string(model.KindCredit)},
	RunE:      runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&flagAddCategory, "category", "c", string(model.CategoryOther),
		"Food, Books, Transport, Entertainment or Other")
	addCmd.Flags().StringVarP(&flagAddNotes, "notes", "m", "", "Optional note")
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}
	category, err := model.ParseCategory(flagAddCategory)
	if err != nil {
		return err
	}

	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	p, err := requireProfile(res.Ledger)
	if err != nil {
		return err
	}

	tx, err := res.Ledger.AddTransaction(model.TransactionDraft{
		Kind:     kind,
		Amount:   args[1],
		Category: category,
		Notes:    flagAddNotes,
	})
	if err != nil {
		return err
	}

	balance := pipeline.CurrentBalance(p.MonthlyBudget, res.Ledger.Transactions())
	fmt.Printf("  Added %s %s (%s)  %s\n", tx.Kind, cli.FormatMoney(tx.Amount), tx.Category, cli.Muted(cli.ShortID(tx.ID)))
	fmt.Printf("  Balance: %s\n", cli.Signed(cli.FormatMoney(balance), balance.Sign()))
	return nil
}
