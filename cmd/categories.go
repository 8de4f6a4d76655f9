package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/pipeline"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Spend per category",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	if _, err := requireProfile(res.Ledger); err != nil {
		return err
	}

	totals := pipeline.CategoryTotals(res.Ledger.Transactions())
	if len(totals) == 0 {
		fmt.Println("\n  No spending recorded yet.")
		return nil
	}

	peak := totals[0].Amount.InexactFloat64()
	rows := make([][]string, 0, len(totals))
	for _, ct := range totals {
		rows = append(rows, []string{
			string(ct.Category),
			cli.FormatMoney(ct.Amount),
			cli.FormatPercent(ct.SharePercent),
			cli.RenderHorizontalBar(ct.Amount.InexactFloat64(), peak, 24),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SPEND BY CATEGORY"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"Category", "Spent", "Share", ""},
		Rows:      rows,
		LeftAlign: []int{3},
	}))
	return nil
}
