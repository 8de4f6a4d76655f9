package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/model"
	"github.com/theirongolddev/stipend/internal/pipeline"
)

var (
	flagListKind     string
	flagListCategory string
	flagListLimit    int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List transactions, newest first",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVar(&flagListKind, "kind", "", "Only spend or credit")
	listCmd.Flags().StringVarP(&flagListCategory, "category", "c", "", "Only this category")
	listCmd.Flags().IntVar(&flagListLimit, "limit", 0, "Show at most this many rows (0 = all)")
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	if _, err := requireProfile(res.Ledger); err != nil {
		return err
	}

	txs := res.Ledger.Transactions()
	if flagListKind != "" {
		kind, err := model.ParseKind(flagListKind)
		if err != nil {
			return err
		}
		txs = pipeline.FilterByKind(txs, kind)
	}
	if flagListCategory != "" {
		cat, err := model.ParseCategory(flagListCategory)
		if err != nil {
			return err
		}
		txs = pipeline.FilterByCategory(txs, cat)
	}

	if len(txs) == 0 {
		fmt.Println("\n  No transactions found.")
		return nil
	}

	spent := pipeline.TotalSpend(txs)
	credited := pipeline.TotalCredit(txs)

	rows := make([][]string, 0, len(txs)+3)
	for i := len(txs) - 1; i >= 0; i-- {
		if flagListLimit > 0 && len(rows) == flagListLimit {
			break
		}
		rows = append(rows, transactionRow(txs[i]))
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"", "", "Spent", "", cli.FormatMoney(spent), ""},
		[]string{"", "", "Credited", "", cli.FormatMoney(credited), ""},
	)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TRANSACTIONS  %d entries", len(txs))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"ID", "Date", "Type", "Category", "Amount", "Notes"},
		Rows:      rows,
		LeftAlign: []int{1, 2, 3, 5},
	}))
	return nil
}

func transactionRow(tx model.Transaction) []string {
	amount := cli.FormatMoney(tx.Amount)
	sign := -1
	if tx.Kind == model.KindCredit {
		amount = "+" + amount
		sign = 1
	}
	return []string{
		cli.ShortID(tx.ID),
		cli.FormatDate(tx.OccurredAt),
		string(tx.Kind),
		string(tx.Category),
		cli.Signed(amount, sign),
		cli.Truncate(tx.Notes, 32),
	}
}
