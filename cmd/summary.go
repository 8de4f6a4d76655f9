package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/model"
	"github.com/theirongolddev/stipend/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Balance, spend and repayment overview (default command)",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	p, err := requireProfile(res.Ledger)
	if err != nil {
		return err
	}

	s := pipeline.Summarize(p, res.Ledger.Transactions(), res.Ledger.PersonTransactions(), time.Now())

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("STIPEND  %s · %s", p.Name, p.School)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{Rows: summaryRows(s)}))

	if s.BudgetPercent != nil {
		fmt.Printf("\n  Budget left  %s\n", cli.RenderProgressBar(*s.BudgetPercent, 30))
	}
	if len(s.Categories) > 0 {
		top := s.Categories[0]
		fmt.Printf("  Top category %s %s\n", top.Category, cli.Muted(cli.FormatMoney(top.Amount)))
	}
	fmt.Println()
	return nil
}

// summaryRows lays out the derived metrics. The repayment row only appears once
// something has been received.
func summaryRows(s model.Summary) [][]string {
	rows := [][]string{
		{"Monthly budget", cli.FormatMoney(s.MonthlyBudget)},
		{"Spent", cli.FormatMoney(s.TotalSpend)},
		{"Credited", cli.FormatMoney(s.TotalCredit)},
		{"Balance", cli.Signed(cli.FormatMoney(s.Balance), s.Balance.Sign())},
		{"Budget left", cli.FormatOptionalPercent(s.BudgetPercent)},
		{"Spent today", cli.FormatMoney(s.DailySpend)},
		{"---"},
		{"Given", cli.FormatMoney(s.People.Given)},
		{"Received", cli.FormatMoney(s.People.Received)},
		{"Net", cli.Signed(cli.FormatSignedMoney(s.People.Net), s.People.Net.Sign())},
	}
	if s.Repayment != nil {
		rows = append(rows, []string{"Repayment", cli.FormatPercent(*s.Repayment)})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Transactions", cli.FormatNumber(int64(s.TransactionCount))},
		[]string{"Person entries", cli.FormatNumber(int64(s.PersonTransactionCount))},
	)
	return rows
}
