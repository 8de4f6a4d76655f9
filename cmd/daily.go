package cmd

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/pipeline"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Spend and credit per day",
	Args:  cobra.NoArgs,
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	if _, err := requireProfile(res.Ledger); err != nil {
		return err
	}

	now := time.Now()
	days := pipeline.AggregateDays(res.Ledger.Transactions(), now.AddDate(0, 0, -(flagDays-1)), now)

	rows := make([][]string, 0, len(days))
	spark := make([]float64, len(days))
	for i, d := range days {
		rows = append(rows, []string{
			d.Date.Format("2006-01-02"),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatMoney(d.Spend),
			cli.FormatMoney(d.Credit),
			cli.FormatNumber(int64(d.Transactions)),
		})
		spark[i] = d.Spend.InexactFloat64()
	}
	slices.Reverse(spark) // oldest first, left to right

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY SPEND  Last %dd", flagDays)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"Date", "Day", "Spent", "Credited", "Entries"},
		Rows:      rows,
		LeftAlign: []int{1},
	}))
	fmt.Printf("\n  %s\n\n", cli.RenderSparkline(spark))
	return nil
}
