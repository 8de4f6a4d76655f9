package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/charts"
	"github.com/theirongolddev/stipend/internal/pipeline"
)

var (
	flagChartOut  string
	flagChartKind string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render spending as a PNG chart",
	Long: "--kind categories (default) draws a pie of spend per category.\n" +
		"--kind daily draws a bar per day over the --days window.",
	Args: cobra.NoArgs,
	RunE: runChart,
}

func init() {
	chartCmd.Flags().StringVarP(&flagChartOut, "out", "o", "stipend-chart.png", "Output PNG path")
	chartCmd.Flags().StringVar(&flagChartKind, "kind", "categories", "categories or daily")
	rootCmd.AddCommand(chartCmd)
}

func runChart(_ *cobra.Command, _ []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	if _, err := requireProfile(res.Ledger); err != nil {
		return err
	}
	txs := res.Ledger.Transactions()

	var png []byte
	switch flagChartKind {
	case "categories", "pie":
		png, err = charts.CategoryPie(pipeline.CategoryTotals(txs))
	case "daily", "bars":
		now := time.Now()
		png, err = charts.DailyBars(pipeline.AggregateDays(txs, now.AddDate(0, 0, -(flagDays-1)), now))
	default:
		return fmt.Errorf("unknown chart kind %q (want categories or daily)", flagChartKind)
	}
	if errors.Is(err, charts.ErrNoData) {
		fmt.Println("  Nothing to chart yet: record some spending first.")
		return nil
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(flagChartOut, png, 0o644); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	fmt.Printf("  Wrote %s\n", flagChartOut)
	return nil
}
