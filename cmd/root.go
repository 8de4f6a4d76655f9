// Package cmd implements the stipend CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/config"
	"github.com/theirongolddev/stipend/internal/ledger"
	"github.com/theirongolddev/stipend/internal/logging"
	"github.com/theirongolddev/stipend/internal/model"
	"github.com/theirongolddev/stipend/internal/pipeline"
)

var (
	flagDays      int
	flagDB        string
	flagEphemeral bool
	flagQuiet     bool
	flagVerbose   bool
)

// cfg and logger are set by the root PersistentPreRunE before any command runs.
var (
	cfg    = config.DefaultConfig()
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "stipend",
	Short: "Student budget and IOU tracker",
	Long:  "Track a monthly budget, spends, credits and money given to or received from friends.",
	RunE:  runSummary,

	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Time window in days (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Ledger database path (default $XDG_DATA_HOME/stipend/ledger.db)")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Use an in-memory ledger that is discarded on exit")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")
}

func initRuntime(_ *cobra.Command, _ []string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	logger = logging.Setup(flagVerbose)

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded
	cli.SetCurrencySymbol(cfg.General.CurrencySymbol)

	if flagDays <= 0 {
		flagDays = cfg.General.DefaultDays
	}
	if flagDays <= 0 {
		flagDays = 7
	}
	return nil
}

// dbPath resolves the ledger location: --ephemeral, --db, config/env, then the XDG default.
func dbPath() string {
	switch {
	case flagEphemeral:
		return pipeline.MemoryPath
	case flagDB != "":
		return flagDB
	case cfg.Storage.Path != "":
		return cfg.Storage.Path
	default:
		return pipeline.DataPath()
	}
}

// openLedger is the shared loading path used by all commands.
func openLedger() (*pipeline.LoadResult, error) {
	return pipeline.Load(dbPath(), logger)
}

// requireProfile enforces the onboarding gate: ledger commands need a profile.
func requireProfile(l *ledger.Ledger) (model.Profile, error) {
	p, ok := l.Profile()
	if !ok {
		return model.Profile{}, ledger.ErrNotOnboarded
	}
	return p, nil
}

// infof prints progress chatter to stderr unless --quiet.
func infof(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
