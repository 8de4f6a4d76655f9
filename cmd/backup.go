package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/pipeline"
	"github.com/theirongolddev/stipend/internal/source"
	"github.com/theirongolddev/stipend/internal/tui"
)

var (
	flagBackupDir     string
	flagRestoreLatest bool
	flagRestoreYes    bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write the whole ledger to a JSONL backup file",
	Args:  cobra.NoArgs,
	RunE:  runBackup,
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List backups, newest first",
	Args:    cobra.NoArgs,
	RunE:    runBackupList,
}

var restoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Replace the ledger with the contents of a backup",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRestore,
}

func init() {
	backupCmd.PersistentFlags().StringVar(&flagBackupDir, "dir", "", "Backup directory (default $XDG_DATA_HOME/stipend/backups)")
	backupCmd.AddCommand(backupListCmd)
	rootCmd.AddCommand(backupCmd)

	restoreCmd.Flags().StringVar(&flagBackupDir, "dir", "", "Backup directory used with --latest")
	restoreCmd.Flags().BoolVar(&flagRestoreLatest, "latest", false, "Restore the newest backup")
	restoreCmd.Flags().BoolVarP(&flagRestoreYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(restoreCmd)
}

func backupDir() string {
	if flagBackupDir != "" {
		return flagBackupDir
	}
	return filepath.Join(pipeline.DataDir(), "backups")
}

func runBackup(_ *cobra.Command, _ []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	snap := res.Ledger.Snapshot()
	if snap.Empty() {
		fmt.Println("  Nothing to back up yet.")
		return nil
	}

	path, err := source.WriteFile(backupDir(), snap, time.Now())
	if err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	fmt.Printf("  Backed up %d transactions and %d person entries to %s\n",
		len(snap.Transactions), len(snap.PersonTransactions), path)
	return nil
}

func runBackupList(_ *cobra.Command, _ []string) error {
	files, err := source.ScanDir(backupDir())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("\n  No backups in %s\n", backupDir())
		return nil
	}

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{
			f.Name,
			f.ModTime.Local().Format("2006-01-02 15:04"),
			cli.FormatNumber(f.Size),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BACKUPS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"File", "Written", "Bytes"},
		Rows:    rows,
	}))
	fmt.Println(cli.Muted("  " + backupDir()))
	return nil
}

func runRestore(_ *cobra.Command, args []string) error {
	var path string
	switch {
	case len(args) == 1:
		path = args[0]
	case flagRestoreLatest:
		latest, err := source.Latest(backupDir())
		if err != nil {
			return err
		}
		path = latest.Path
	default:
		return errors.New("give a backup file or --latest")
	}

	parsed := source.ParseFile(path)
	if parsed.Err != nil {
		return fmt.Errorf("read backup: %w", parsed.Err)
	}
	if parsed.ParseErrors > 0 {
		infof("  Skipped %d malformed lines in %s\n", parsed.ParseErrors, path)
	}
	snap := parsed.Snapshot

	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	confirmed := flagRestoreYes
	if !confirmed {
		desc := fmt.Sprintf("%d transactions and %d person entries replace everything stored now.",
			len(snap.Transactions), len(snap.PersonTransactions))
		form := tui.NewConfirmForm("Restore "+filepath.Base(path)+"?", desc, "Restore", &confirmed)
		if err := form.Run(); err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("confirm restore: %w", err)
		}
	}
	if !confirmed {
		fmt.Println("  Restore cancelled. Nothing was changed.")
		return nil
	}

	if err := res.Ledger.Restore(snap); err != nil {
		return err
	}
	fmt.Printf("  Restored %d transactions and %d person entries.\n",
		len(snap.Transactions), len(snap.PersonTransactions))
	if snap.Profile == nil {
		fmt.Println("  The backup has no profile. Run `stipend setup` next.")
	}
	return nil
}
