package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/model"
)

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a transaction by id (the short id from `list` works too)",
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(_ *cobra.Command, args []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	if _, err := requireProfile(res.Ledger); err != nil {
		return err
	}

	txs := res.Ledger.Transactions()
	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	id, err := resolveID(ids, args[0])
	if err != nil {
		return err
	}

	// Unknown ids fall through to a no-op remove.
	removed, err := res.Ledger.RemoveTransaction(id)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Printf("  No transaction with id %s; nothing removed.\n", args[0])
		return nil
	}
	for _, tx := range txs {
		if tx.ID == id {
			fmt.Printf("  Removed %s\n", describeTransaction(tx))
		}
	}
	return nil
}

// resolveID expands a unique id prefix to the full id. A ref matching nothing
// is returned unchanged so the caller's remove becomes a no-op.
func resolveID(ids []string, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	var matches []string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return ref, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id %q is ambiguous (%d matches); use more characters", ref, len(matches))
	}
}

func describeTransaction(tx model.Transaction) string {
	s := fmt.Sprintf("%s %s (%s) from %s", tx.Kind, cli.FormatMoney(tx.Amount), tx.Category, cli.FormatDate(tx.OccurredAt))
	if tx.Notes != "" {
		s += fmt.Sprintf(" %q", tx.Notes)
	}
	return s
}
