package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/paylink"
)

var flagPayOpen bool

var payCmd = &cobra.Command{
	Use:   "pay <person-entry-id>",
	Short: "Build a payment request link for a person entry",
	Long: "Prints a pay-request URI asking for the entry's amount to be paid to your payment id.\n" +
		"Nothing is paid or verified; the link is only constructed.",
	Args: cobra.ExactArgs(1),
	RunE: runPay,
}

func init() {
	payCmd.Flags().BoolVar(&flagPayOpen, "open", false, "Open the link with the system URI handler")
	rootCmd.AddCommand(payCmd)
}

func runPay(cmd *cobra.Command, args []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	p, err := requireProfile(res.Ledger)
	if err != nil {
		return err
	}

	id, err := resolveID(personIDs(res.Ledger.PersonTransactions()), args[0])
	if err != nil {
		return err
	}
	pt, ok := res.Ledger.FindPersonTransaction(id)
	if !ok {
		return fmt.Errorf("no person entry with id %s", args[0])
	}

	link, err := paylink.Build(pt, p.PaymentID, paylink.WithScheme(cfg.Payment.Scheme))
	if errors.Is(err, paylink.ErrPaymentIDMissing) {
		fmt.Println(cli.Notice("  You have no payment id yet, so no link can be built."))
		fmt.Println("  Set one with: stipend profile --payment-id you@bank")
		return err
	}
	if err != nil {
		return err
	}

	infof("  %s\n", describePersonTransaction(pt))
	fmt.Println(link)

	if flagPayOpen {
		if err := paylink.Open(cmd.Context(), link); err != nil {
			return fmt.Errorf("opening link: %w", err)
		}
		infof("  Opened in the default handler.\n")
	}
	return nil
}
