package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/model"
)

// profileFlags is the flag set shared by setup and profile.
type profileFlags struct {
	name      string
	budget    string
	school    string
	paymentID string
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Your name")
	cmd.Flags().StringVar(&f.budget, "budget", "", "Monthly budget amount")
	cmd.Flags().StringVar(&f.school, "school", "", "School or college")
	cmd.Flags().StringVar(&f.paymentID, "payment-id", "", "Payment id used in pay links (e.g. you@bank)")
}

// apply copies every flag the user set onto d and reports whether any was set.
func (f *profileFlags) apply(cmd *cobra.Command, d *model.ProfileDraft) bool {
	changed := false
	set := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
			changed = true
		}
	}
	set("name", &d.Name, f.name)
	set("budget", &d.MonthlyBudget, f.budget)
	set("school", &d.School, f.school)
	set("payment-id", &d.PaymentID, f.paymentID)
	return changed
}

func draftFromProfile(p model.Profile) model.ProfileDraft {
	d := model.ProfileDraft{Name: p.Name, School: p.School, PaymentID: p.PaymentID}
	if !p.MonthlyBudget.IsZero() {
		d.MonthlyBudget = p.MonthlyBudget.String()
	}
	return d
}

var profileOpts profileFlags

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
	Long:  "Without flags, prints the profile. With --name, --budget, --school or --payment-id, updates those fields.",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

func init() {
	profileOpts.register(profileCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, _ []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	p, err := requireProfile(res.Ledger)
	if err != nil {
		return err
	}

	draft := draftFromProfile(p)
	if profileOpts.apply(cmd, &draft) {
		if p, err = res.Ledger.SetProfile(draft); err != nil {
			return err
		}
		infof("  Profile updated.\n")
	}

	printProfile(p)
	return nil
}

func printProfile(p model.Profile) {
	paymentID := p.PaymentID
	if paymentID == "" {
		paymentID = cli.Muted("not set")
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROFILE"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Rows: [][]string{
			{"Name", p.Name},
			{"School", p.School},
			{"Monthly budget", cli.FormatMoney(p.MonthlyBudget)},
			{"Payment id", paymentID},
		},
		LeftAlign: []int{1},
	}))
}
