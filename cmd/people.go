package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/model"
	"github.com/theirongolddev/stipend/internal/pipeline"
)

var (
	flagPeopleDirection    string
	flagPeoplePerson       string
	flagPeopleAddDirection string
	flagPeopleNotes        string
)

var peopleCmd = &cobra.Command{
	Use:     "people",
	Aliases: []string{"iou"},
	Short:   "Money given to and received from other people",
	Args:    cobra.NoArgs,
	RunE:    runPeopleList,
}

var peopleAddCmd = &cobra.Command{
	Use:     "add <person> <amount>",
	Short:   "Record money you gave or received",
	Example: "  stipend people add Ravi 300 -d gave -m \"movie tickets\"",
	Args:    cobra.ExactArgs(2),
	RunE:    runPeopleAdd,
}

var peopleRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a person entry by id",
	Args:    cobra.ExactArgs(1),
	RunE:    runPeopleRm,
}

var peopleListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List person entries, newest first",
	Args:    cobra.NoArgs,
	RunE:    runPeopleList,
}

var peopleSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Totals per person and repayment progress",
	Args:  cobra.NoArgs,
	RunE:  runPeopleSummary,
}

func init() {
	peopleAddCmd.Flags().StringVarP(&flagPeopleAddDirection, "direction", "d", string(model.DirectionGave), "gave or received")
	peopleAddCmd.Flags().StringVarP(&flagPeopleNotes, "notes", "m", "", "Optional note, used in pay links")

	for _, c := range []*cobra.Command{peopleCmd, peopleListCmd} {
		c.Flags().StringVarP(&flagPeopleDirection, "direction", "d", "", "Only gave or received")
		c.Flags().StringVar(&flagPeoplePerson, "person", "", "Only entries whose name contains this text")
	}

	peopleCmd.AddCommand(peopleAddCmd, peopleRmCmd, peopleListCmd, peopleSummaryCmd)
	rootCmd.AddCommand(peopleCmd)
}

func runPeopleAdd(_ *cobra.Command, args []string) error {
	dir, err := model.ParseDirection(flagPeopleAddDirection)
	if err != nil {
		return err
	}

	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	if _, err := requireProfile(res.Ledger); err != nil {
		return err
	}

	pt, err := res.Ledger.AddPersonTransaction(model.PersonDraft{
		PersonName: args[0],
		Direction:  dir,
		Amount:     args[1],
		Notes:      flagPeopleNotes,
	})
	if err != nil {
		return err
	}

	fmt.Printf("  %s  %s\n", describePersonTransaction(pt), cli.Muted(cli.ShortID(pt.ID)))
	if pt.Direction == model.DirectionGave {
		infof("  Share a pay link with `stipend pay %s`.\n", cli.ShortID(pt.ID))
	}
	return nil
}

func runPeopleRm(_ *cobra.Command, args []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	if _, err := requireProfile(res.Ledger); err != nil {
		return err
	}

	id, err := resolveID(personIDs(res.Ledger.PersonTransactions()), args[0])
	if err != nil {
		return err
	}
	pt, found := res.Ledger.FindPersonTransaction(id)

	if _, err := res.Ledger.RemovePersonTransaction(id); err != nil {
		return err
	}
	if !found {
		fmt.Printf("  No person entry with id %s; nothing removed.\n", args[0])
		return nil
	}
	fmt.Printf("  Removed: %s\n", describePersonTransaction(pt))
	return nil
}

func runPeopleList(_ *cobra.Command, _ []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	if _, err := requireProfile(res.Ledger); err != nil {
		return err
	}

	pts := res.Ledger.PersonTransactions()
	if flagPeopleDirection != "" {
		dir, err := model.ParseDirection(flagPeopleDirection)
		if err != nil {
			return err
		}
		pts = pipeline.FilterByDirection(pts, dir)
	}
	if flagPeoplePerson != "" {
		pts = pipeline.FilterByPerson(pts, flagPeoplePerson)
	}

	if len(pts) == 0 {
		fmt.Println("\n  No person entries found.")
		return nil
	}

	rows := make([][]string, 0, len(pts))
	for i := len(pts) - 1; i >= 0; i-- {
		pt := pts[i]
		sign := -1
		if pt.Direction == model.DirectionReceived {
			sign = 1
		}
		rows = append(rows, []string{
			cli.ShortID(pt.ID),
			cli.FormatDate(pt.CreatedAt),
			pt.PersonName,
			cli.Signed(string(pt.Direction), sign),
			cli.FormatMoney(pt.Amount),
			cli.Truncate(pt.Notes, 32),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PERSON ENTRIES  %d", len(pts))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"ID", "Date", "Person", "Direction", "Amount", "Notes"},
		Rows:      rows,
		LeftAlign: []int{1, 2, 3, 5},
	}))
	return nil
}

func runPeopleSummary(_ *cobra.Command, _ []string) error {
	res, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	if _, err := requireProfile(res.Ledger); err != nil {
		return err
	}

	pts := res.Ledger.PersonTransactions()
	if len(pts) == 0 {
		fmt.Println("\n  No person entries yet.")
		return nil
	}

	totals := pipeline.PersonTotals(pts)
	people := pipeline.AggregatePeople(pts)

	rows := make([][]string, 0, len(people)+4)
	for _, pb := range people {
		rows = append(rows, []string{
			pb.Person,
			cli.FormatMoney(pb.Given),
			cli.FormatMoney(pb.Received),
			cli.Signed(cli.FormatSignedMoney(pb.Net), pb.Net.Sign()),
			cli.FormatNumber(int64(pb.Entries)),
		})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Total", cli.FormatMoney(totals.Given), cli.FormatMoney(totals.Received),
			cli.Signed(cli.FormatSignedMoney(totals.Net), totals.Net.Sign()), cli.FormatNumber(int64(len(pts)))},
	)

	fmt.Println()
	fmt.Println(cli.RenderTitle("PEOPLE"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Person", "Given", "Received", "Net", "Entries"},
		Rows:    rows,
	}))

	if pct, ok := pipeline.RepaymentProgress(totals); ok {
		fmt.Printf("\n  Repayment  %s\n", cli.RenderProgressBar(pct, 30))
	} else {
		fmt.Println(cli.Muted("\n  Repayment progress appears once you have received something."))
	}
	fmt.Println()
	return nil
}

func personIDs(pts []model.PersonTransaction) []string {
	ids := make([]string, len(pts))
	for i, pt := range pts {
		ids[i] = pt.ID
	}
	return ids
}

func describePersonTransaction(pt model.PersonTransaction) string {
	var s string
	if pt.Direction == model.DirectionGave {
		s = fmt.Sprintf("Gave %s to %s", cli.FormatMoney(pt.Amount), pt.PersonName)
	} else {
		s = fmt.Sprintf("Received %s from %s", cli.FormatMoney(pt.Amount), pt.PersonName)
	}
	if pt.Notes != "" {
		s += fmt.Sprintf(" %q", pt.Notes)
	}
	return s
}
