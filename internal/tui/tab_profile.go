package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/paylink"
	"github.com/theirongolddev/stipend/internal/tui/components"
	"github.com/theirongolddev/stipend/internal/tui/theme"
)

func (a App) renderProfileTab(cw int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)

	field := func(name, v string) string {
		if v == "" {
			return label.Render(fmt.Sprintf("%-16s", name)) + dim.Render("not set")
		}
		return label.Render(fmt.Sprintf("%-16s", name)) + value.Render(v)
	}

	scheme := a.scheme
	if scheme == "" {
		scheme = paylink.DefaultScheme
	}

	profile := strings.Join([]string{
		field("Name", a.profile.Name),
		field("School", a.profile.School),
		field("Monthly budget", cli.FormatMoney(a.profile.MonthlyBudget)),
		field("Payment id", a.profile.PaymentID),
	}, "\n")

	data := strings.Join([]string{
		field("Transactions", cli.FormatNumber(int64(a.summary.TransactionCount))),
		field("Person entries", cli.FormatNumber(int64(a.summary.PersonTransactionCount))),
		field("Link scheme", scheme+"://"),
		field("Theme", t.Name),
	}, "\n")

	widths := components.LayoutRow(cw, 2)
	row := components.CardRow([]string{
		components.ContentCard("Profile", profile, widths[0]),
		components.ContentCard("Data", data, widths[1]),
	})

	actions := label.Render("e") + dim.Render(" edit profile   ") +
		lipgloss.NewStyle().Foreground(t.Negative).Render("R") + dim.Render(" reset everything")

	return row + "\n\n " + actions
}
