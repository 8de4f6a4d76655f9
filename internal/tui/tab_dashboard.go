package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/tui/components"
	"github.com/theirongolddev/stipend/internal/tui/theme"
)

func (a App) renderDashboardTab(cw int) string {
	t := theme.Active
	s := a.summary

	balanceTone := t.Positive
	if s.Balance.IsNegative() {
		balanceTone = t.Negative
	}
	budgetHint := "of " + cli.FormatMoney(s.MonthlyBudget)
	if s.BudgetPercent != nil {
		budgetHint = cli.FormatPercent(*s.BudgetPercent) + " " + budgetHint
	}

	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Balance", Value: cli.FormatMoney(s.Balance), Hint: budgetHint, Tone: balanceTone},
		{Label: "Spent", Value: cli.FormatMoney(s.TotalSpend), Tone: t.Negative},
		{Label: "Credited", Value: cli.FormatMoney(s.TotalCredit), Tone: t.Positive},
		{Label: "Today", Value: cli.FormatMoney(s.DailySpend), Hint: "spent today"},
	}, cw)

	var b strings.Builder
	b.WriteString(metrics)
	b.WriteString("\n")

	if s.BudgetPercent != nil {
		barW := max(components.CardInnerWidth(cw)-22, 10)
		b.WriteString(components.ContentCard("", components.BudgetBar(*s.BudgetPercent, 12, barW), cw))
		b.WriteString("\n")
	}

	widths := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard(fmt.Sprintf("Daily spend · last %d days", a.days), a.dailyChart(widths[0]), widths[0]),
		components.ContentCard("Categories", a.categoryList(widths[1]), widths[1]),
	}))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("People", a.peopleSummary(cw), cw))

	return b.String()
}

func (a App) dailyChart(outerW int) string {
	if len(a.daily) == 0 {
		return lipgloss.NewStyle().Foreground(theme.Active.TextDim).Render("No spending yet")
	}

	days := slices.Clone(a.daily)
	slices.Reverse(days) // oldest first for the x axis
	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = d.Spend.InexactFloat64()
	}
	return components.ColumnChart(values, chartDateLabels(days), theme.Active.Accent,
		components.CardInnerWidth(outerW), 8)
}

func (a App) categoryList(outerW int) string {
	t := theme.Active
	cats := a.summary.Categories
	if len(cats) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("No spending yet")
	}

	inner := components.CardInnerWidth(outerW)
	barW := max(inner-14-12-7, 4)
	peak := cats[0].Amount.InexactFloat64()

	label := lipgloss.NewStyle().Foreground(t.TextMuted)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var b strings.Builder
	for i, c := range cats {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(label.Render(fmt.Sprintf("%-14s", c.Category)))
		b.WriteString(value.Render(fmt.Sprintf("%12s ", cli.FormatMoney(c.Amount))))
		b.WriteString(label.Render(fmt.Sprintf("%5.1f%% ", c.SharePercent)))
		b.WriteString(components.HBar(c.Amount.InexactFloat64(), peak, barW, t.Warning))
	}
	return b.String()
}

func (a App) peopleSummary(cw int) string {
	t := theme.Active
	p := a.summary.People
	label := lipgloss.NewStyle().Foreground(t.TextMuted)

	netTone := t.Positive
	if p.Net.IsNegative() {
		netTone = t.Negative
	}

	line := label.Render("Given ") + lipgloss.NewStyle().Foreground(t.Negative).Render(cli.FormatMoney(p.Given)) +
		label.Render("   Received ") + lipgloss.NewStyle().Foreground(t.Positive).Render(cli.FormatMoney(p.Received)) +
		label.Render("   Net ") + lipgloss.NewStyle().Foreground(netTone).Bold(true).Render(cli.FormatSignedMoney(p.Net))

	// Repayment is only meaningful once something has been received.
	if a.summary.Repayment == nil {
		return line
	}
	barW := max(components.CardInnerWidth(cw)-22, 10)
	return line + "\n" + components.PercentBar("Repayment", *a.summary.Repayment, t.Blue, 12, barW)
}
