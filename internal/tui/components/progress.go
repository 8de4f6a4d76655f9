package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/stipend/internal/tui/theme"
)

// ColorForRemaining maps the share of budget left (0-1) to a traffic-light color.
func ColorForRemaining(frac float64) lipgloss.Color {
	t := theme.Active
	switch {
	case frac < 0.2:
		return t.Negative
	case frac < 0.5:
		return t.Warning
	default:
		return t.Positive
	}
}

// PercentBar renders a labeled bar for a percentage on the 0-100 scale.
// Values outside the range are clamped for the bar but printed as-is.
func PercentBar(label string, pct float64, color lipgloss.Color, labelW, barWidth int) string {
	t := theme.Active

	frac := min(max(pct/100, 0), 1)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + " " +
		bar.ViewAs(frac) + " " +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
}

// BudgetBar is PercentBar colored by how much of the budget remains.
func BudgetBar(pct float64, labelW, barWidth int) string {
	return PercentBar("Budget left", pct, ColorForRemaining(pct/100), labelW, barWidth)
}
