package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/model"
	"github.com/theirongolddev/stipend/internal/paylink"
	"github.com/theirongolddev/stipend/internal/tui/components"
	"github.com/theirongolddev/stipend/internal/tui/theme"
)

func (a App) renderPeopleTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)

	filter := "all"
	if a.peopleFilter != "" {
		filter = string(a.peopleFilter)
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render(
		fmt.Sprintf(" Person entries (%d)", len(a.pts))))
	b.WriteString(muted.Render("  showing " + filter))
	b.WriteString("\n\n")

	if len(a.pts) == 0 && a.peopleFilter == "" {
		b.WriteString(muted.Render(" No one owes anyone yet. Press a to record money given or received."))
		return b.String()
	}

	widths := components.LayoutRow(cw, 2)
	listRows := max(h-8, 3)

	b.WriteString(components.CardRow([]string{
		components.ContentCard("Entries", a.personList(components.CardInnerWidth(widths[0]), listRows), widths[0]),
		components.ContentCard("Balances", a.personBalances(), widths[1]),
	}))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Pay link", a.payLinkView(), cw))
	return b.String()
}

func (a App) personList(w, rows int) string {
	t := theme.Active
	if len(a.pts) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("No entries match the filter")
	}

	nameW := max(w-2-9-colAmount, 6)
	start, end := visibleWindow(a.peopleCursor, len(a.pts), rows)

	var b strings.Builder
	for i := start; i < end; i++ {
		pt := a.pts[i]
		color := t.Negative
		if pt.Direction == model.DirectionReceived {
			color = t.Positive
		}

		style := lipgloss.NewStyle().Foreground(t.TextPrimary)
		marker := " "
		if i == a.peopleCursor {
			style = style.Background(t.SurfaceHover).Bold(true)
			marker = "▸"
		}

		b.WriteString(style.Render(marker + " " + padRight(cli.Truncate(pt.PersonName, nameW), nameW)))
		b.WriteString(style.Foreground(color).Render(padRight(string(pt.Direction), 9)))
		b.WriteString(style.Foreground(color).Render(padLeft(cli.FormatMoney(pt.Amount), colAmount)))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) personBalances() string {
	t := theme.Active
	if len(a.people) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("-")
	}
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	for i, pb := range a.people {
		if i > 0 {
			b.WriteString("\n")
		}
		tone := t.Positive
		note := "settled"
		switch {
		case pb.Net.IsNegative():
			tone = t.Warning
			note = "owes you"
		case pb.Net.IsPositive():
			note = "you owe"
		}
		b.WriteString(padRight(cli.Truncate(pb.Person, 16), 17))
		b.WriteString(lipgloss.NewStyle().Foreground(tone).Render(padLeft(cli.FormatMoney(pb.Net.Abs()), colAmount)))
		b.WriteString(muted.Render("  " + note))
	}
	return b.String()
}

func (a App) payLinkView() string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)

	link, err := a.selectedLink()
	switch {
	case errors.Is(err, paylink.ErrPaymentIDMissing):
		return lipgloss.NewStyle().Foreground(t.Warning).Render("No payment id set.") +
			muted.Render(" Press e to add one to your profile.")
	case err != nil:
		return lipgloss.NewStyle().Foreground(t.Negative).Render(err.Error())
	case link == "":
		return muted.Render("Select an entry to build its payment link.")
	}
	return lipgloss.NewStyle().Foreground(t.Blue).Render(link) + "\n" + muted.Render("o to open")
}
