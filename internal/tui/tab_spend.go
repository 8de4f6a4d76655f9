package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/model"
	"github.com/theirongolddev/stipend/internal/tui/theme"
)

// Fixed column widths for the transaction list: date, type, category, amount.
const (
	colDate     = 14
	colKind     = 8
	colCategory = 14
	colAmount   = 13
)

func (a App) renderSpendTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render(
		fmt.Sprintf(" Transactions (%d)", len(a.txs))))
	b.WriteString("\n\n")

	if len(a.txs) == 0 {
		b.WriteString(muted.Render(" Nothing recorded yet. Press a to add a spend or credit."))
		return b.String()
	}

	notesW := max(cw-colDate-colKind-colCategory-colAmount-6, 8)
	header := fmt.Sprintf(" %-*s%-*s%-*s%*s  %s",
		colDate, "Date", colKind, "Type", colCategory, "Category", colAmount, "Amount", "Notes")
	b.WriteString(muted.Bold(true).Render(header))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.Border).Render(strings.Repeat("─", cw)))
	b.WriteString("\n")

	start, end := visibleWindow(a.spendCursor, len(a.txs), h-5)
	for i := start; i < end; i++ {
		b.WriteString(a.renderTransactionRow(a.txs[i], i == a.spendCursor, notesW, cw))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (a App) renderTransactionRow(tx model.Transaction, selected bool, notesW, cw int) string {
	t := theme.Active

	amount := cli.FormatMoney(tx.Amount)
	amountColor := t.Negative
	if tx.Kind == model.KindCredit {
		amount = "+" + amount
		amountColor = t.Positive
	}

	base := lipgloss.NewStyle().Foreground(t.TextPrimary)
	if selected {
		base = base.Background(t.SurfaceHover).Bold(true)
	}
	marker := " "
	if selected {
		marker = "▸"
	}

	// Pad before styling so multi-byte currency symbols do not skew columns.
	row := base.Render(marker+padRight(cli.FormatDate(tx.OccurredAt), colDate)) +
		base.Render(padRight(string(tx.Kind), colKind)) +
		base.Render(padRight(string(tx.Category), colCategory)) +
		base.Foreground(amountColor).Render(padLeft(amount, colAmount)) +
		base.Render("  "+cli.Truncate(tx.Notes, notesW))

	return lipgloss.NewStyle().Width(cw).Render(row)
}

func padRight(s string, w int) string {
	return s + strings.Repeat(" ", max(w-lipgloss.Width(s), 0))
}

func padLeft(s string, w int) string {
	return strings.Repeat(" ", max(w-lipgloss.Width(s), 0)) + s
}
