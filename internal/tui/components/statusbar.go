package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/stipend/internal/tui/theme"
)

// Notice is a transient status-line message.
type Notice struct {
	Text  string
	Error bool
}

// RenderStatusBar renders the bottom status bar: key hints on the left and
// the current notice, if any, on the right.
func RenderStatusBar(width int, hints string, n Notice) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " " + hints
	right := ""
	if n.Text != "" {
		color := t.Positive
		if n.Error {
			color = t.Negative
		}
		right = lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(n.Text) + " "
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return style.Render(left + strings.Repeat(" ", gap) + right)
}
