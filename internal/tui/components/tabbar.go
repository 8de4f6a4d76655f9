package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/stipend/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs, in display order.
var Tabs = []Tab{
	{Name: "Dashboard", Key: 'd', KeyPos: 0},
	{Name: "Spend", Key: 's', KeyPos: 0},
	{Name: "People", Key: 'p', KeyPos: 0},
	{Name: "Profile", Key: 'f', KeyPos: 3},
}

var tabPadding = lipgloss.NewStyle().Padding(0, 1)

func renderTabLabel(tab Tab, active bool) string {
	t := theme.Active
	if active {
		return tabPadding.
			Foreground(t.Accent).
			Background(t.SurfaceHover).
			Bold(true).
			Render(tab.Name)
	}

	name := lipgloss.NewStyle().Foreground(t.TextMuted)
	key := lipgloss.NewStyle().Foreground(t.Accent).Underline(true)
	if tab.KeyPos < 0 || tab.KeyPos >= len(tab.Name) {
		return tabPadding.Render(name.Render(tab.Name))
	}
	label := name.Render(tab.Name[:tab.KeyPos]) +
		key.Render(tab.Name[tab.KeyPos:tab.KeyPos+1]) +
		name.Render(tab.Name[tab.KeyPos+1:])
	return tabPadding.Render(label)
}

// TabVisualWidth is the rendered width of a tab label. Mouse hit-testing relies on it.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTabLabel(tab, active))
}

// RenderTabBar renders the tab bar with the given active index.
// Tabs are separated by one space column.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active
	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = renderTabLabel(tab, i == activeIdx)
	}

	return lipgloss.NewStyle().
		Background(t.Surface).
		Width(width).
		Render(strings.Join(parts, " "))
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
