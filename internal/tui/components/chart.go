package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/stipend/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as one row of block characters scaled to the largest value.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := peakOf(values)

	var sb strings.Builder
	for _, v := range values {
		sb.WriteRune(sparkBlocks[blockIndex(v, peak, len(sparkBlocks)-1)])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(sb.String())
}

// ColumnChart draws one vertical bar per value with a labeled y-axis.
// labels, when given, must match values one to one and are printed under the bars.
// Narrow areas fall back to a Sparkline.
func ColumnChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	step := niceStep(peakOf(values), height)
	top := math.Max(step, math.Ceil(peakOf(values)/step)*step)
	ticks := int(math.Round(top / step))
	rowsPerTick := max(height/ticks, 1)
	rows := rowsPerTick * ticks

	axisW := max(len(axisLabel(top))+1, 4)
	plotW := max(width-axisW-1, 5)

	// Keep the most recent values when they do not fit at two columns per bar.
	if maxBars := (plotW + 1) / 3; len(values) > maxBars {
		cut := len(values) - maxBars
		values = values[cut:]
		if len(labels) > 0 {
			labels = labels[cut:]
		}
	}
	n := len(values)
	barW := min(max((plotW-(n-1))/n, 2), 6)

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := rows; row >= 1; row-- {
		hi := top * float64(row) / float64(rows)
		lo := top * float64(row-1) / float64(rows)

		label := ""
		if row%rowsPerTick == 0 {
			label = axisLabel(step * float64(row/rowsPerTick))
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, label)))

		for i, v := range values {
			if i > 0 {
				b.WriteString(blank.Render(" "))
			}
			switch {
			case v >= hi:
				b.WriteString(bar.Render(strings.Repeat("█", barW)))
			case v > lo:
				idx := blockIndex(v-lo, hi-lo, len(sparkBlocks)-1)
				b.WriteString(bar.Render(strings.Repeat(string(sparkBlocks[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	plotLen := n*barW + (n - 1)
	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", axisW, "0", strings.Repeat("─", plotLen))))

	if len(labels) == n {
		line := []rune(strings.Repeat(" ", plotLen))
		next := 0
		for i, lbl := range labels {
			pos := i * (barW + 1)
			r := []rune(lbl)
			if pos < next || pos+len(r) > plotLen {
				continue
			}
			copy(line[pos:], r)
			next = pos + len(r) + 1
		}
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", axisW+1)))
		b.WriteString(axis.Render(strings.TrimRight(string(line), " ")))
	}

	return b.String()
}

// HBar renders a horizontal bar of value relative to peak, at most width cells wide.
func HBar(value, peak float64, width int, color lipgloss.Color) string {
	if peak <= 0 || width <= 0 || value <= 0 {
		return ""
	}
	n := max(int(math.Round(value/peak*float64(width))), 1)
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", min(n, width)))
}

func peakOf(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	return peak
}

func blockIndex(v, peak float64, last int) int {
	if peak <= 0 || v <= 0 {
		return 0
	}
	return min(max(int(v/peak*float64(last)), 0), last)
}

// niceStep picks a 1/2/5 x 10^n tick interval giving at most height/2 intervals.
func niceStep(peak float64, height int) float64 {
	if peak <= 0 {
		return 1
	}
	limit := max(height/2, 2)
	base := math.Pow(10, math.Floor(math.Log10(peak/5)))
	for {
		for _, m := range []float64{1, 2, 5} {
			step := m * base
			if math.Ceil(peak/step) <= float64(limit) {
				return step
			}
		}
		base *= 10
	}
}

// axisLabel compacts a money amount for the y-axis (1500 -> 1.5k).
func axisLabel(v float64) string {
	switch {
	case v >= 1e5:
		return trimZero(v/1e5) + "L"
	case v >= 1e3:
		return trimZero(v/1e3) + "k"
	case v >= 1 || v == 0:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimZero(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
