// Package charts renders ledger summaries as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/theirongolddev/stipend/internal/model"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("nothing to chart yet")

// palette matches the CLI's Flexoki accents.
var palette = []drawing.Color{
	drawing.ColorFromHex("3AA99F"),
	drawing.ColorFromHex("DA702C"),
	drawing.ColorFromHex("4385BE"),
	drawing.ColorFromHex("879A39"),
	drawing.ColorFromHex("8B7EC8"),
	drawing.ColorFromHex("D0A215"),
}

var background = chart.Style{
	Padding: chart.Box{
		Top:    50,
		Left:   50,
		Right:  50,
		Bottom: 50,
	},
	FillColor: chart.ColorWhite,
}

// CategoryPie draws spend share per category. Labels carry the amount without
// a currency symbol because the bundled font lacks most of them.
func CategoryPie(totals []model.CategoryTotal) ([]byte, error) {
	values := make([]chart.Value, 0, len(totals))
	for i, ct := range totals {
		if !ct.Amount.IsPositive() {
			continue
		}
		color := palette[i%len(palette)]
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", ct.Category, ct.Amount.StringFixed(2), ct.SharePercent),
			Value: ct.Amount.InexactFloat64(),
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: chart.ColorWhite,
				FontSize:    12,
				FontColor:   chart.ColorBlack,
			},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:      "Spend by category",
		Width:      800,
		Height:     800,
		Values:     values,
		Background: background,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render category pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// DailyBars draws spend per day, oldest on the left.
func DailyBars(days []model.DailyStats) ([]byte, error) {
	ordered := slices.Clone(days)
	slices.SortFunc(ordered, func(a, b model.DailyStats) int { return a.Date.Compare(b.Date) })

	bars := make([]chart.Value, 0, len(ordered))
	anySpend := false
	for _, d := range ordered {
		v := d.Spend.InexactFloat64()
		if v != 0 {
			anySpend = true
		}
		bars = append(bars, chart.Value{
			Label: d.Date.Format("Jan 02"),
			Value: v,
			Style: chart.Style{
				FillColor:   palette[0],
				StrokeColor: palette[0],
			},
		})
	}
	if !anySpend {
		return nil, ErrNoData
	}

	graph := chart.BarChart{
		Title:      "Daily spend",
		Width:      1200,
		Height:     600,
		BarWidth:   max(8, 900/len(bars)),
		Background: background,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render daily chart: %w", err)
	}
	return buffer.Bytes(), nil
}
