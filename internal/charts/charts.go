package charts

import (
	"bytes"
	"errors"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"

	"chitieu/internal/core"
)

// ErrNoChartData is returned when the requested period has no spending.
var ErrNoChartData = errors.New("no data to chart")

// CategoryBreakdownPNG renders a bar chart of spending per category for
// one month. Categories with zero spend are omitted; the bar order
// follows the canonical category order.
func CategoryBreakdownPNG(entries []core.Entry, year, month int) ([]byte, error) {
	totals := make(map[core.Category]int64)
	for _, e := range entries {
		if e.Date.InMonth(year, month) {
			totals[e.Category] += e.Amount
		}
	}

	var bars []chart.Value
	for _, cat := range core.Categories() {
		if totals[cat] == 0 {
			continue
		}
		bars = append(bars, chart.Value{
			Value: float64(totals[cat]),
			Label: cat.Label(),
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoChartData
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Chi tiêu theo danh mục %02d/%d", month, year),
		Width:    720,
		Height:   420,
		BarWidth: 80,
		Bars:     bars,
		XAxis: chart.Style{
			TextRotationDegrees: 0,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
