package components

import (
	"fmt"

	"nathanbeddoewebdev/chainwatch/internal/domain"
	"nathanbeddoewebdev/chainwatch/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/guptarohit/asciigraph"
)

// chartHeight is the fixed height for the rolling charts.
const chartHeight = 6

// Chart describes one rolling series.
type Chart struct {
	Label  string
	Data   []float64
	Suffix string
	Color  asciigraph.AnsiColor
	Trend  domain.Trend
	// Peak is shown in the summary line when positive.
	Peak float64
}

// MetricsChart renders a single-series line chart with a label header and
// a cur/min/max summary. Fewer than two points render a placeholder.
func MetricsChart(s styles.Styles, c Chart, width int) string {
	header := s.Label.Render(c.Label) + " " + TrendArrow(s, c.Trend)
	if len(c.Data) < 2 {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			s.MutedText.Render("collecting samples…"),
		)
	}

	// Reserve space for Y-axis labels (number + " ┤").
	plotWidth := max(width-10, 10)

	chart := asciigraph.Plot(c.Data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Precision(1),
		asciigraph.LowerBound(0),
		asciigraph.SeriesColors(c.Color),
		asciigraph.LabelColor(asciigraph.Default),
	)

	current := c.Data[len(c.Data)-1]
	lo, hi := minMax(c.Data)
	line := fmt.Sprintf("  cur: %s  min: %s  max: %s",
		formatValue(current, c.Suffix),
		formatValue(lo, c.Suffix),
		formatValue(hi, c.Suffix),
	)
	if c.Peak > 0 {
		line += fmt.Sprintf("  peak: %s", formatValue(c.Peak, c.Suffix))
	}

	summary := s.MutedText.Render(ansi.Truncate(line, width, "…"))
	return lipgloss.JoinVertical(lipgloss.Left, header, chart, summary)
}

// TrendArrow renders a coloured arrow for t.
func TrendArrow(s styles.Styles, t domain.Trend) string {
	switch t {
	case domain.TrendUp:
		return s.LevelStyle(styles.LevelGood).Render("▲")
	case domain.TrendDown:
		return s.LevelStyle(styles.LevelBad).Render("▼")
	default:
		return s.MutedText.Render("─")
	}
}

// minMax returns the minimum and maximum values from a slice.
func minMax(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	lo, hi := data[0], data[0]
	for _, v := range data[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// formatValue renders a float with an optional suffix, using human-readable
// formatting for large values.
func formatValue(v float64, suffix string) string {
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%.1fG%s", v/1_000_000_000, suffix)
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM%s", v/1_000_000, suffix)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK%s", v/1_000, suffix)
	default:
		return fmt.Sprintf("%.1f%s", v, suffix)
	}
}
