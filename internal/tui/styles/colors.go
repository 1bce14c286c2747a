// Package styles provides the colour themes and style definitions for the
// chainwatch dashboard. Themes form a closed set; switching theme is an
// index into Themes.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Palette is one theme's colour table.
type Palette struct {
	// Core text
	Text  lipgloss.Color
	Gray  lipgloss.Color
	Muted lipgloss.Color
	Dim   lipgloss.Color

	// Accent
	Accent    lipgloss.Color
	DimAccent lipgloss.Color

	// Status
	Good lipgloss.Color
	Warn lipgloss.Color
	Bad  lipgloss.Color

	// Heartbeat pulse endpoints, interpolated by intensity.
	PulseHot  lipgloss.Color
	PulseCold lipgloss.Color

	// Chart series colours.
	ChartTPS     asciigraph.AnsiColor
	ChartLatency asciigraph.AnsiColor
}

// Theme names a palette.
type Theme struct {
	Name    string
	Palette Palette
}

// Themes is the fixed theme cycle. The first entry is the default.
var Themes = []Theme{
	{
		Name: "midnight",
		Palette: Palette{
			Text:         lipgloss.Color("#E2E2E2"),
			Gray:         lipgloss.Color("#888888"),
			Muted:        lipgloss.Color("#555555"),
			Dim:          lipgloss.Color("#444444"),
			Accent:       lipgloss.Color("#5FAFFF"),
			DimAccent:    lipgloss.Color("#3A6FA0"),
			Good:         lipgloss.Color("#5FD787"),
			Warn:         lipgloss.Color("#FFD787"),
			Bad:          lipgloss.Color("#FF8787"),
			PulseHot:     lipgloss.Color("#5FAFFF"),
			PulseCold:    lipgloss.Color("#1A2F40"),
			ChartTPS:     asciigraph.DodgerBlue,
			ChartLatency: asciigraph.LightCoral,
		},
	},
	{
		Name: "monad",
		Palette: Palette{
			Text:         lipgloss.Color("#FBFAF9"),
			Gray:         lipgloss.Color("#A0A0B8"),
			Muted:        lipgloss.Color("#5C5C78"),
			Dim:          lipgloss.Color("#3B3B54"),
			Accent:       lipgloss.Color("#836EF9"),
			DimAccent:    lipgloss.Color("#4F3FB0"),
			Good:         lipgloss.Color("#7CE38B"),
			Warn:         lipgloss.Color("#F5C26B"),
			Bad:          lipgloss.Color("#F2727F"),
			PulseHot:     lipgloss.Color("#A0055D"),
			PulseCold:    lipgloss.Color("#200052"),
			ChartTPS:     asciigraph.MediumPurple,
			ChartLatency: asciigraph.HotPink,
		},
	},
	{
		Name: "matrix",
		Palette: Palette{
			Text:         lipgloss.Color("#C8FFC8"),
			Gray:         lipgloss.Color("#6FBF6F"),
			Muted:        lipgloss.Color("#3F7F3F"),
			Dim:          lipgloss.Color("#1F4F1F"),
			Accent:       lipgloss.Color("#00FF41"),
			DimAccent:    lipgloss.Color("#008F11"),
			Good:         lipgloss.Color("#00FF41"),
			Warn:         lipgloss.Color("#D7FF5F"),
			Bad:          lipgloss.Color("#FF5F5F"),
			PulseHot:     lipgloss.Color("#00FF41"),
			PulseCold:    lipgloss.Color("#003B00"),
			ChartTPS:     asciigraph.Lime,
			ChartLatency: asciigraph.Yellow,
		},
	},
	{
		Name: "amber",
		Palette: Palette{
			Text:         lipgloss.Color("#FFD7A0"),
			Gray:         lipgloss.Color("#C89650"),
			Muted:        lipgloss.Color("#7A5A2E"),
			Dim:          lipgloss.Color("#4A3518"),
			Accent:       lipgloss.Color("#FFB000"),
			DimAccent:    lipgloss.Color("#A06E00"),
			Good:         lipgloss.Color("#D7FF87"),
			Warn:         lipgloss.Color("#FFB000"),
			Bad:          lipgloss.Color("#FF6E40"),
			PulseHot:     lipgloss.Color("#FFB000"),
			PulseCold:    lipgloss.Color("#3A2600"),
			ChartTPS:     asciigraph.Orange,
			ChartLatency: asciigraph.Gold,
		},
	},
}

// ThemeNames lists the theme names in cycle order.
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// ThemeIndex returns the position of the named theme.
func ThemeIndex(name string) (int, bool) {
	for i, t := range Themes {
		if t.Name == name {
			return i, true
		}
	}
	return 0, false
}

// NextTheme returns the index after i, wrapping around.
func NextTheme(i int) int {
	return (i + 1) % len(Themes)
}
