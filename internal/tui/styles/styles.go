package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Styles is the set of lipgloss styles derived from one palette.
type Styles struct {
	Palette Palette

	// --- Typography ---

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Label      lipgloss.Style
	Value      lipgloss.Style
	MutedText  lipgloss.Style
	AccentText lipgloss.Style
	ErrorText  lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style

	// --- Layout ---

	Card lipgloss.Style

	// --- Key binding hints ---

	KeyStyle     lipgloss.Style
	KeyDescStyle lipgloss.Style
	KeySepStyle  lipgloss.Style

	// --- Tables ---

	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
}

// For returns the styles of the theme at index i. Out-of-range indexes
// wrap.
func For(i int) Styles {
	if len(Themes) == 0 {
		return New(Palette{})
	}
	i %= len(Themes)
	if i < 0 {
		i += len(Themes)
	}
	return New(Themes[i].Palette)
}

// New derives styles from p.
func New(p Palette) Styles {
	return Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.Gray),
		Label: lipgloss.NewStyle().
			Foreground(p.Gray).
			Bold(true),
		Value: lipgloss.NewStyle().
			Foreground(p.Text),
		MutedText: lipgloss.NewStyle().
			Foreground(p.Muted),
		AccentText: lipgloss.NewStyle().
			Foreground(p.Accent),
		ErrorText: lipgloss.NewStyle().
			Foreground(p.Bad).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(p.Good).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(p.Warn).
			Bold(true),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Dim).
			Padding(0, 1),

		KeyStyle: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		KeyDescStyle: lipgloss.NewStyle().
			Foreground(p.Muted),
		KeySepStyle: lipgloss.NewStyle().
			Foreground(p.Dim),

		TableHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Gray),
		TableCell: lipgloss.NewStyle().
			Foreground(p.Text),
	}
}

// --- Status badges ---

// Level is a coarse health level used for colouring.
type Level int

const (
	LevelNeutral Level = iota
	LevelGood
	LevelWarn
	LevelBad
)

// LevelStyle returns the bold foreground style for a health level.
func (s Styles) LevelStyle(l Level) lipgloss.Style {
	switch l {
	case LevelGood:
		return lipgloss.NewStyle().Foreground(s.Palette.Good).Bold(true)
	case LevelWarn:
		return lipgloss.NewStyle().Foreground(s.Palette.Warn).Bold(true)
	case LevelBad:
		return lipgloss.NewStyle().Foreground(s.Palette.Bad).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(s.Palette.Gray)
	}
}

// Indicator returns a small dot plus text coloured by level.
func (s Styles) Indicator(l Level, text string) string {
	style := s.LevelStyle(l)
	return style.Render("●") + " " + style.Render(text)
}

// FormatKeyBinding formats a single key binding for the footer.
func (s Styles) FormatKeyBinding(key, desc string) string {
	return s.KeyStyle.Render(key) + " " + s.KeyDescStyle.Render(desc)
}

// PulseColor blends the palette's cold and hot pulse colours. intensity
// is clamped to [0,1].
func (s Styles) PulseColor(intensity float64) lipgloss.Color {
	intensity = min(1, max(0, intensity))
	cold, err1 := colorful.Hex(string(s.Palette.PulseCold))
	hot, err2 := colorful.Hex(string(s.Palette.PulseHot))
	if err1 != nil || err2 != nil {
		if intensity >= 0.5 {
			return s.Palette.PulseHot
		}
		return s.Palette.PulseCold
	}
	return lipgloss.Color(cold.BlendRgb(hot, intensity).Clamped().Hex())
}

// Bar renders a fixed-width proportional bar for pct in [0,100].
func (s Styles) Bar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	pct = min(100, max(0, pct))
	filled := int(pct/100*float64(width) + 0.5)

	level := LevelGood
	switch {
	case pct >= 90:
		level = LevelBad
	case pct >= 75:
		level = LevelWarn
	}
	on := s.LevelStyle(level).Bold(false)
	off := lipgloss.NewStyle().Foreground(s.Palette.Dim)

	bar := ""
	for i := range width {
		if i < filled {
			bar += on.Render("█")
		} else {
			bar += off.Render("░")
		}
	}
	return bar
}

// Percent formats a percentage with one decimal.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
