package components

import (
	"strings"

	"nathanbeddoewebdev/chainwatch/internal/tui/styles"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// Footer renders the key binding help bar at the bottom of the screen.
// Disabled bindings are skipped.
func Footer(s styles.Styles, width int, bindings []key.Binding) string {
	if width < 10 || len(bindings) == 0 {
		return ""
	}

	sep := s.KeySepStyle.Render("  ")
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, s.FormatKeyBinding(h.Key, h.Desc))
	}
	if len(parts) == 0 {
		return ""
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderTop(true).
		BorderForeground(s.Palette.Dim).
		Render(strings.Join(parts, sep))
}
