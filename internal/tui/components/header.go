// Package components provides render-only building blocks for the
// chainwatch dashboard. None of them is a tea.Model; the dashboard model
// composes them into its view.
package components

import (
	"strings"

	"nathanbeddoewebdev/chainwatch/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Header renders the application header bar. The leading dot and the
// title take the pulse colour for the given heartbeat intensity.
//
//	┌──────────────────────────────────────────────┐
//	│  ● chainwatch > node       monad/v0.9  midnight │
//	└──────────────────────────────────────────────┘
func Header(s styles.Styles, width int, breadcrumb, right string, pulse float64) string {
	if width < 10 {
		return ""
	}

	pulseStyle := s.Title.Foreground(s.PulseColor(pulse))
	left := pulseStyle.Render("●") + " " + s.Title.Foreground(s.Palette.Accent).Render("chainwatch")
	if breadcrumb != "" {
		left += s.MutedText.Render(" > ") + s.Title.Render(breadcrumb)
	}

	rightText := ""
	if right != "" {
		rightText = s.Subtitle.Render(right)
	}

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(rightText)
	innerWidth := width - 4
	gap := max(innerWidth-leftLen-rightLen, 1)

	content := left + strings.Repeat(" ", gap) + rightText

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderBottom(true).
		BorderForeground(s.Palette.Dim).
		Render(content)
}
