package components

import (
	"strings"

	"nathanbeddoewebdev/chainwatch/internal/domain"
	"nathanbeddoewebdev/chainwatch/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Feed is one labelled connection shown in the status bar.
type Feed struct {
	Name  string
	State domain.ConnectionState
}

// StatusBar renders the connection state of every feed on one line. The
// last error of a feed that is not connected is appended, truncated to
// the remaining width.
func StatusBar(s styles.Styles, width int, feeds ...Feed) string {
	if width < 10 || len(feeds) == 0 {
		return ""
	}

	parts := make([]string, len(feeds))
	var lastErr string
	for i, f := range feeds {
		parts[i] = s.Label.Render(f.Name) + " " + s.Indicator(PhaseLevel(f.State.Phase), f.State.Label())
		if f.State.Phase != domain.PhaseConnected && f.State.Err != "" {
			lastErr = f.State.Err
		}
	}
	line := strings.Join(parts, s.KeySepStyle.Render("   "))

	if lastErr != "" {
		room := width - 4 - lipgloss.Width(line) - 3
		if room > 8 {
			line += "   " + s.MutedText.Render(ansi.Truncate(lastErr, room, "…"))
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Render(line)
}

// PhaseLevel maps a connection phase to a display level.
func PhaseLevel(p domain.Phase) styles.Level {
	switch p {
	case domain.PhaseConnected:
		return styles.LevelGood
	case domain.PhaseConnecting, domain.PhaseReconnecting:
		return styles.LevelWarn
	case domain.PhaseDegraded, domain.PhaseFailed:
		return styles.LevelBad
	default:
		return styles.LevelNeutral
	}
}

// MessageBar renders a single status message between the content and
// the footer.
func MessageBar(s styles.Styles, width int, message string, isError bool) string {
	if message == "" {
		return ""
	}

	style := s.MutedText
	if isError {
		style = s.ErrorText
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Render(style.Render(message))
}
