package components

import (
	"fmt"
	"strings"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/domain"
	"nathanbeddoewebdev/chainwatch/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

const (
	colNumber = 12
	colTxs    = 6
	colGasBar = 10
	colGasPct = 7
	colAge    = 6
)

// BlockTable renders recent blocks, highest first, as they arrive from
// the aggregator. The hash column takes whatever width is left.
//
//	BLOCK        HASH              TXS  GAS                AGE
//	12,345,678   0x9f3c…e1a2        42  █████░░░░░  51.2%   2s
func BlockTable(s styles.Styles, blocks []domain.BlockEvent, width int, now time.Time) string {
	if len(blocks) == 0 {
		return s.MutedText.Render("waiting for blocks…")
	}

	hashWidth := max(width-colNumber-colTxs-colGasBar-colGasPct-colAge-6, 8)

	header := strings.Join([]string{
		s.TableHeader.Width(colNumber).Render("BLOCK"),
		s.TableHeader.Width(hashWidth).Render("HASH"),
		s.TableHeader.Width(colTxs).Align(lipgloss.Right).Render("TXS"),
		s.TableHeader.Width(colGasBar + 1 + colGasPct).Render("GAS"),
		s.TableHeader.Width(colAge).Align(lipgloss.Right).Render("AGE"),
	}, " ")

	rows := make([]string, 0, len(blocks)+1)
	rows = append(rows, header)
	for _, b := range blocks {
		gasPct := b.GasPercent()
		gas := s.MutedText.Width(colGasBar + 1 + colGasPct).Render("-")
		if b.GasLimit > 0 {
			gas = s.Bar(gasPct, colGasBar) + " " + s.TableCell.Width(colGasPct).Align(lipgloss.Right).Render(styles.Percent(gasPct))
		}
		rows = append(rows, strings.Join([]string{
			s.AccentText.Width(colNumber).Render(humanize.Comma(int64(b.Number))),
			s.MutedText.Width(hashWidth).Render(ansi.Truncate(b.Hash, hashWidth, "…")),
			s.TableCell.Width(colTxs).Align(lipgloss.Right).Render(fmt.Sprintf("%d", b.TxCount)),
			gas,
			s.MutedText.Width(colAge).Align(lipgloss.Right).Render(FormatAge(blockTime(b), now)),
		}, " "))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// blockTime prefers the block's own timestamp over its arrival time.
func blockTime(b domain.BlockEvent) time.Time {
	if !b.Timestamp.IsZero() {
		return b.Timestamp
	}
	return b.ReceivedAt
}

// FormatAge renders how long ago t was, in the largest whole unit.
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}
