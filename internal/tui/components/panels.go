package components

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/aggregator"
	"nathanbeddoewebdev/chainwatch/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

const labelWidth = 12

func field(s styles.Styles, label, value string) string {
	return s.Label.Width(labelWidth).Render(label) + value
}

// NodePanel renders the chain-level figures of the view.
func NodePanel(s styles.Styles, vm aggregator.ViewModel) string {
	m := vm.Metrics
	if !vm.HasMetrics && vm.HeadBlock == 0 {
		return s.MutedText.Render("no metrics yet")
	}

	height := m.BlockHeight
	if vm.HeadBlock > height {
		height = vm.HeadBlock
	}

	lines := []string{
		field(s, "Height", s.Value.Render(humanize.Comma(int64(height)))),
		field(s, "Finalized", s.Value.Render(humanize.Comma(int64(m.FinalizedHeight)))+
			s.MutedText.Render(fmt.Sprintf("  lag %d", vm.FinalizedLag))),
		field(s, "Peers", s.Indicator(PeerLevel(m.PeerCount), fmt.Sprintf("%d %s", m.PeerCount, m.PeerHealth()))+
			" "+TrendArrow(s, vm.PeerTrend)),
		field(s, "TPS", s.Value.Render(fmt.Sprintf("%.1f", vm.CurrentTPS))+
			" "+TrendArrow(s, vm.TPSTrend)+
			s.MutedText.Render(fmt.Sprintf("  peak %.1f", vm.PeakTPS))),
		field(s, "p99 latency", s.Value.Render(fmt.Sprintf("%.1f ms", m.LatencyP99Ms))+" "+TrendArrow(s, vm.LatencyTrend)),
		field(s, "Pending", s.Value.Render(humanize.Comma(int64(m.PendingTxs)))),
	}

	syncLevel := styles.LevelWarn
	if vm.Synced {
		syncLevel = styles.LevelGood
	}
	lines = append(lines, field(s, "Sync", s.Indicator(syncLevel, styles.Percent(vm.SyncPercent))))

	if m.UptimeSeconds > 0 {
		lines = append(lines, field(s, "Uptime", s.Value.Render(FormatDuration(time.Duration(m.UptimeSeconds*float64(time.Second))))))
	}
	if vm.Node.GasPriceWei > 0 {
		lines = append(lines, field(s, "Gas price", s.Value.Render(fmt.Sprintf("%.2f gwei", vm.Node.GasPriceGwei()))))
	}
	if m.UpstreamValidators > 0 {
		lines = append(lines, field(s, "Validators", s.Value.Render(fmt.Sprintf("%d", m.UpstreamValidators))))
	}
	return strings.Join(lines, "\n")
}

// ServicesPanel renders service flags from the metrics endpoint followed
// by the host's systemd units, each sorted by name.
func ServicesPanel(s styles.Styles, vm aggregator.ViewModel) string {
	var lines []string
	for _, name := range sortedKeys(vm.Services) {
		lines = append(lines, upDown(s, name, vm.Services[name]))
	}
	for _, name := range sortedKeys(vm.System.Units) {
		lines = append(lines, upDown(s, name, vm.System.Units[name]))
	}
	if len(lines) == 0 {
		return s.MutedText.Render("no services reported")
	}
	return strings.Join(lines, "\n")
}

func upDown(s styles.Styles, name string, up bool) string {
	if up {
		return s.Indicator(styles.LevelGood, name)
	}
	return s.Indicator(styles.LevelBad, name)
}

// SystemPanel renders the host resource sample.
func SystemPanel(s styles.Styles, vm aggregator.ViewModel, width int) string {
	if !vm.HasSystem {
		return s.MutedText.Render("sampling host…")
	}
	st := vm.System
	barWidth := max(min(width-labelWidth-22, 20), 5)

	usage := func(label string, pct float64, detail string) string {
		line := field(s, label, s.Bar(pct, barWidth)+" "+s.Value.Render(styles.Percent(pct)))
		if detail != "" {
			line += s.MutedText.Render("  " + detail)
		}
		return line
	}

	lines := []string{
		field(s, "Host", s.Value.Render(st.Hostname)),
		usage("CPU", st.CPUPercent, fmt.Sprintf("load %.2f", st.Load1)),
		usage("Memory", st.MemPercent, humanize.IBytes(st.MemUsedBytes)+" / "+humanize.IBytes(st.MemTotalBytes)),
		usage("Disk", st.DiskPercent, st.DiskPath),
		field(s, "Network", s.Value.Render(
			fmt.Sprintf("↓ %s/s  ↑ %s/s", humanize.Bytes(uint64(st.NetRxBytesPerSec)), humanize.Bytes(uint64(st.NetTxBytesPerSec))),
		)),
	}
	if st.Uptime > 0 {
		lines = append(lines, field(s, "Uptime", s.Value.Render(FormatDuration(st.Uptime))))
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, width, "…")
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// PeerLevel colours a peer count using the same bands as PeerHealth.
func PeerLevel(peers uint64) styles.Level {
	switch {
	case peers == 0:
		return styles.LevelBad
	case peers <= 10:
		return styles.LevelWarn
	default:
		return styles.LevelGood
	}
}

// FormatDuration renders d as days, hours and minutes.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d/time.Second))
	}
	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	mins := int(d/time.Minute) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
