// Package tui renders the chainwatch dashboard with bubbletea. The model
// never touches aggregator state: it receives immutable view models from
// the engine through ProgramRenderer and owns only presentation state
// such as the window size and the theme index.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"nathanbeddoewebdev/chainwatch/internal/aggregator"
	"nathanbeddoewebdev/chainwatch/internal/tui/components"
	"nathanbeddoewebdev/chainwatch/internal/tui/styles"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Messages ---

// viewMsg carries a fresh view model from the engine.
type viewMsg struct {
	vm aggregator.ViewModel
}

// --- Key bindings ---

type keyMap struct {
	Quit  key.Binding
	Theme key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t", "T"),
			key.WithHelp("t", "theme"),
		),
	}
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{k.Theme, k.Quit}
}

// --- Dashboard model ---

type dashboardModel struct {
	cancel context.CancelFunc
	keys   keyMap

	theme  int
	styles styles.Styles

	vm     aggregator.ViewModel
	loaded bool

	width  int
	height int

	quitting bool
}

func newDashboardModel(cancel context.CancelFunc, theme int) dashboardModel {
	if cancel == nil {
		cancel = func() {}
	}
	return dashboardModel{
		cancel: cancel,
		keys:   defaultKeyMap(),
		theme:  theme,
		styles: styles.For(theme),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return nil
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case viewMsg:
		m.vm = msg.vm
		m.loaded = true
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Theme):
		m.theme = styles.NextTheme(m.theme)
		m.styles = styles.For(m.theme)
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting || m.width == 0 || m.height == 0 {
		return ""
	}
	s := m.styles

	right := styles.Themes[m.theme].Name
	if v := m.vm.Node.ClientVersion; v != "" {
		right = v + "  " + right
	}
	header := components.Header(s, m.width, "node", right, m.vm.Heartbeat)

	status := components.StatusBar(s, m.width,
		components.Feed{Name: "metrics", State: m.vm.MetricsConn},
		components.Feed{Name: "stream", State: m.vm.StreamConn},
	)
	footer := components.Footer(s, m.width, m.keys.bindings())

	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(status)-lipgloss.Height(footer), 1)
	content := m.renderContent(contentH)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, status, footer)
}

func (m dashboardModel) renderContent(height int) string {
	s := m.styles
	if !m.loaded {
		return lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			s.MutedText.Render("Waiting for the first update..."),
		)
	}

	var body string
	if m.width >= 100 {
		body = m.renderWide()
	} else {
		body = m.renderNarrow()
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(height).
		MaxHeight(height).
		Render(body)
}

// renderWide lays out two columns: figures on the left, charts and
// blocks on the right.
func (m dashboardModel) renderWide() string {
	s := m.styles
	vm := m.vm

	leftW := 50
	rightW := m.width - leftW - 2

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.card("Node", components.NodePanel(s, vm), leftW),
		m.card("Services", components.ServicesPanel(s, vm), leftW),
		m.card("System", components.SystemPanel(s, vm, leftW-4), leftW),
	)

	// Card border and padding take four columns, the gap two.
	chartW := (rightW - 6) / 2
	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		m.tpsChart(chartW),
		"  ",
		m.latencyChart(chartW),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.card("Throughput", charts, rightW),
		m.card("Blocks", components.BlockTable(s, vm.Blocks, rightW-4, vm.Now), rightW),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

func (m dashboardModel) renderNarrow() string {
	s := m.styles
	vm := m.vm
	w := m.width

	return lipgloss.JoinVertical(lipgloss.Left,
		m.card("Node", components.NodePanel(s, vm), w),
		m.card("Throughput", m.tpsChart(w-4), w),
		m.card("Blocks", components.BlockTable(s, vm.Blocks, w-4, vm.Now), w),
		m.card("Services", components.ServicesPanel(s, vm), w),
		m.card("System", components.SystemPanel(s, vm, w-4), w),
	)
}

func (m dashboardModel) tpsChart(width int) string {
	return components.MetricsChart(m.styles, components.Chart{
		Label: "TPS",
		Data:  m.vm.TPS,
		Color: m.styles.Palette.ChartTPS,
		Trend: m.vm.TPSTrend,
		Peak:  m.vm.PeakTPS,
	}, width)
}

func (m dashboardModel) latencyChart(width int) string {
	return components.MetricsChart(m.styles, components.Chart{
		Label:  "p99 latency",
		Data:   m.vm.Latency,
		Suffix: "ms",
		Color:  m.styles.Palette.ChartLatency,
		Trend:  m.vm.LatencyTrend,
	}, width)
}

func (m dashboardModel) card(title, body string, width int) string {
	return m.styles.Card.Width(width - 2).Render(
		m.styles.Subtitle.Render(title) + "\n" + strings.TrimRight(body, "\n"),
	)
}

// --- Program ---

// Options configures a Dashboard.
type Options struct {
	// Theme is the name of the initial theme. Empty selects the first.
	Theme string

	// Input and Output default to the terminal.
	Input  io.Reader
	Output io.Writer
}

// Dashboard owns the bubbletea program.
type Dashboard struct {
	program *tea.Program
	ctx     context.Context
}

// NewDashboard builds the dashboard program. cancel is called when the
// user quits so the engine and producers shut down with the program.
func NewDashboard(ctx context.Context, cancel context.CancelFunc, opts Options) (*Dashboard, error) {
	theme := 0
	if opts.Theme != "" {
		i, ok := styles.ThemeIndex(opts.Theme)
		if !ok {
			return nil, fmt.Errorf("tui: unknown theme %q", opts.Theme)
		}
		theme = i
	}

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	m := newDashboardModel(cancel, theme)
	return &Dashboard{
		program: tea.NewProgram(m, progOpts...),
		ctx:     ctx,
	}, nil
}

// Renderer returns the engine-facing side of the dashboard.
func (d *Dashboard) Renderer() ProgramRenderer {
	return ProgramRenderer{program: d.program}
}

// Run blocks until the user quits or the context is cancelled. A
// cancelled context is a normal shutdown, not an error.
func (d *Dashboard) Run() error {
	_, err := d.program.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && d.ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// ProgramRenderer forwards view models to a running program. Render
// blocks until the program accepts the message or has exited.
type ProgramRenderer struct {
	program *tea.Program
}

// Render implements engine.Renderer.
func (r ProgramRenderer) Render(vm aggregator.ViewModel) {
	r.program.Send(viewMsg{vm: vm})
}
