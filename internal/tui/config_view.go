package tui

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/chainwatch/internal/config"
	"nathanbeddoewebdev/chainwatch/internal/tui/components"
	"nathanbeddoewebdev/chainwatch/internal/tui/styles"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Config messages ---

type configSavedMsg struct{}

type configSaveErrorMsg struct {
	err error
}

// --- Config key bindings ---

type configKeyMap struct {
	Quit   key.Binding
	Up     key.Binding
	Down   key.Binding
	Edit   key.Binding
	Save   key.Binding
	Cancel key.Binding
}

func defaultConfigKeyMap() configKeyMap {
	return configKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("e", "edit"),
		),
		Save: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// --- Config model ---

type configViewModel struct {
	cfg    *config.Config
	keys   []config.KeySpec
	keymap configKeyMap
	styles styles.Styles
	save   func(*config.Config) error

	cursor  int
	editing bool
	editor  textinput.Model

	width  int
	height int

	status  string
	isError bool
}

func newConfigViewModel(cfg *config.Config, save func(*config.Config) error) configViewModel {
	theme, _ := styles.ThemeIndex(cfg.Theme)
	return configViewModel{
		cfg:    cfg,
		keys:   config.Keys,
		keymap: defaultConfigKeyMap(),
		styles: styles.For(theme),
		save:   save,
	}
}

// RunConfigView starts the interactive config viewer/editor TUI.
func RunConfigView() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	m := newConfigViewModel(cfg, (*config.Config).Save)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func (m configViewModel) Init() tea.Cmd {
	return nil
}

func (m configViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case configSavedMsg:
		m.editing = false
		m.status = "Configuration saved"
		m.isError = false
		return m, nil

	case configSaveErrorMsg:
		m.status = "Error: " + msg.err.Error()
		m.isError = true
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m configViewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.keys)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.Edit):
		spec := m.keys[m.cursor]
		ti := textinput.New()
		ti.SetValue(spec.Get(m.cfg))
		ti.Focus()
		ti.Width = 40
		ti.Placeholder = "enter value"
		m.editor = ti
		m.editing = true
		m.status = ""
		return m, textinput.Blink
	}

	return m, nil
}

func (m configViewModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Cancel):
		m.editing = false
		return m, nil
	case key.Matches(msg, m.keymap.Save):
		return m.commit(strings.TrimSpace(m.editor.Value()))
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// commit applies value to the selected key. The change is kept only if
// the whole configuration still validates.
func (m configViewModel) commit(value string) (tea.Model, tea.Cmd) {
	spec := m.keys[m.cursor]
	next := *m.cfg
	if err := spec.Set(&next, value); err != nil {
		m.status = "Error: " + err.Error()
		m.isError = true
		return m, nil
	}
	if err := next.Validate(); err != nil {
		m.status = "Error: " + err.Error()
		m.isError = true
		return m, nil
	}

	*m.cfg = next
	if spec.Name == "theme" {
		theme, _ := styles.ThemeIndex(next.Theme)
		m.styles = styles.For(theme)
	}
	return m, m.saveConfig()
}

func (m configViewModel) saveConfig() tea.Cmd {
	cfg := *m.cfg
	return func() tea.Msg {
		if err := m.save(&cfg); err != nil {
			return configSaveErrorMsg{err: err}
		}
		return configSavedMsg{}
	}
}

func (m configViewModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	s := m.styles

	header := components.Header(s, m.width, "config", "", 0)

	var bindings []key.Binding
	if m.editing {
		bindings = []key.Binding{m.keymap.Save, m.keymap.Cancel}
	} else {
		bindings = []key.Binding{m.keymap.Up, m.keymap.Down, m.keymap.Edit, m.keymap.Quit}
	}
	footer := components.Footer(s, m.width, bindings)
	statusBar := components.MessageBar(s, m.width, m.status, m.isError)

	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer)-lipgloss.Height(statusBar), 1)
	content := m.renderContent(contentH)

	sections := []string{header, content}
	if statusBar != "" {
		sections = append(sections, statusBar)
	}
	sections = append(sections, footer)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m configViewModel) renderContent(height int) string {
	s := m.styles
	title := s.Title.Render("Configuration")

	cardWidth := 64
	labelWidth := 20

	rows := make([]string, 0, len(m.keys)+1)
	for i, spec := range m.keys {
		selected := i == m.cursor

		prefix := "  "
		if selected {
			prefix = s.AccentText.Render("> ")
		}

		value := spec.Get(m.cfg)
		if value == "" {
			value = "(not set)"
		}

		var row string
		switch {
		case selected && m.editing:
			row = prefix + s.Label.Width(labelWidth).Render(spec.Name) + m.editor.View()
		case selected:
			row = prefix + s.Label.Width(labelWidth).Render(spec.Name) + s.Value.Bold(true).Render(value)
		default:
			row = prefix + s.MutedText.Width(labelWidth).Render(spec.Name) + s.MutedText.Render(value)
		}
		rows = append(rows, row)

		if selected && !m.editing {
			rows = append(rows, strings.Repeat(" ", 4)+s.MutedText.Italic(true).Render(spec.Description))
		}
	}

	card := s.Card.Width(cardWidth).Render(strings.Join(rows, "\n"))
	combined := lipgloss.JoinVertical(lipgloss.Center, title, "", card)

	return lipgloss.Place(
		m.width, height,
		lipgloss.Center, lipgloss.Center,
		combined,
	)
}
