package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/docsearch/internal/session"
)

// RunPalette runs the bubbletea palette until the user quits or ctx is
// done.
func RunPalette(ctx context.Context, s Searcher, nav *Navigator, cfg Config) error {
	m := newPaletteModel(s, nav, cfg)

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if f, ok := cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}
	p := tea.NewProgram(m, opts...)

	// Listeners can fire inside Update, where a direct Send would block.
	// Snapshots may arrive out of order; apply drops older versions.
	unsubscribe := s.OnStateChange(func(st session.State) {
		go p.Send(stateMsg(st))
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// stateMsg carries a session snapshot into the program.
type stateMsg session.State

// paletteModel is the bubbletea model for the command palette.
type paletteModel struct {
	search      Searcher
	nav         *Navigator
	input       textinput.Model
	spinner     spinner.Model
	styles      Styles
	state       session.State
	title       string
	width       int
	openOnStart bool
	err         error
	quitting    bool
}

func newPaletteModel(s Searcher, nav *Navigator, cfg Config) *paletteModel {
	styles := GetStyles(cfg.NoColor || DetectNoColor())

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "search docs"
	ti.CharLimit = 256
	ti.PromptStyle = styles.Prompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Prompt

	title := cfg.Title
	if title == "" {
		title = "docsearch"
	}

	return &paletteModel{
		search:      s,
		nav:         nav,
		input:       ti,
		spinner:     sp,
		styles:      styles,
		state:       s.State(),
		title:       title,
		width:       80,
		openOnStart: cfg.OpenOnStart,
	}
}

// Init implements tea.Model.
func (m *paletteModel) Init() tea.Cmd {
	if m.openOnStart {
		m.open()
		return tea.Batch(textinput.Blink, m.spinner.Tick)
	}
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *paletteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.apply(session.State(msg))
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(m.width-10, 20)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *paletteModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if !m.state.Open {
		switch key {
		case "ctrl+k", "/":
			m.open()
			return m, textinput.Blink
		case "esc", "q":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch key {
	case "ctrl+k":
		return m, nil
	case "esc":
		m.search.Close()
		m.input.Blur()
		m.sync()
		return m, nil
	case "up", "ctrl+p":
		m.search.MoveSelection(-1)
		m.sync()
		return m, nil
	case "down", "ctrl+n":
		m.search.MoveSelection(1)
		m.sync()
		return m, nil
	case "enter":
		m.err = m.search.Confirm()
		m.sync()
		if !m.state.Open {
			m.input.Blur()
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.err = m.search.SetQuery(value)
		m.sync()
	}
	return m, cmd
}

func (m *paletteModel) open() {
	m.search.Open()
	m.input.Reset()
	m.input.Focus()
	m.err = nil
	m.sync()
}

func (m *paletteModel) sync() {
	m.apply(m.search.State())
}

// apply adopts st unless a newer snapshot was already seen.
func (m *paletteModel) apply(st session.State) {
	if st.Version < m.state.Version {
		return
	}
	m.state = st
}

// View implements tea.Model.
func (m *paletteModel) View() string {
	if m.quitting {
		return ""
	}

	width := max(m.width-4, 40)
	header := m.styles.Header.Render(m.title) +
		m.styles.Dim.Render(fmt.Sprintf("  %d entries", m.search.Len()))

	if !m.state.Open {
		lines := []string{header, "", m.styles.Path.Render("ctrl+k to search • q to quit")}
		if last, ok := m.nav.Last(); ok {
			lines = append(lines, m.styles.Success.Render("opened "+last))
		}
		if m.err != nil {
			lines = append(lines, m.styles.Error.Render(m.err.Error()))
		}
		return strings.Join(lines, "\n") + "\n"
	}

	body := append([]string{m.input.View()}, m.renderResults(width-4)...)
	panel := m.styles.Panel.Width(width).Render(strings.Join(body, "\n"))

	footer := m.styles.Dim.Render("↑/↓ move • enter open • esc close")
	if m.err != nil {
		footer = m.styles.Error.Render(m.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, panel, footer) + "\n"
}

func (m *paletteModel) renderResults(width int) []string {
	switch {
	case strings.TrimSpace(m.state.Query) == "":
		return []string{m.styles.Dim.Render("type to search")}
	case m.state.Pending:
		return []string{m.spinner.View() + " " + m.styles.Dim.Render("searching…")}
	case len(m.state.Results) == 0:
		return []string{m.styles.Warning.Render("no matches")}
	}

	lines := make([]string, 0, len(m.state.Results))
	for i, e := range m.state.Results {
		marker, title := "  ", m.styles.Item.Render(e.Title)
		if i == m.state.Selected {
			marker, title = m.styles.Selected.Render("▸ "), m.styles.Selected.Render(e.Title)
		}
		label := m.styles.Section.Render(fmt.Sprintf("%-9s", SectionLabel(e.Section)))
		used := 2 + 9 + 1 + lipgloss.Width(e.Title) + 2
		path := m.styles.Path.Render(truncatePath(e.Path, width-used))
		lines = append(lines, marker+label+" "+title+"  "+path)
	}
	return lines
}

// truncatePath shortens path to maxLen, keeping the last segment.
func truncatePath(path string, maxLen int) string {
	if path == "" || len(path) <= maxLen {
		return path
	}
	if maxLen < 4 {
		return ""
	}

	i := strings.LastIndex(path, "/")
	last := path[i+1:]
	if len(last)+4 > maxLen {
		return "..." + path[len(path)-maxLen+3:]
	}
	remaining := maxLen - len(last) - 4
	prefix := path[:max(i, 0)]
	if remaining <= 0 || len(prefix) <= remaining {
		return ".../" + last
	}
	return "..." + prefix[len(prefix)-remaining:] + "/" + last
}
