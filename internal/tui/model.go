// Package tui is the interactive row browser. It is a thin reactive shell:
// every key event updates plain inputs (row ordinal, focused pattern) and
// re-renders by calling the pure resolver/renderer functions again.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/trellis-data/trellis/api"
	"github.com/trellis-data/trellis/internal/manifest"
	"github.com/trellis-data/trellis/internal/render"
	"github.com/trellis-data/trellis/internal/source"
)

// Config wires the browser to its collaborators.
type Config struct {
	DatasetName string
	Source      source.Source
	Patterns    []api.Path
	Manifest    *manifest.Manifest // may be nil
	DatasetPref string
	SessionPref string
	RenderOpts  render.Options
}

// Model is the Bubble Tea model for the browser.
type Model struct {
	cfg      Config
	viewport viewport.Model
	rowIdx   int
	// focus is the focused pattern index; -1 shows all patterns.
	focus  int
	ready  bool
	status string
}

// New creates a browser model over a loaded dataset.
func New(cfg Config) Model {
	vp := viewport.New(0, 0)
	return Model{
		cfg:      cfg,
		viewport: vp,
		focus:    -1,
		status:   fmt.Sprintf("%d rows. ←/→ rows, tab fields, q quits.", cfg.Source.NumRows()),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update handles key and window events and re-derives the rendered view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := contentBoxStyle.GetFrameSize()
		reserved := 2 + 1 + fh // header + status + box frame
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderCurrentRow())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "right", "l":
			if m.rowIdx < m.cfg.Source.NumRows()-1 {
				m.rowIdx++
				m.viewport.SetContent(m.renderCurrentRow())
				m.viewport.GotoTop()
			}
			return m, nil
		case "left", "h":
			if m.rowIdx > 0 {
				m.rowIdx--
				m.viewport.SetContent(m.renderCurrentRow())
				m.viewport.GotoTop()
			}
			return m, nil
		case "tab":
			m.focus++
			if m.focus >= len(m.cfg.Patterns) {
				m.focus = -1
			}
			m.viewport.SetContent(m.renderCurrentRow())
			return m, nil
		case "shift+tab":
			m.focus--
			if m.focus < -1 {
				m.focus = len(m.cfg.Patterns) - 1
			}
			m.viewport.SetContent(m.renderCurrentRow())
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the layout: header, row content, status bar.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render(fmt.Sprintf("%s — row %d/%d (%s)",
		m.cfg.DatasetName, m.rowIdx+1, m.cfg.Source.NumRows(), m.cfg.Source.RowID(m.rowIdx)))
	content := contentBoxStyle.Render(m.viewport.View())
	return header + "\n" + content + "\n" + statusStyle.Render(m.statusLine())
}

// renderCurrentRow re-invokes the pure resolver over the current inputs.
func (m Model) renderCurrentRow() string {
	row, err := m.cfg.Source.Row(m.rowIdx)
	if err != nil {
		return "Error: " + err.Error()
	}
	patterns := m.cfg.Patterns
	if m.focus >= 0 && m.focus < len(patterns) {
		patterns = patterns[m.focus : m.focus+1]
	}
	out, err := render.RenderRow(row, patterns, m.cfg.RenderOpts)
	if err != nil {
		return "Error: " + err.Error()
	}
	if strings.TrimSpace(out) == "" {
		return "(no matching fields in this row)"
	}
	return out
}

func (m Model) statusLine() string {
	if m.focus < 0 || m.focus >= len(m.cfg.Patterns) {
		return m.status
	}
	p := m.cfg.Patterns[m.focus]
	line := "field: " + p.String()
	if m.cfg.Manifest != nil {
		computed := m.cfg.Manifest.Embeddings(p)
		if name, ok := manifest.Pick(computed, m.cfg.DatasetPref, m.cfg.SessionPref); ok {
			line += " · embedding: " + name
		}
	}
	return line
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	contentBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)
