package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/pgscope/internal/theme"
)

const maxVisible = 10

// searchModel is the live-filtered selection prompt. Typing refilters the
// suggestion list through the SuggestFunc; up/down move the highlight,
// enter picks, esc or ctrl+c cancels.
type searchModel struct {
	message string
	input   textinput.Model
	suggest SuggestFunc

	matches []Suggestion
	cursor  int
	offset  int // scroll offset into matches

	chosen    string
	cancelled bool
}

func newSearchModel(message string, suggest SuggestFunc) searchModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	return searchModel{
		message: message,
		input:   ti,
		suggest: suggest,
		matches: suggest(""),
	}
}

func (m searchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
				m.ensureVisible()
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.matches)-1 {
				m.cursor++
				m.ensureVisible()
			}
			return m, nil

		case "enter":
			if m.cursor < len(m.matches) {
				m.chosen = m.matches[m.cursor].Value
				return m, tea.Quit
			}
			return m, nil
		}
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prev {
		m.matches = m.suggest(m.input.Value())
		m.cursor = 0
		m.offset = 0
	}
	return m, cmd
}

func (m searchModel) View() string {
	th := theme.Current

	var b strings.Builder
	b.WriteString(th.Message.Render(m.message))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if len(m.matches) == 0 {
		b.WriteString(th.MutedText.Render("  no matches"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.offset + maxVisible
	if end > len(m.matches) {
		end = len(m.matches)
	}
	for i := m.offset; i < end; i++ {
		s := m.matches[i]
		line := s.Label
		if s.Detail != "" {
			line += "  " + th.Detail.Render(s.Detail)
		}
		if i == m.cursor {
			b.WriteString(th.Selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(m.matches) > maxVisible {
		b.WriteString(th.MutedText.Render("  ..."))
		b.WriteString("\n")
	}
	return b.String()
}

// ensureVisible keeps the highlighted match inside the visible window.
func (m *searchModel) ensureVisible() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+maxVisible {
		m.offset = m.cursor - maxVisible + 1
	}
}
