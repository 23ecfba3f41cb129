package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/pgscope/internal/theme"
)

// textModel is the free-text prompt. Enter submits the line as typed, esc
// or ctrl+c cancels.
type textModel struct {
	message string
	input   textinput.Model

	submitted string
	cancelled bool
}

func newTextModel(message string) textModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	return textModel{
		message: message,
		input:   ti,
	}
}

func (m textModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			m.submitted = m.input.Value()
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m textModel) View() string {
	th := theme.Current

	var b strings.Builder
	b.WriteString(th.Message.Render(m.message))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}
