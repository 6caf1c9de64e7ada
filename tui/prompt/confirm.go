package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/justrun/tui/theme"
)

// confirmModel asks a yes/no question. The highlighted answer starts at No.
type confirmModel struct {
	message string
	yes     bool
	help    help.Model

	answered  bool
	cancelled bool
}

func newConfirmModel(message string) confirmModel {
	return confirmModel{message: message, help: help.New()}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, confirmKeys.Yes):
			m.yes, m.answered = true, true
			return m, tea.Quit
		case key.Matches(msg, confirmKeys.No):
			m.yes, m.answered = false, true
			return m, tea.Quit
		case key.Matches(msg, confirmKeys.Toggle):
			m.yes = !m.yes
		case key.Matches(msg, confirmKeys.Submit):
			m.answered = true
			return m, tea.Quit
		case key.Matches(msg, confirmKeys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	t := theme.DefaultTheme
	yes, no := t.Muted.Render(" Yes "), t.Muted.Render(" No ")
	if m.yes {
		yes = t.Selected.Render(" Yes ")
	} else {
		no = t.Selected.Render(" No ")
	}

	var b strings.Builder
	b.WriteString(t.Box.Render(m.message))
	b.WriteString("\n")
	b.WriteString(yes + "  " + no)
	b.WriteString("\n")
	b.WriteString(m.help.View(confirmKeys))
	return b.String()
}
