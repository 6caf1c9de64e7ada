package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/justrun/pkg/prompt"
	"github.com/grovetools/justrun/tui/theme"
)

// inputModel is a single-line text input with inline validation.
type inputModel struct {
	title    string
	input    textinput.Model
	validate func(string) error
	errMsg   string
	help     help.Model

	value     string
	submitted bool
	cancelled bool
}

func newInputModel(req prompt.InputRequest) inputModel {
	ti := textinput.New()
	ti.Placeholder = req.Placeholder
	ti.CharLimit = 1024
	ti.Width = 60
	ti.SetValue(req.Initial)
	ti.CursorEnd()
	ti.Focus()

	return inputModel{
		title:    req.Title,
		input:    ti,
		validate: req.Validate,
		help:     help.New(),
	}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, inputKeys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, inputKeys.Submit):
			value := m.input.Value()
			if m.validate != nil {
				if err := m.validate(value); err != nil {
					m.errMsg = err.Error()
					return m, nil
				}
			}
			m.value = value
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.errMsg = ""
	return m, cmd
}

func (m inputModel) View() string {
	t := theme.DefaultTheme
	var b strings.Builder
	b.WriteString(t.Bold.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(t.Error.Render(theme.IconError + " " + m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(inputKeys))
	return b.String()
}
