package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/justrun/pkg/prompt"
	"github.com/grovetools/justrun/tui/theme"
)

// pickModel is a filterable single-choice list with optional group headers.
type pickModel struct {
	title     string
	choices   []prompt.Choice
	filtered  []int
	cursor    int
	filter    textinput.Model
	filtering bool
	height    int
	help      help.Model

	chosen    *prompt.Choice
	cancelled bool
}

func newPickModel(title string, choices []prompt.Choice) pickModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Prompt = "/ "
	ti.CharLimit = 128

	m := pickModel{
		title:   title,
		choices: choices,
		filter:  ti,
		help:    help.New(),
	}
	m.applyFilter()
	return m
}

func (m pickModel) Init() tea.Cmd {
	return nil
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFiltering(msg)
		}
		switch {
		case key.Matches(msg, pickKeys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, pickKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, pickKeys.Down):
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
		case key.Matches(msg, pickKeys.Filter):
			m.filtering = true
			cmd := m.filter.Focus()
			return m, cmd
		case key.Matches(msg, pickKeys.Select):
			return m.choose()
		}
	}
	return m, nil
}

func (m pickModel) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		return m.choose()
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m pickModel) choose() (tea.Model, tea.Cmd) {
	if len(m.filtered) == 0 {
		return m, nil
	}
	c := m.choices[m.filtered[m.cursor]]
	m.chosen = &c
	return m, tea.Quit
}

// applyFilter keeps choices whose label or description contains the filter text.
func (m *pickModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.filtered = m.filtered[:0]
	for i, c := range m.choices {
		if query == "" ||
			strings.Contains(strings.ToLower(c.Label), query) ||
			strings.Contains(strings.ToLower(c.Description), query) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// visibleRange returns the slice of filtered rows that fits the terminal.
func (m pickModel) visibleRange() (int, int) {
	rows := len(m.filtered)
	limit := m.height - 6
	if m.height == 0 || limit >= rows || limit < 3 {
		return 0, rows
	}
	start := m.cursor - limit/2
	if start < 0 {
		start = 0
	}
	if start+limit > rows {
		start = rows - limit
	}
	return start, start + limit
}

func (m pickModel) View() string {
	t := theme.DefaultTheme
	var b strings.Builder

	b.WriteString(t.Title.Render(m.title))
	b.WriteString("\n")
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.filtered) == 0 {
		b.WriteString(t.Muted.Render("  no matches"))
		b.WriteString("\n")
	}

	start, end := m.visibleRange()
	lastGroup := ""
	for row := start; row < end; row++ {
		c := m.choices[m.filtered[row]]
		if c.Group != "" && (row == start || c.Group != lastGroup) {
			fmt.Fprintf(&b, "%s %s\n", t.Group.Render(theme.IconGroup), t.Group.Render(c.Group))
		}
		lastGroup = c.Group

		indent := "  "
		if c.Group != "" {
			indent = "    "
		}
		cursor := " "
		label := t.Recipe.Render(c.Label)
		if row == m.cursor {
			cursor = t.Cursor.Render(theme.IconArrow)
			label = t.Highlight.Render(c.Label)
		}
		b.WriteString(indent + cursor + " " + label)
		if c.Description != "" {
			b.WriteString("  " + t.Muted.Render(c.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(pickKeys))
	return b.String()
}
