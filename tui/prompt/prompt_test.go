package prompt

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/justrun/pkg/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sendKeys(m tea.Model, keys ...tea.KeyMsg) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

var testChoices = []prompt.Choice{
	{Label: "build", Description: "Compile", Group: "ci"},
	{Label: "lint", Group: "ci"},
	{Label: "fmt", Description: "Format sources"},
}

func TestPickNavigatesAndSelects(t *testing.T) {
	m := sendKeys(newPickModel("Recipes", testChoices),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyEnter},
	).(pickModel)

	require.NotNil(t, m.chosen)
	assert.Equal(t, "lint", m.chosen.Label)
	assert.False(t, m.cancelled)
}

func TestPickFilter(t *testing.T) {
	m := sendKeys(newPickModel("Recipes", testChoices),
		keyRunes("/"),
		keyRunes("f"),
		keyRunes("o"),
		keyRunes("r"),
	).(pickModel)

	assert.True(t, m.filtering)
	require.Len(t, m.filtered, 1)
	assert.Equal(t, 2, m.filtered[0])
	assert.Contains(t, m.View(), "fmt")

	m = sendKeys(m, tea.KeyMsg{Type: tea.KeyEnter}).(pickModel)
	require.NotNil(t, m.chosen)
	assert.Equal(t, "fmt", m.chosen.Label)
}

func TestPickEscClearsFilterThenCancels(t *testing.T) {
	m := sendKeys(newPickModel("Recipes", testChoices),
		keyRunes("/"),
		keyRunes("z"),
	).(pickModel)
	assert.Empty(t, m.filtered)

	m = sendKeys(m, tea.KeyMsg{Type: tea.KeyEsc}).(pickModel)
	assert.False(t, m.filtering)
	assert.Len(t, m.filtered, 3)
	assert.False(t, m.cancelled)

	m = sendKeys(m, tea.KeyMsg{Type: tea.KeyEsc}).(pickModel)
	assert.True(t, m.cancelled)
	assert.Nil(t, m.chosen)
}

func TestPickViewShowsGroupHeadersOnce(t *testing.T) {
	view := newPickModel("Recipes", testChoices).View()
	assert.Equal(t, 1, countOccurrences(view, "ci\n"))
	assert.Contains(t, view, "Compile")
}

func TestPickVisibleRangeFollowsCursor(t *testing.T) {
	var many []prompt.Choice
	for i := 0; i < 50; i++ {
		many = append(many, prompt.Choice{Label: string(rune('a' + i%26))})
	}
	m := newPickModel("Recipes", many)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 16})
	m = next.(pickModel)
	m.cursor = 40

	start, end := m.visibleRange()
	assert.Equal(t, 10, end-start)
	assert.True(t, start <= 40 && 40 < end)
}

func TestInputValidationBlocksSubmit(t *testing.T) {
	m := newInputModel(prompt.InputRequest{
		Title: "env",
		Validate: func(s string) error {
			if s == "" {
				return errors.New("env is required")
			}
			return nil
		},
	})

	m = sendKeys(m, tea.KeyMsg{Type: tea.KeyEnter}).(inputModel)
	assert.False(t, m.submitted)
	assert.Equal(t, "env is required", m.errMsg)
	assert.Contains(t, m.View(), "env is required")

	m = sendKeys(m, keyRunes("p"), keyRunes("r"), keyRunes("o"), keyRunes("d")).(inputModel)
	assert.Empty(t, m.errMsg)
	m = sendKeys(m, tea.KeyMsg{Type: tea.KeyEnter}).(inputModel)
	assert.True(t, m.submitted)
	assert.Equal(t, "prod", m.value)
}

func TestInputInitialValueAndCancel(t *testing.T) {
	m := newInputModel(prompt.InputRequest{Title: "region", Initial: "us-east-1"})
	done := sendKeys(m, tea.KeyMsg{Type: tea.KeyEnter}).(inputModel)
	assert.Equal(t, "us-east-1", done.value)

	cancelled := sendKeys(m, tea.KeyMsg{Type: tea.KeyEsc}).(inputModel)
	assert.True(t, cancelled.cancelled)
	assert.False(t, cancelled.submitted)
}

func TestConfirm(t *testing.T) {
	yes := sendKeys(newConfirmModel("Deploy?"), keyRunes("y")).(confirmModel)
	assert.True(t, yes.answered)
	assert.True(t, yes.yes)

	defaultNo := sendKeys(newConfirmModel("Deploy?"), tea.KeyMsg{Type: tea.KeyEnter}).(confirmModel)
	assert.True(t, defaultNo.answered)
	assert.False(t, defaultNo.yes)

	toggled := sendKeys(newConfirmModel("Deploy?"), tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter}).(confirmModel)
	assert.True(t, toggled.yes)

	cancelled := sendKeys(newConfirmModel("Deploy?"), tea.KeyMsg{Type: tea.KeyEsc}).(confirmModel)
	assert.True(t, cancelled.cancelled)
	assert.Contains(t, newConfirmModel("Deploy to prod?").View(), "Deploy to prod?")
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
