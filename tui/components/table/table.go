// Package table renders themed lipgloss tables for command output.
package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/grovetools/justrun/tui/theme"
)

// Options configures Render.
type Options struct {
	Headers []string
	// StatusColumn is the column colored by StatusColors, or -1.
	StatusColumn int
	// StatusColors maps a status cell value to its foreground color.
	StatusColors map[string]lipgloss.TerminalColor
	Theme        *theme.Theme
}

// Render draws rows under a bold header inside a rounded border.
func Render(opts Options, rows [][]string) string {
	t := opts.Theme
	if t == nil {
		t = theme.DefaultTheme
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(t.Colors.Orange).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	tbl := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Colors.Border)).
		Headers(opts.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return header
			}
			if col == opts.StatusColumn && row >= 0 && row < len(rows) && col < len(rows[row]) {
				if c, ok := opts.StatusColors[rows[row][col]]; ok {
					return cell.Foreground(c)
				}
			}
			return cell
		})
	return tbl.Render()
}
