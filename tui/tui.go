// Package tui holds terminal setup shared by justrun's interactive prompts.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// InitializeTUI sets the lipgloss color profile from the environment.
// NO_COLOR disables color; CLICOLOR_FORCE=1 or COLORTERM=truecolor forces
// true color, which keeps output stable when recorded by test harnesses.
func InitializeTUI() {
	switch {
	case os.Getenv("NO_COLOR") != "":
		lipgloss.SetColorProfile(termenv.Ascii)
	case os.Getenv("CLICOLOR_FORCE") == "1" || os.Getenv("COLORTERM") == "truecolor":
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}

// IsInteractive reports whether prompts can be shown: stdin and stderr must
// both be terminals.
func IsInteractive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stderr)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
