package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/grovetools/justrun/tui/theme"
)

// PrettyLogger writes styled, user-facing lines.
type PrettyLogger struct {
	writer io.Writer
	theme  *theme.Theme
}

// NewPrettyLogger creates a pretty logger that writes to the global output.
func NewPrettyLogger() *PrettyLogger {
	return &PrettyLogger{
		writer: GetGlobalOutput(),
		theme:  theme.DefaultTheme,
	}
}

// WithWriter sets a custom writer for pretty output.
func (p *PrettyLogger) WithWriter(w io.Writer) *PrettyLogger {
	p.writer = w
	return p
}

// Success prints a message with a check mark.
func (p *PrettyLogger) Success(message string) {
	fmt.Fprintf(p.writer, "%s %s\n", p.theme.Success.Render(theme.IconSuccess), p.theme.Success.Render(message))
}

// InfoPretty prints an informational message.
func (p *PrettyLogger) InfoPretty(message string) {
	fmt.Fprintln(p.writer, p.theme.Info.Render(message))
}

// WarnPretty prints a warning.
func (p *PrettyLogger) WarnPretty(message string) {
	fmt.Fprintf(p.writer, "%s %s\n", p.theme.Warning.Render(theme.IconWarning), p.theme.Warning.Render(message))
}

// ErrorPretty prints an error, with its cause when err is non-nil.
func (p *PrettyLogger) ErrorPretty(message string, err error) {
	fmt.Fprintf(p.writer, "%s %s", p.theme.Error.Render(theme.IconError), p.theme.Error.Render(message))
	if err != nil {
		fmt.Fprintf(p.writer, ": %s", p.theme.Error.Render(err.Error()))
	}
	fmt.Fprintln(p.writer)
}

// Field prints a key-value pair.
func (p *PrettyLogger) Field(key string, value interface{}) {
	fmt.Fprintf(p.writer, "%s: %s\n", p.theme.Muted.Render(key), p.theme.Bold.Render(fmt.Sprint(value)))
}

// Path prints a labelled file path.
func (p *PrettyLogger) Path(label, path string) {
	fmt.Fprintf(p.writer, "%s: %s\n", p.theme.Muted.Render(label), p.theme.Recipe.Render(path))
}

// Code prints a command or output block, indented.
func (p *PrettyLogger) Code(content string) {
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintln(p.writer, p.theme.Code.Render(line))
	}
}

// Divider prints a horizontal rule.
func (p *PrettyLogger) Divider() {
	fmt.Fprintln(p.writer, p.theme.Muted.Render(strings.Repeat("─", 60)))
}
