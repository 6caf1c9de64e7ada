// Package prompt implements the interactive prompts with bubbletea.
package prompt

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/justrun/logging"
	"github.com/grovetools/justrun/pkg/prompt"
)

// Prompter renders prompts on the terminal. Prompts draw on stderr so that
// stdout stays free for recipe output.
type Prompter struct {
	in  io.Reader
	out io.Writer
}

// New returns a terminal prompter on stdin and stderr.
func New() *Prompter {
	return &Prompter{in: os.Stdin, out: os.Stderr}
}

// NewWithIO returns a prompter on the given streams.
func NewWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

var _ prompt.Prompter = (*Prompter)(nil)

// run executes one program and returns its final model. Structured logs are
// silenced while the program owns the screen.
func (p *Prompter) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	logging.SetGlobalOutput(io.Discard)
	defer logging.SetGlobalOutput(os.Stderr)

	program := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil {
			return nil, prompt.ErrCancelled
		}
		return nil, err
	}
	return final, nil
}

// Pick implements prompt.Prompter.
func (p *Prompter) Pick(ctx context.Context, title string, choices []prompt.Choice) (prompt.Choice, error) {
	final, err := p.run(ctx, newPickModel(title, choices))
	if err != nil {
		return prompt.Choice{}, err
	}
	m := final.(pickModel)
	if m.cancelled || m.chosen == nil {
		return prompt.Choice{}, prompt.ErrCancelled
	}
	return *m.chosen, nil
}

// Input implements prompt.Prompter.
func (p *Prompter) Input(ctx context.Context, req prompt.InputRequest) (string, error) {
	final, err := p.run(ctx, newInputModel(req))
	if err != nil {
		return "", err
	}
	m := final.(inputModel)
	if m.cancelled || !m.submitted {
		return "", prompt.ErrCancelled
	}
	return m.value, nil
}

// Confirm implements prompt.Prompter.
func (p *Prompter) Confirm(ctx context.Context, message string) (bool, error) {
	final, err := p.run(ctx, newConfirmModel(message))
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.cancelled || !m.answered {
		return false, prompt.ErrCancelled
	}
	return m.yes, nil
}
