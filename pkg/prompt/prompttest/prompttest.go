// Package prompttest provides a scripted Prompter for tests.
package prompttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/grovetools/justrun/pkg/prompt"
)

// Step is one scripted answer.
type Step struct {
	// Pick selects the choice with this label.
	Pick string
	// Input is submitted to an input prompt; it must pass the request's validator.
	Input string
	// Confirm answers a confirmation.
	Confirm bool
	// Cancel aborts whichever prompt consumes this step.
	Cancel bool
}

// Call records one prompt the code under test issued.
type Call struct {
	Kind    string // "pick", "input" or "confirm"
	Title   string
	Choices []prompt.Choice
	Request prompt.InputRequest
}

// Prompter replays Steps in order and records every call.
type Prompter struct {
	mu    sync.Mutex
	steps []Step
	Calls []Call
}

// New creates a scripted prompter.
func New(steps ...Step) *Prompter {
	return &Prompter{steps: steps}
}

// Remaining returns the number of unconsumed steps.
func (p *Prompter) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.steps)
}

func (p *Prompter) next(call Call) (Step, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, call)
	if len(p.steps) == 0 {
		return Step{}, fmt.Errorf("prompttest: unexpected %s prompt %q", call.Kind, call.Title)
	}
	step := p.steps[0]
	p.steps = p.steps[1:]
	return step, nil
}

// Pick implements prompt.Prompter.
func (p *Prompter) Pick(ctx context.Context, title string, choices []prompt.Choice) (prompt.Choice, error) {
	step, err := p.next(Call{Kind: "pick", Title: title, Choices: choices})
	if err != nil {
		return prompt.Choice{}, err
	}
	if step.Cancel {
		return prompt.Choice{}, prompt.ErrCancelled
	}
	for _, c := range choices {
		if c.Label == step.Pick || (c.Value != "" && c.Value == step.Pick) {
			return c, nil
		}
	}
	return prompt.Choice{}, fmt.Errorf("prompttest: no choice %q", step.Pick)
}

// Input implements prompt.Prompter. A submission the validator rejects is an
// error, since a real prompt would never return it.
func (p *Prompter) Input(ctx context.Context, req prompt.InputRequest) (string, error) {
	step, err := p.next(Call{Kind: "input", Title: req.Title, Request: req})
	if err != nil {
		return "", err
	}
	if step.Cancel {
		return "", prompt.ErrCancelled
	}
	if req.Validate != nil {
		if err := req.Validate(step.Input); err != nil {
			return "", fmt.Errorf("prompttest: input %q rejected: %w", step.Input, err)
		}
	}
	return step.Input, nil
}

// Confirm implements prompt.Prompter.
func (p *Prompter) Confirm(ctx context.Context, message string) (bool, error) {
	step, err := p.next(Call{Kind: "confirm", Title: message})
	if err != nil {
		return false, err
	}
	if step.Cancel {
		return false, prompt.ErrCancelled
	}
	return step.Confirm, nil
}
