// Package prompt defines the interactive collaborators the dispatcher talks to.
package prompt

import (
	"context"
	"errors"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled by user")

// Choice is one selectable item. Group, when set, is rendered as a header
// above the choices that share it.
type Choice struct {
	Label       string
	Description string
	Group       string
	Value       string
}

// InputRequest describes one free-text prompt.
type InputRequest struct {
	Title       string
	Placeholder string
	// Initial pre-fills the input.
	Initial string
	// Validate rejects a submission with a message shown inline; nil accepts anything.
	Validate func(string) error
}

// Prompter is the interactive surface: pick from a list, enter text, confirm.
// Every method returns ErrCancelled when the user aborts.
type Prompter interface {
	Pick(ctx context.Context, title string, choices []Choice) (Choice, error)
	Input(ctx context.Context, req InputRequest) (string, error)
	Confirm(ctx context.Context, message string) (bool, error)
}

// IsCancelled reports whether err is a user cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
