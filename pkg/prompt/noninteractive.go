package prompt

import (
	"context"
	"fmt"

	jrerrors "github.com/grovetools/justrun/errors"
)

// NonInteractive answers prompts without a terminal: inputs take their
// pre-filled value when it validates, everything else is an error telling
// the user which flag to pass instead.
type NonInteractive struct{}

func (NonInteractive) Pick(ctx context.Context, title string, choices []Choice) (Choice, error) {
	return Choice{}, jrerrors.New(jrerrors.ErrCodeInvalidInput,
		"no terminal to choose a recipe in: pass the recipe name as an argument")
}

func (NonInteractive) Input(ctx context.Context, req InputRequest) (string, error) {
	if req.Validate == nil || req.Validate(req.Initial) == nil {
		return req.Initial, nil
	}
	return "", jrerrors.New(jrerrors.ErrCodeInvalidInput,
		fmt.Sprintf("%s needs a value: pass it with --set name=value", req.Title))
}

func (NonInteractive) Confirm(ctx context.Context, message string) (bool, error) {
	return false, jrerrors.New(jrerrors.ErrCodeInvalidInput,
		fmt.Sprintf("confirmation required (%q): rerun with --yes", message))
}
