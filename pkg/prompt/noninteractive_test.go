package prompt

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jrerrors "github.com/grovetools/justrun/errors"
)

func TestNonInteractive(t *testing.T) {
	ctx := context.Background()
	var p Prompter = NonInteractive{}

	_, err := p.Pick(ctx, "Select a recipe", []Choice{{Label: "build", Value: "build"}})
	require.Error(t, err)
	assert.True(t, jrerrors.Is(err, jrerrors.ErrCodeInvalidInput))

	v, err := p.Input(ctx, InputRequest{Title: "deploy: region", Initial: "us"})
	require.NoError(t, err)
	assert.Equal(t, "us", v)

	required := func(s string) error {
		if s == "" {
			return fmt.Errorf("required")
		}
		return nil
	}
	_, err = p.Input(ctx, InputRequest{Title: "deploy: env", Validate: required})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deploy: env needs a value")

	ok, err := p.Confirm(ctx, "Deploy to prod?")
	require.Error(t, err)
	assert.False(t, ok)
	assert.False(t, IsCancelled(err))
}
