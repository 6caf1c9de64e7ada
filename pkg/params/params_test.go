package params

import (
	"context"
	"testing"

	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/pkg/prompt"
	"github.com/grovetools/justrun/pkg/prompt/prompttest"
	"github.com/grovetools/justrun/pkg/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func deployRecipe() recipe.Recipe {
	return recipe.Recipe{
		Name: "deploy",
		Parameters: []recipe.Parameter{
			{Name: "env", Kind: recipe.KindSingular},
			{Name: "region", Kind: recipe.KindSingular, Default: strPtr("us-east-1")},
			{Name: "targets", Kind: recipe.KindVariadic},
		},
	}
}

func TestValidateMissingRequired(t *testing.T) {
	r := recipe.Recipe{Name: "deploy", Parameters: []recipe.Parameter{{Name: "env", Kind: recipe.KindSingular}}}

	problems := Validate(r, nil)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "env")
	assert.Contains(t, problems[0], "missing")

	problems = Validate(r, []Input{Singular("env", "   ")})
	require.Len(t, problems, 1, "blank counts as missing")
}

func TestValidateUnknown(t *testing.T) {
	r := recipe.Recipe{Name: "build"}

	problems := Validate(r, []Input{Singular("bogus", "1")})
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "bogus")
	assert.Contains(t, problems[0], "unknown")
}

func TestValidateAccumulates(t *testing.T) {
	problems := Validate(deployRecipe(), []Input{Singular("bogus", "1"), Singular("other", "")})
	assert.Equal(t, []string{
		`missing required parameter "env"`,
		`missing required parameter "targets"`,
		`unknown parameter "bogus"`,
		`unknown parameter "other"`,
	}, problems)
}

func TestValidateOptionalParameters(t *testing.T) {
	r := recipe.Recipe{Name: "test", Parameters: []recipe.Parameter{
		{Name: "pkg", Kind: recipe.KindSingular, Default: strPtr("./...")},
		{Name: "rest", Kind: recipe.KindVariadic, AllowEmpty: true},
	}}
	assert.Empty(t, Validate(r, nil))
}

func TestValidationError(t *testing.T) {
	err := ValidationError(deployRecipe(), []Input{Singular("env", "prod"), Variadic("targets", "web")})
	assert.NoError(t, err)

	err = ValidationError(deployRecipe(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
	e, _ := errors.As(err)
	assert.Len(t, e.Details["errors"], 2)
}

func TestBuildArgumentsDropsBlankTokens(t *testing.T) {
	r := recipe.Recipe{Name: "build", Parameters: []recipe.Parameter{{Name: "flags", Kind: recipe.KindVariadic}}}
	args := BuildArguments(r, []Input{Variadic("flags", "--a", "", "--b")})
	assert.Equal(t, []string{"build", "--a", "--b"}, args)
}

func TestBuildArgumentsOmitsBlankSingular(t *testing.T) {
	r := recipe.Recipe{Name: "run", Parameters: []recipe.Parameter{
		{Name: "a", Kind: recipe.KindSingular},
		{Name: "b", Kind: recipe.KindSingular},
	}}
	args := BuildArguments(r, []Input{Singular("a", "  "), Singular("b", " two ")})
	assert.Equal(t, []string{"run", "two"}, args)
}

func TestBuildArgumentsUsesDeclaredOrder(t *testing.T) {
	inputs := []Input{
		Variadic("targets", "web", "api"),
		Singular("extra", "x"),
		Singular("region", "eu-west-1"),
		Singular("env", "prod"),
	}
	args := BuildArguments(deployRecipe(), inputs)
	assert.Equal(t, []string{"deploy", "prod", "eu-west-1", "web", "api", "x"}, args)
}

func TestBuildArgumentsNameOnly(t *testing.T) {
	assert.Equal(t, []string{"fmt"}, BuildArguments(recipe.Recipe{Name: "fmt"}, nil))
}

func TestDisplayString(t *testing.T) {
	r := recipe.Recipe{Name: "x", Parameters: []recipe.Parameter{
		{Name: "zeta", Kind: recipe.KindSingular},
		{Name: "files", Kind: recipe.KindVariadic},
		{Name: "alpha", Kind: recipe.KindSingular, Default: strPtr("1")},
		{Name: "rest", Kind: recipe.KindVariadic, AllowEmpty: true},
	}}
	assert.Equal(t, "alpha=1 zeta* +files* +rest*", DisplayString(r))

	star := recipe.Recipe{Name: "y", Parameters: []recipe.Parameter{
		{Name: "opts", Kind: recipe.KindVariadic, AllowEmpty: true, Default: strPtr("-q")},
	}}
	assert.Equal(t, "+opts=-q", DisplayString(star))

	// Rendering order never leaks into argument order.
	args := BuildArguments(r, []Input{Singular("alpha", "a"), Singular("zeta", "z"), Variadic("files", "f")})
	assert.Equal(t, []string{"x", "z", "f", "a"}, args)
}

func TestSummary(t *testing.T) {
	out := Summary("deploy", []Input{
		Singular("env", "prod"),
		Singular("region", ""),
		Variadic("targets", "web", "api"),
		Variadic("none"),
	})
	assert.Contains(t, out, "deploy")
	assert.Contains(t, out, "env: prod")
	assert.Contains(t, out, "region: (empty)")
	assert.Contains(t, out, "targets: web api")
	assert.Contains(t, out, "none: (empty)")
}

func TestPromptInDeclarationOrder(t *testing.T) {
	p := prompttest.New(
		prompttest.Step{Input: "prod"},
		prompttest.Step{Input: "eu-west-1"},
		prompttest.Step{Input: "web  api"},
	)
	n := NewNegotiator(p)

	inputs, err := n.Prompt(context.Background(), deployRecipe(), nil)
	require.NoError(t, err)
	assert.Equal(t, []Input{
		Singular("env", "prod"),
		Singular("region", "eu-west-1"),
		Variadic("targets", "web", "api"),
	}, inputs)

	require.Len(t, p.Calls, 3)
	assert.Equal(t, "us-east-1", p.Calls[1].Request.Initial, "defaults pre-fill the input")
	require.NotNil(t, p.Calls[0].Request.Validate)
	assert.Error(t, p.Calls[0].Request.Validate("   "), "required singular rejects blank")
	assert.NoError(t, p.Calls[0].Request.Validate("prod"))
	assert.Nil(t, p.Calls[1].Request.Validate)
}

func TestPromptCancelDiscardsPartialResult(t *testing.T) {
	p := prompttest.New(
		prompttest.Step{Input: "prod"},
		prompttest.Step{Cancel: true},
	)
	n := NewNegotiator(p)

	inputs, err := n.Prompt(context.Background(), deployRecipe(), nil)
	assert.ErrorIs(t, err, prompt.ErrCancelled)
	assert.Nil(t, inputs)
	assert.Equal(t, 0, p.Remaining())
}

func TestPromptWithPreset(t *testing.T) {
	p := prompttest.New(prompttest.Step{Input: "eu-west-1"})
	n := NewNegotiator(p)

	inputs, err := n.Prompt(context.Background(), deployRecipe(), map[string]string{
		"env":     "prod",
		"targets": "web api",
		"bogus":   "1",
	})
	require.NoError(t, err)
	assert.Equal(t, []Input{
		Singular("env", "prod"),
		Singular("region", "eu-west-1"),
		Variadic("targets", "web", "api"),
		Singular("bogus", "1"),
	}, inputs)
	assert.Equal(t, []string{`unknown parameter "bogus"`}, Validate(deployRecipe(), inputs))
}

func TestConfirmSummary(t *testing.T) {
	p := prompttest.New(prompttest.Step{Confirm: true})
	n := NewNegotiator(p)

	ok, err := n.ConfirmSummary(context.Background(), "deploy", []Input{Singular("env", "prod")})
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, p.Calls, 1)
	assert.Equal(t, "confirm", p.Calls[0].Kind)
	assert.Contains(t, p.Calls[0].Title, "env: prod")
}

func TestParsePreset(t *testing.T) {
	preset, err := ParsePreset([]string{"env=prod", "flags=--a --b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"env": "prod", "flags": "--a --b", "empty": ""}, preset)

	_, err = ParsePreset([]string{"novalue"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	for _, bad := range []string{"--env=prod", "my env=prod", "1st=x"} {
		_, err = ParsePreset([]string{bad})
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), bad)
	}
}

func TestFromPreset(t *testing.T) {
	inputs := FromPreset(deployRecipe(), map[string]string{"targets": "a b", "env": "dev", "zz": "1"})
	assert.Equal(t, []Input{
		Singular("env", "dev"),
		Variadic("targets", "a", "b"),
		Singular("zz", "1"),
	}, inputs)
}
