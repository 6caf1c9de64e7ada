package main

import (
	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/harness"
)

// ListScenario verifies grouped listing and the JSON form.
func ListScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "justrun-list",
		Description: "Lists public recipes by group and includes private ones with --all.",
		Tags:        []string{"recipes"},
		Steps: []harness.Step{
			harness.NewStep("Setup project", func(ctx *harness.Context) error {
				_, err := setupProject(ctx, "list-project", 0)
				return err
			}),
			harness.NewStep("List public recipes", func(ctx *harness.Context) error {
				binary, err := findJustrunBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(binary, "list").Dir(ctx.GetString("project_dir"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "list should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "[dev]", "build is listed under its group"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "deploy env*", "required parameters are starred"); err != nil {
					return err
				}
				return assert.NotContains(result.Stdout, "_setup", "private recipes are hidden")
			}),
			harness.NewStep("List all recipes as JSON", func(ctx *harness.Context) error {
				binary, err := findJustrunBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(binary, "list", "--all", "--json").Dir(ctx.GetString("project_dir"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Contains(result.Stdout, `"name": "_setup"`, "--all includes private recipes"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, `"signature": "env*"`, "JSON carries the display signature")
			}),
		},
	}
}

// RunDetachedScenario runs a recipe with captured output and checks the history.
func RunDetachedScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "justrun-run-detached",
		Description: "Runs a recipe in detached mode, records it and re-runs it with 'last'.",
		Tags:        []string{"dispatch"},
		Steps: []harness.Step{
			harness.NewStep("Setup project", func(ctx *harness.Context) error {
				_, err := setupProject(ctx, "run-project", 0)
				return err
			}),
			harness.NewStep("Run deploy with a preset parameter", func(ctx *harness.Context) error {
				binary, err := findJustrunBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(binary, "deploy", "--set", "env=prod", "--yes").Dir(ctx.GetString("project_dir"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "deploy should succeed"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "ran: deploy prod", "recipe output is streamed")
			}),
			harness.NewStep("Check the run history", func(ctx *harness.Context) error {
				binary, err := findJustrunBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(binary, "history", "--json").Dir(ctx.GetString("project_dir"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Contains(result.Stdout, `"recipe": "deploy"`, "the run is recorded"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, `"status": "success"`, "the run succeeded")
			}),
			harness.NewStep("Re-run with 'last'", func(ctx *harness.Context) error {
				binary, err := findJustrunBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(binary, "last", "--yes").Dir(ctx.GetString("project_dir"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "last should succeed"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "ran: deploy prod", "last reuses the recorded inputs")
			}),
		},
	}
}

// RunFailureScenario checks exit codes and non-interactive errors.
func RunFailureScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "justrun-run-failure",
		Description: "A failing recipe's exit code is passed through; missing values are reported.",
		Tags:        []string{"dispatch"},
		Steps: []harness.Step{
			harness.NewStep("Setup failing project", func(ctx *harness.Context) error {
				_, err := setupProject(ctx, "failing-project", 3)
				return err
			}),
			harness.NewStep("Recipe exit code is passed through", func(ctx *harness.Context) error {
				binary, err := findJustrunBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(binary, "build").Dir(ctx.GetString("project_dir"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(3, result.ExitCode, "justrun exits with the recipe's status"); err != nil {
					return err
				}
				return assert.Contains(result.Stderr, "failed with exit code 3", "the failure is explained")
			}),
			harness.NewStep("Missing parameter without a terminal", func(ctx *harness.Context) error {
				binary, err := findJustrunBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(binary, "deploy", "--yes").Dir(ctx.GetString("project_dir"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(1, result.ExitCode, "justrun fails before dispatch"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stderr, "--set", "the error explains how to pass the value"); err != nil {
					return err
				}
				return assert.NotContains(result.Stdout, "ran: deploy", "nothing is run")
			}),
		},
	}
}
