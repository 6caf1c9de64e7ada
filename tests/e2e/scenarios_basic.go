package main

import (
	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/command"
	"github.com/grovetools/tend/pkg/harness"
)

// VersionScenario tests the 'version' command.
func VersionScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "justrun-basic-version",
		Steps: []harness.Step{
			harness.NewStep("Run 'justrun version'", func(ctx *harness.Context) error {
				binary, err := findJustrunBinary()
				if err != nil {
					return err
				}

				cmd := command.New(binary, "version")
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "justrun version should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "Version:", "Output should contain Version"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "Commit:", "Output should contain Commit")
			}),
		},
	}
}

// ConfigSchemaScenario checks that the generated schema describes the settings.
func ConfigSchemaScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "justrun-config-schema",
		Tags: []string{"config"},
		Steps: []harness.Step{
			harness.NewStep("Print the schema", func(ctx *harness.Context) error {
				binary, err := findJustrunBinary()
				if err != nil {
					return err
				}

				cmd := ctx.Command(binary, "config", "schema")
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "config schema should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "reuse_session", "schema should describe dispatch.reuse_session"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "tmux_socket", "schema should describe session.tmux_socket")
			}),
		},
	}
}
