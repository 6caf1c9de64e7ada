package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/grovetools/justrun/cli"
	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/logging"
	"github.com/grovetools/justrun/pkg/profiling"
	"github.com/grovetools/justrun/version"
)

// ExitSpawnFailed is the exit status when just itself could not be started.
const ExitSpawnFailed = 127

// NewRootCmd builds the justrun command tree. The root command runs a recipe
// like `justrun run`.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand("justrun", "Pick, parameterize and run just recipes")
	root.Long = `Pick a recipe from the justfile in the current workspace, fill in its
parameters, confirm and run it. Without a recipe name justrun shows a picker.

Examples:
  # Pick a recipe interactively
  justrun

  # Run deploy with a preset parameter, skipping confirmations
  justrun deploy --set env=prod --yes

  # Run test in a persistent terminal session
  justrun test --attached
`
	root.Args = cobra.MaximumNArgs(1)

	flags := &runFlags{}
	flags.register(root)
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runRecipe(cmd, args, flags)
	}

	root.AddCommand(
		NewRunCmd(),
		NewListCmd(),
		NewLoopCmd(),
		NewLastCmd(),
		NewHistoryCmd(),
		NewLogsCmd(),
		NewSessionsCmd(),
		NewConfigCmd(),
		cli.NewVersionCommand("justrun"),
	)
	return root
}

// Execute runs the command tree and returns the process exit status.
func Execute(ctx context.Context) int {
	return execute(ctx, NewRootCmd())
}

func execute(ctx context.Context, root *cobra.Command) int {
	profiler := profiling.NewCobraProfiler(logging.NewLogger("profiling"))
	profiler.AddFlags(root)
	root.PersistentPreRunE = profiler.PreRun
	cli.SetVersionTemplate(root, version.GetInfo())
	cli.ApplyStyledHelpRecursive(root)

	err := root.ExecuteContext(ctx)
	profiler.PostRun(root)
	if err == nil {
		return 0
	}

	verbose, _ := root.PersistentFlags().GetBool("verbose")
	cli.NewErrorHandler(root.ErrOrStderr(), verbose).Handle(err)
	return ExitCode(err)
}

// ExitCode maps an error to a process exit status: 127 when just could not be
// started, the recipe's own status when it failed, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeSpawnFailed:
		return ExitSpawnFailed
	case errors.ErrCodeRuntimeFailure:
		e, _ := errors.As(err)
		if code, ok := e.Details["exitCode"].(int); ok && code > 0 && code < 256 {
			return code
		}
	}
	return 1
}
