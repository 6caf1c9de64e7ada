package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/justrun/cli"
	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/logging"
	"github.com/grovetools/justrun/pkg/dispatch"
	"github.com/grovetools/justrun/pkg/recipe"
)

// NewLoopCmd creates the `loop` command.
func NewLoopCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "loop",
		Short: "Pick and run recipes until cancelled",
		Long: `Show the picker again after every run. Edits to the justfile are picked
up between runs. Press Esc or Ctrl+C in the picker to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(nil)
			if err != nil {
				return err
			}

			app, err := newApp(cmd, appOptions{AssumeYes: flags.yes})
			if err != nil {
				return err
			}
			defer app.Close()

			if !app.Interactive {
				return errors.New(errors.ErrCodeInvalidInput, "loop needs an interactive terminal")
			}

			watcher, err := recipe.NewWatcher(app.Root, app.Catalog, func(path string) {
				app.Logger.WithField("path", path).Debug("Recipes will be rediscovered")
			})
			if err != nil {
				app.Logger.WithError(err).Warn("Not watching the justfile for changes")
			} else {
				defer watcher.Close()
				go watcher.Start(cmd.Context())
			}

			handler := cli.NewErrorHandler(cmd.ErrOrStderr(), cli.GetOptions(cmd).Verbose)
			pretty := logging.NewPrettyLogger().WithWriter(cmd.ErrOrStderr())
			for cmd.Context().Err() == nil {
				out, err := app.Dispatcher.Run(cmd.Context(), req)
				if err == nil && out.Status == dispatch.StatusCancelled {
					return nil
				}
				if err := app.report(out, err); err != nil {
					handler.Handle(err)
				} else if out.Mode == dispatch.ModeDetached {
					pretty.Success(fmt.Sprintf("'%s' finished in %s", out.Recipe, out.Duration.Round(time.Millisecond)))
				}
				pretty.Divider()
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
