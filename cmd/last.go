package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/pkg/dispatch"
	"github.com/grovetools/justrun/state"
)

// NewLastCmd creates the `last` command.
func NewLastCmd() *cobra.Command {
	var (
		yes  bool
		show bool
	)
	cmd := &cobra.Command{
		Use:   "last",
		Short: "Run the last recipe again with the same inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, appOptions{AssumeYes: yes})
			if err != nil {
				return err
			}
			defer app.Close()

			last, ok, err := state.LoadLastRun(app.Root)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "could not read the last run")
			}
			if !ok || last.Recipe == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no recipe has been run in this workspace yet")
			}

			if show {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", last.Recipe, last.At.Local().Format("2006-01-02 15:04:05"))
				names := make([]string, 0, len(last.Inputs))
				for name := range last.Inputs {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s=%s\n", name, last.Inputs[name])
				}
				return nil
			}

			out, err := app.Dispatcher.Run(cmd.Context(), dispatch.Request{
				Recipe:         last.Recipe,
				IncludePrivate: true,
				Preset:         last.Inputs,
				Mode:           dispatch.Mode(last.Mode),
			})
			return app.report(out, err)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Answer yes to every confirmation")
	cmd.Flags().BoolVar(&show, "show", false, "Print the last run instead of running it")
	return cmd
}
