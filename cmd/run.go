package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/justrun/command"
	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/logging"
	"github.com/grovetools/justrun/pkg/dispatch"
	"github.com/grovetools/justrun/pkg/params"
	"github.com/grovetools/justrun/pkg/recipe"
	"github.com/grovetools/justrun/state"
)

// runFlags are shared by the root command and `justrun run`.
type runFlags struct {
	browse   bool
	all      bool
	set      []string
	yes      bool
	attached bool
	detached bool
	refresh  bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.browse, "browse", "b", false, "Group the picker by recipe group")
	cmd.Flags().BoolVarP(&f.all, "all", "a", false, "Offer private recipes in the picker")
	cmd.Flags().StringArrayVarP(&f.set, "set", "s", nil, "Preset a parameter (name=value, repeatable)")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Answer yes to every confirmation")
	cmd.Flags().BoolVar(&f.attached, "attached", false, "Run in a persistent terminal session")
	cmd.Flags().BoolVar(&f.detached, "detached", false, "Run as a child process and stream its output")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "Rediscover recipes instead of using the cache")
	cmd.MarkFlagsMutuallyExclusive("attached", "detached")
}

func (f *runFlags) request(args []string) (dispatch.Request, error) {
	preset, err := params.ParsePreset(f.set)
	if err != nil {
		return dispatch.Request{}, err
	}
	req := dispatch.Request{
		Browse:         f.browse,
		IncludePrivate: f.all,
		Preset:         preset,
		ForceRefresh:   f.refresh,
	}
	if len(args) > 0 {
		if err := command.NewSafeBuilder().Validate("recipeName", args[0]); err != nil {
			return dispatch.Request{}, errors.Wrap(err, errors.ErrCodeInvalidInput, err.Error())
		}
		req.Recipe = args[0]
	}
	switch {
	case f.attached:
		req.Mode = dispatch.ModeAttached
	case f.detached:
		req.Mode = dispatch.ModeDetached
	}
	return req, nil
}

// NewRunCmd creates the `run` command.
func NewRunCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [recipe]",
		Short: "Pick, confirm and run a recipe",
		Long: `Run a recipe through selection, confirmation and parameter prompts.
Use this form when a recipe shares its name with a justrun command.

Examples:
  justrun run list
  justrun run build --detached
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipe(cmd, args, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runRecipe(cmd *cobra.Command, args []string, flags *runFlags) error {
	req, err := flags.request(args)
	if err != nil {
		return err
	}

	app, err := newApp(cmd, appOptions{AssumeYes: flags.yes})
	if err != nil {
		return err
	}
	defer app.Close()

	out, err := app.Dispatcher.Run(cmd.Context(), req)
	return app.report(out, err)
}

// report remembers a dispatched run and turns a failed outcome into an error.
func (a *App) report(out dispatch.Outcome, err error) error {
	if err != nil {
		return err
	}
	if out.Status == dispatch.StatusCancelled {
		a.Logger.WithField("recipe", out.Recipe).Info("Cancelled")
		return nil
	}

	a.rememberLastRun(out)

	pretty := logging.NewPrettyLogger().WithWriter(a.ErrOut)
	switch out.Status {
	case dispatch.StatusSuccess:
		if out.Mode == dispatch.ModeAttached {
			pretty.Success(fmt.Sprintf("Sent '%s' to session %q", out.Recipe, out.Session))
		} else {
			a.Logger.WithFields(logrus.Fields{
				"recipe":   out.Recipe,
				"duration": out.Duration.Round(time.Millisecond).String(),
			}).Debug("Recipe finished")
		}
	}
	return out.Err()
}

// rememberLastRun stores the recipe and its inputs for `justrun last`.
func (a *App) rememberLastRun(out dispatch.Outcome) {
	last := state.LastRun{
		Recipe: out.Recipe,
		Inputs: presetFromInputs(out.Inputs),
		Mode:   string(out.Mode),
		RunID:  out.RunID,
		At:     time.Now(),
	}
	if err := state.SaveLastRun(a.Root, last); err != nil {
		a.Logger.WithError(err).Warn("Could not record last run")
	}
}

// presetFromInputs turns collected inputs back into name=value presets.
// Variadic values are joined with spaces, which is how presets split them.
func presetFromInputs(inputs []params.Input) map[string]string {
	if len(inputs) == 0 {
		return nil
	}
	preset := make(map[string]string, len(inputs))
	for _, in := range inputs {
		if in.Kind == recipe.KindVariadic {
			preset[in.Name] = strings.Join(in.Values, " ")
		} else {
			preset[in.Name] = in.Value
		}
	}
	return preset
}
