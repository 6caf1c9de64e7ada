// Package dispatch runs the selection, confirmation, parameter and dispatch
// pipeline for one recipe invocation.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/logging"
	"github.com/grovetools/justrun/pkg/params"
	"github.com/grovetools/justrun/pkg/prompt"
	"github.com/grovetools/justrun/pkg/recipe"
	"github.com/grovetools/justrun/pkg/runs"
	"github.com/grovetools/justrun/pkg/sessions"
)

// SessionPrefix starts the logical name of every attached-mode session.
const SessionPrefix = "Just: "

// RecipeSource is the part of recipe.Catalog the dispatcher reads.
type RecipeSource interface {
	Recipes(ctx context.Context, forceRefresh bool) []recipe.Recipe
	PublicRecipes(ctx context.Context, forceRefresh bool) []recipe.Recipe
	FindRecipe(ctx context.Context, name string, forceRefresh bool) (recipe.Recipe, bool)
}

// SessionResolver is the part of sessions.Manager the dispatcher uses.
type SessionResolver interface {
	ResolveOrCreate(ctx context.Context, name string, reuse bool) (*sessions.Session, error)
}

// History records runs. runs.Store implements it.
type History interface {
	Start(rec runs.Record) (runs.Record, error)
	Finish(rec runs.Record) error
	OpenLog(id string) (*runs.LogSink, error)
}

// Request is one invocation.
type Request struct {
	// Recipe names the recipe to run; empty means pick one.
	Recipe string
	// Browse groups the pick list by recipe group.
	Browse bool
	// IncludePrivate offers private recipes in the pick list.
	IncludePrivate bool
	// Preset supplies parameter values that are not prompted for.
	Preset map[string]string
	// Mode overrides Options.Mode when set.
	Mode         Mode
	ForceRefresh bool
}

// Outcome is the result of one invocation.
type Outcome struct {
	Status   Status
	ExitCode int
	Message  string
	RunID    string
	Recipe   string
	Inputs   []params.Input
	Args     []string
	Mode     Mode
	Session  string
	Duration time.Duration
}

// Err converts a failed outcome into a structured error, or returns nil.
func (o Outcome) Err() error {
	switch o.Status {
	case StatusRuntimeFailure:
		return errors.RuntimeFailure(o.Recipe, o.ExitCode)
	case StatusSpawnError:
		return errors.New(errors.ErrCodeSpawnFailed, o.Message).WithDetail("recipe", o.Recipe)
	}
	return nil
}

// Options configures a Dispatcher.
type Options struct {
	// Binary is the just executable.
	Binary string
	// Justfile is passed with --justfile when set.
	Justfile string
	// Dir is the workspace root processes run in.
	Dir  string
	Mode Mode
	// ReuseSession lets attached runs reuse a live session.
	ReuseSession bool
	// Shell quotes the command line typed into attached sessions.
	Shell sessions.Shell
	// AssumeYes answers every yes/no confirmation with yes.
	AssumeYes bool
	// Sink receives detached output. Nil discards it.
	Sink Sink
	// History records runs when set.
	History History
	// OnTransition observes every state change.
	OnTransition func(from, to State)
	Logger       *logrus.Entry
}

// Dispatcher drives one recipe invocation at a time through the pipeline.
// Construct it once per process; it holds no per-invocation state.
type Dispatcher struct {
	catalog    RecipeSource
	prompter   prompt.Prompter
	negotiator *params.Negotiator
	spawner    Spawner
	sessions   SessionResolver
	opts       Options
	logger     *logrus.Entry
	now        func() time.Time
}

// New creates a dispatcher.
func New(catalog RecipeSource, prompter prompt.Prompter, spawner Spawner, sessions SessionResolver, opts Options) *Dispatcher {
	if opts.Mode == "" {
		opts.Mode = ModeDetached
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("dispatch")
	}
	return &Dispatcher{
		catalog:    catalog,
		prompter:   prompter,
		negotiator: params.NewNegotiator(prompter),
		spawner:    spawner,
		sessions:   sessions,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

// run tracks the state of one invocation.
type run struct {
	d     *Dispatcher
	state State
	log   *logrus.Entry
}

func (r *run) to(next State) {
	from := r.state
	r.state = next
	r.log.WithFields(logrus.Fields{"from": from.String(), "to": next.String()}).Debug("State transition")
	if r.d.opts.OnTransition != nil {
		r.d.opts.OnTransition(from, next)
	}
}

// Run takes req through the pipeline. Cancellation yields a StatusCancelled
// outcome and a nil error. Spawn and runtime failures are outcome statuses.
// Errors are returned only for invocations that end before dispatch: unknown
// recipe, invalid parameters, or a prompt failure.
func (d *Dispatcher) Run(ctx context.Context, req Request) (Outcome, error) {
	r := &run{d: d, state: StateIdle, log: d.logger}
	defer func() {
		if r.state != StateIdle {
			r.to(StateIdle)
		}
	}()

	mode := req.Mode
	if mode == "" {
		mode = d.opts.Mode
	}
	out := Outcome{Mode: mode}

	cancelled := func() (Outcome, error) {
		r.to(StateCancelled)
		r.log.Info("Cancelled")
		out.Status = StatusCancelled
		return out, nil
	}
	abort := func(err error) (Outcome, error) {
		if prompt.IsCancelled(err) {
			return cancelled()
		}
		r.log.WithError(err).Debug("Aborted before dispatch")
		return out, err
	}

	r.to(StateSelecting)
	rec, err := d.selectRecipe(ctx, req)
	if err != nil {
		return abort(err)
	}
	out.Recipe = rec.Name
	r.log = r.log.WithField("recipe", rec.Name)

	if rec.Private {
		r.to(StatePrivateConfirm)
		ok, err := d.confirm(ctx, fmt.Sprintf("'%s' is a private recipe. Run it anyway?", rec.Name))
		if err != nil {
			return abort(err)
		}
		if !ok {
			return cancelled()
		}
	}

	if rec.NeedsConfirmation() {
		r.to(StateAttributeConfirm)
		ok, err := d.confirm(ctx, rec.ConfirmPrompt())
		if err != nil {
			return abort(err)
		}
		if !ok {
			return cancelled()
		}
	}

	r.to(StateParameterCollection)
	inputs, err := d.negotiator.Prompt(ctx, rec, req.Preset)
	if err != nil {
		return abort(err)
	}
	inputs = params.Ordered(rec, inputs)
	out.Inputs = inputs

	r.to(StateValidating)
	if err := params.ValidationError(rec, inputs); err != nil {
		return abort(err)
	}

	if len(rec.Parameters) > 0 {
		r.to(StateSummaryConfirm)
		ok, err := d.confirmSummary(ctx, rec.Name, inputs)
		if err != nil {
			return abort(err)
		}
		if !ok {
			return cancelled()
		}
	}

	r.to(StateDispatching)
	out.Args = params.BuildArguments(rec, inputs)
	start := d.now()
	if mode == ModeAttached {
		d.dispatchAttached(ctx, r, &out)
	} else {
		d.dispatchDetached(ctx, r, &out)
	}
	out.Duration = d.now().Sub(start)

	if out.Status == StatusSuccess {
		r.to(StateCompleted)
	} else {
		r.to(StateFailed)
	}
	return out, nil
}

func (d *Dispatcher) selectRecipe(ctx context.Context, req Request) (recipe.Recipe, error) {
	if req.Recipe != "" {
		rec, ok := d.catalog.FindRecipe(ctx, req.Recipe, req.ForceRefresh)
		if !ok {
			return recipe.Recipe{}, errors.RecipeNotFound(req.Recipe)
		}
		return rec, nil
	}

	var candidates []recipe.Recipe
	if req.IncludePrivate {
		candidates = d.catalog.Recipes(ctx, req.ForceRefresh)
	} else {
		candidates = d.catalog.PublicRecipes(ctx, req.ForceRefresh)
	}
	if len(candidates) == 0 {
		return recipe.Recipe{}, errors.New(errors.ErrCodeRecipeNotFound, "no recipes available")
	}

	var choices []prompt.Choice
	if req.Browse {
		choices = groupedChoices(candidates)
	} else {
		choices = flatChoices(candidates)
	}

	picked, err := d.prompter.Pick(ctx, "Select a recipe", choices)
	if err != nil {
		return recipe.Recipe{}, err
	}
	for _, rec := range candidates {
		if rec.Name == picked.Value {
			return rec, nil
		}
	}
	return recipe.Recipe{}, errors.RecipeNotFound(picked.Value)
}

func choiceFor(rec recipe.Recipe, group string) prompt.Choice {
	label := rec.Name
	if sig := params.DisplayString(rec); sig != "" {
		label += " " + sig
	}
	return prompt.Choice{Label: label, Description: rec.Doc, Group: group, Value: rec.Name}
}

func flatChoices(recipes []recipe.Recipe) []prompt.Choice {
	choices := make([]prompt.Choice, 0, len(recipes))
	for _, rec := range recipes {
		choices = append(choices, choiceFor(rec, ""))
	}
	return choices
}

// groupedChoices lists ungrouped recipes first, then each group by name. A
// recipe in several groups is offered once per group.
func groupedChoices(recipes []recipe.Recipe) []prompt.Choice {
	groups := recipe.GroupRecipes(recipes)
	var choices []prompt.Choice
	for _, name := range recipe.SortedGroupNames(groups) {
		for _, rec := range groups[name] {
			choices = append(choices, choiceFor(rec, name))
		}
	}
	return choices
}

func (d *Dispatcher) confirm(ctx context.Context, message string) (bool, error) {
	if d.opts.AssumeYes {
		return true, nil
	}
	return d.prompter.Confirm(ctx, message)
}

func (d *Dispatcher) confirmSummary(ctx context.Context, name string, inputs []params.Input) (bool, error) {
	if d.opts.AssumeYes {
		return true, nil
	}
	return d.negotiator.ConfirmSummary(ctx, name, inputs)
}

// commandArgs prefixes the argument vector with the justfile flag.
func (d *Dispatcher) commandArgs(args []string) []string {
	var full []string
	if d.opts.Justfile != "" {
		full = append(full, "--justfile", d.opts.Justfile)
	}
	return append(full, args...)
}

func (d *Dispatcher) binary() string {
	if d.opts.Binary == "" {
		return "just"
	}
	return d.opts.Binary
}

func (d *Dispatcher) startRecord(r *run, out *Outcome) (runs.Record, bool) {
	if d.opts.History == nil {
		return runs.Record{}, false
	}
	rec, err := d.opts.History.Start(runs.Record{
		Recipe:           out.Recipe,
		Args:             out.Args,
		Mode:             string(out.Mode),
		WorkingDirectory: d.opts.Dir,
	})
	if err != nil {
		r.log.WithError(err).Warn("Could not record run")
		return runs.Record{}, false
	}
	out.RunID = rec.ID
	return rec, true
}

func (d *Dispatcher) finishRecord(r *run, rec runs.Record, out *Outcome) {
	switch out.Status {
	case StatusSuccess:
		rec.Status = runs.StatusSuccess
		if out.Mode == ModeAttached {
			rec.Status = runs.StatusSent
		}
	case StatusRuntimeFailure:
		rec.Status = runs.StatusRuntimeFailure
	default:
		rec.Status = runs.StatusSpawnError
	}
	if out.Mode == ModeDetached && out.Status != StatusSpawnError {
		code := out.ExitCode
		rec.ExitCode = &code
	}
	rec.Message = out.Message
	rec.Session = out.Session
	if err := d.opts.History.Finish(rec); err != nil {
		r.log.WithError(err).Warn("Could not record run result")
	}
}

func (d *Dispatcher) dispatchDetached(ctx context.Context, r *run, out *Outcome) {
	rec, recorded := d.startRecord(r, out)
	sink := d.opts.Sink
	if recorded {
		logSink, err := d.opts.History.OpenLog(rec.ID)
		if err != nil {
			r.log.WithError(err).Warn("Could not capture run output")
		} else {
			defer logSink.Close()
			rec.LogFile = logSink.Path()
			sink = MultiSink{sink, NewWriterSink(logSink)}
		}
		defer d.finishRecord(r, rec, out)
	}

	binary := d.binary()
	proc, err := d.spawner.Spawn(ctx, SpawnRequest{
		Binary: binary,
		Args:   d.commandArgs(out.Args),
		Dir:    d.opts.Dir,
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to start recipe")
		out.Status = StatusSpawnError
		out.Message = describe(err)
		return
	}

	for chunk := range proc.Chunks() {
		if sink != nil {
			sink.Append(chunk)
		}
	}

	code, err := proc.Wait()
	if err != nil {
		r.log.WithError(err).Error("Failed waiting for recipe")
		out.Status = StatusRuntimeFailure
		out.ExitCode = code
		out.Message = err.Error()
		return
	}

	out.ExitCode = code
	if code == 0 {
		out.Status = StatusSuccess
		r.log.Info("Recipe completed")
		return
	}
	out.Status = StatusRuntimeFailure
	r.log.WithField("exit_code", code).Info("Recipe failed")
}

func (d *Dispatcher) dispatchAttached(ctx context.Context, r *run, out *Outcome) {
	rec, recorded := d.startRecord(r, out)
	if recorded {
		defer d.finishRecord(r, rec, out)
	}

	name := SessionPrefix + out.Recipe
	session, err := d.sessions.ResolveOrCreate(ctx, name, d.opts.ReuseSession)
	if err != nil {
		r.log.WithError(err).Error("Failed to open session")
		out.Status = StatusSpawnError
		out.Message = describe(err)
		return
	}
	out.Session = session.Terminal.ID()

	line := d.opts.Shell.Compose(append([]string{d.binary()}, d.commandArgs(out.Args)...))
	r.log.WithFields(logrus.Fields{"session": out.Session, "command": line}).Debug("Sending to session")
	if err := session.Send(ctx, line); err != nil {
		out.Status = StatusSpawnError
		out.Message = describe(errors.SessionFailed(name, err))
		return
	}
	if err := session.Show(ctx); err != nil {
		r.log.WithError(err).Warn("Could not show session")
	}
	out.Status = StatusSuccess
}

// describe renders err without its error code.
func describe(err error) string {
	e, ok := errors.As(err)
	if !ok {
		return err.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}
