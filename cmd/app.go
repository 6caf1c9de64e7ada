// Package cmd holds the justrun command tree and its composition root.
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/justrun/cli"
	"github.com/grovetools/justrun/command"
	"github.com/grovetools/justrun/config"
	"github.com/grovetools/justrun/pkg/dispatch"
	"github.com/grovetools/justrun/pkg/profiling"
	"github.com/grovetools/justrun/pkg/prompt"
	"github.com/grovetools/justrun/pkg/recipe"
	"github.com/grovetools/justrun/pkg/runs"
	"github.com/grovetools/justrun/pkg/sessions"
	"github.com/grovetools/justrun/tui"
	tuiprompt "github.com/grovetools/justrun/tui/prompt"
)

// App is everything one justrun process needs, built once by newApp.
type App struct {
	Config      *config.Config
	Root        string
	Interactive bool
	Builder     *command.SafeBuilder
	Catalog     *recipe.Catalog
	Prompter    prompt.Prompter
	Sessions    *sessions.Manager
	Runs        *runs.Store
	Dispatcher  *dispatch.Dispatcher
	Logger      *logrus.Entry
	Out         io.Writer
	ErrOut      io.Writer
}

// appOptions are the per-command settings that shape the dispatcher.
type appOptions struct {
	AssumeYes bool
}

// newApp loads configuration and wires the catalog, prompter, session
// manager, run history and dispatcher.
func newApp(cmd *cobra.Command, opts appOptions) (*App, error) {
	cfg, err := cli.LoadConfig(cli.GetOptions(cmd))
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root := cfg.WorkspaceRoot(cwd)
	logger := cli.GetLogger(cmd, "justrun")
	logger.WithFields(logrus.Fields{"root": root, "mode": cfg.Dispatch.Mode, "backend": cfg.Session.Backend}).Debug("Configuration loaded")

	builder := command.NewSafeBuilder()
	discoverer := recipe.NewJustDiscoverer(builder, cfg.Just.Path, cfg.Just.Justfile, root)
	catalog := recipe.NewCatalog(timedDiscoverer(discoverer), recipe.WithLogger(cli.GetLogger(cmd, "catalog")))

	interactive := tui.IsInteractive()
	var prompter prompt.Prompter = prompt.NonInteractive{}
	if interactive {
		tui.InitializeTUI()
		prompter = tuiprompt.New()
	}

	backend, err := sessions.NewBackend(cfg, builder, root, interactive)
	if err != nil {
		return nil, err
	}
	manager := sessions.NewManager(backend, sessions.WithLogger(cli.GetLogger(cmd, "sessions")))

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	dopts := dispatch.Options{
		Binary:       cfg.Just.Path,
		Justfile:     cfg.Just.Justfile,
		Dir:          root,
		Mode:         dispatch.Mode(cfg.Dispatch.Mode),
		ReuseSession: cfg.ReuseSession(),
		Shell:        sessions.DefaultShell(cfg.Shell),
		AssumeYes:    opts.AssumeYes,
		Sink:         &dispatch.WriterSink{Stdout: out, Stderr: errOut},
		OnTransition: func(from, to dispatch.State) { profiling.Mark(to.String()) },
		Logger:       cli.GetLogger(cmd, "dispatch"),
	}

	store, err := runs.NewDefaultStore()
	if err != nil {
		logger.WithError(err).Warn("Run history unavailable")
		store = nil
	} else {
		dopts.History = store
	}

	app := &App{
		Config:      cfg,
		Root:        root,
		Interactive: interactive,
		Builder:     builder,
		Catalog:     catalog,
		Prompter:    prompter,
		Sessions:    manager,
		Runs:        store,
		Logger:      logger,
		Out:         out,
		ErrOut:      errOut,
	}
	app.Dispatcher = dispatch.New(catalog, prompter, dispatch.NewProcessSpawner(builder), manager, dopts)
	return app, nil
}

// Close releases sessions owned by this process.
func (a *App) Close() error {
	return a.Sessions.Close()
}

// timedDiscoverer records each discovery run as a timing span.
func timedDiscoverer(d recipe.Discoverer) recipe.Discoverer {
	return recipe.DiscovererFunc(func(ctx context.Context) ([]byte, error) {
		defer profiling.Start("discover recipes").Stop()
		return d.Discover(ctx)
	})
}
