package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/grovetools/justrun/cli"
	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/pkg/sessions"
	"github.com/grovetools/justrun/tui/components/table"
	"github.com/grovetools/justrun/tui/theme"
)

type sessionInfo struct {
	Name string `json:"name"`
	PID  int    `json:"pid,omitempty"`
}

// NewSessionsCmd creates the `sessions` command group.
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List attached-mode tmux sessions",
		Long: `List the tmux sessions justrun created for attached runs. Sessions live
on justrun's own tmux server (see session.tmux_socket) and survive the
justrun process, so later runs of the same recipe reuse them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := tmuxBackend(cmd)
			if err != nil {
				return err
			}
			names, err := backend.List(cmd.Context())
			if err != nil {
				return err
			}

			infos := make([]sessionInfo, 0, len(names))
			for _, name := range names {
				info := sessionInfo{Name: name}
				if pid, err := backend.PanePID(cmd.Context(), name); err == nil {
					info.PID = pid
				}
				infos = append(infos, info)
			}

			if cli.GetOptions(cmd).JSONOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), theme.DefaultTheme.Muted.Render("No justrun sessions running."))
				return nil
			}
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				pid := "-"
				if info.PID > 0 {
					pid = strconv.Itoa(info.PID)
				}
				rows = append(rows, []string{info.Name, pid})
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.Render(table.Options{Headers: []string{"SESSION", "PID"}, StatusColumn: -1}, rows))
			return nil
		},
	}

	cmd.AddCommand(newSessionsKillCmd(), newSessionsShowCmd())
	return cmd
}

func newSessionsKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill <session>",
		Short: "End a justrun tmux session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := tmuxBackend(cmd)
			if err != nil {
				return err
			}
			if err := backend.Kill(cmd.Context(), args[0]); err != nil {
				return errors.SessionFailed(args[0], err)
			}
			return nil
		},
	}
}

func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session>",
		Short: "Print what a justrun tmux session currently shows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := tmuxBackend(cmd)
			if err != nil {
				return err
			}
			out, err := backend.Capture(cmd.Context(), args[0])
			if err != nil {
				return errors.SessionFailed(args[0], err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// tmuxBackend returns the configured backend when it is tmux.
func tmuxBackend(cmd *cobra.Command) (*sessions.TmuxBackend, error) {
	app, err := newApp(cmd, appOptions{})
	if err != nil {
		return nil, err
	}
	backend, ok := app.Sessions.Backend().(*sessions.TmuxBackend)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("the %s session backend keeps no sessions between runs", app.Sessions.Backend().Name()))
	}
	return backend, nil
}
