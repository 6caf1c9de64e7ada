package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/grovetools/justrun/cli"
	"github.com/grovetools/justrun/pkg/runs"
	"github.com/grovetools/justrun/tui/components/table"
	"github.com/grovetools/justrun/tui/theme"
)

// NewHistoryCmd creates the `history` command.
func NewHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent recipe runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := runs.NewDefaultStore()
			if err != nil {
				return err
			}
			records, err := store.List(limit)
			if err != nil {
				return err
			}

			if cli.GetOptions(cmd).JSONOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			renderHistory(cmd.OutOrStdout(), records, time.Now())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	return cmd
}

func renderHistory(w io.Writer, records []runs.Record, now time.Time) {
	t := theme.DefaultTheme
	if len(records) == 0 {
		fmt.Fprintln(w, t.Muted.Render("No runs recorded yet."))
		return
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		exit := "-"
		if r.ExitCode != nil {
			exit = strconv.Itoa(*r.ExitCode)
		}
		rows = append(rows, []string{
			r.ShortID(),
			r.Recipe,
			r.Mode,
			string(r.Status),
			exit,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Duration(now).Round(time.Millisecond).String(),
		})
	}

	fmt.Fprintln(w, table.Render(table.Options{
		Headers:      []string{"ID", "RECIPE", "MODE", "STATUS", "EXIT", "STARTED", "DURATION"},
		StatusColumn: 3,
		StatusColors: map[string]lipgloss.TerminalColor{
			string(runs.StatusSuccess):        t.Colors.Green,
			string(runs.StatusSent):           t.Colors.Cyan,
			string(runs.StatusRunning):        t.Colors.Yellow,
			string(runs.StatusRuntimeFailure): t.Colors.Red,
			string(runs.StatusSpawnError):     t.Colors.Red,
			string(runs.StatusInterrupted):    t.Colors.Orange,
		},
	}, rows))
}
