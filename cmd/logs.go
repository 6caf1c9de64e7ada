package cmd

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"time"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/pkg/runs"
)

// followPoll is how often `logs -f` checks whether the run has ended.
const followPoll = 500 * time.Millisecond

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs <run-id>",
		Short: "Print the captured output of a detached run",
		Long: `Print the output captured for a detached run. Any unique prefix of the
run ID works; see 'justrun history'. With --follow, output is streamed until
the run ends.

Examples:
  justrun logs 1a2b3c4d
  justrun logs 1a2b -f
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := runs.NewDefaultStore()
			if err != nil {
				return err
			}
			rec, err := store.Get(args[0])
			if err != nil {
				return err
			}
			path := rec.LogFile
			if path == "" {
				return errors.New(errors.ErrCodeInvalidInput,
					fmt.Sprintf("run %s (%s, %s) has no captured output", rec.ShortID(), rec.Recipe, rec.Mode))
			}

			if !follow || rec.Status != runs.StatusRunning {
				return copyLog(cmd.OutOrStdout(), path)
			}
			return followLog(cmd.Context(), cmd.OutOrStdout(), store, rec.ID, path)
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream output until the run ends")
	return cmd
}

func copyLog(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// followLog tails path from the start and stops at end of file once the run
// is no longer recorded as running.
func followLog(ctx context.Context, w io.Writer, store *runs.Store, id, path string) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:   true,
		ReOpen:   false,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekStart},
		Logger:   stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return err
	}
	defer t.Cleanup()

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(followPoll)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				_ = t.Stop()
				return
			case <-ticker.C:
				rec, err := store.Get(id)
				if err != nil || rec.Status != runs.StatusRunning {
					_ = t.StopAtEOF()
					return
				}
			}
		}
	}()

	for line := range t.Lines {
		if line.Err != nil {
			continue
		}
		fmt.Fprintln(w, line.Text)
	}
	return nil
}
