package tmux

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// NewSessionOptions describes a detached session to create.
type NewSessionOptions struct {
	Name             string
	WorkingDirectory string
	// Command replaces the default shell of the first window when set.
	Command []string
}

// NewSession creates a detached session.
func (c *Client) NewSession(ctx context.Context, opts NewSessionOptions) error {
	if err := c.builder.Validate("sessionName", opts.Name); err != nil {
		return err
	}

	args := []string{"new-session", "-d", "-s", opts.Name}
	if opts.WorkingDirectory != "" {
		args = append(args, "-c", opts.WorkingDirectory)
	}
	args = append(args, opts.Command...)

	if _, err := c.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (c *Client) SessionExists(ctx context.Context, sessionName string) (bool, error) {
	_, err := c.run(ctx, "has-session", "-t", "="+sessionName)
	if err == nil {
		return true, nil
	}

	if strings.Contains(err.Error(), "exit status 1") || isNoServer(err) {
		return false, nil
	}

	return false, err
}

func (c *Client) KillSession(ctx context.Context, sessionName string) error {
	_, err := c.run(ctx, "kill-session", "-t", "="+sessionName)
	return err
}

// SendKeys sends keys to target. Key names such as "Enter" are interpreted by tmux.
func (c *Client) SendKeys(ctx context.Context, target string, keys ...string) error {
	args := []string{"send-keys", "-t", target}
	args = append(args, keys...)
	_, err := c.run(ctx, args...)
	return err
}

// SendLine types text literally into the session's active pane and presses Enter.
func (c *Client) SendLine(ctx context.Context, sessionName, text string) error {
	target := SessionTarget(sessionName)
	if _, err := c.run(ctx, "send-keys", "-t", target, "-l", text); err != nil {
		return err
	}
	return c.SendKeys(ctx, target, "Enter")
}

func (c *Client) CapturePane(ctx context.Context, target string) (string, error) {
	return c.run(ctx, "capture-pane", "-p", "-t", target)
}

// SwitchClientToSession switches the client to the specified session.
// It uses an exact match for the session name to avoid ambiguity.
func (c *Client) SwitchClientToSession(ctx context.Context, sessionName string) error {
	_, err := c.run(ctx, "switch-client", "-t", "="+sessionName)
	return err
}

// Attach attaches the calling terminal to the session and blocks until the
// user detaches.
func (c *Client) Attach(ctx context.Context, sessionName string) error {
	args := []string{"attach-session", "-t", "=" + sessionName}
	if c.socket != "" {
		args = append([]string{"-L", c.socket}, args...)
	}

	cmd, err := c.builder.Build(ctx, c.binary, args...)
	if err != nil {
		return fmt.Errorf("failed to build command: %w", err)
	}
	cmd.WithoutTimeout(ctx)
	defer cmd.Release()

	execCmd := cmd.Exec()
	execCmd.Stdin = os.Stdin
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	return execCmd.Run()
}

func (c *Client) ListSessions(ctx context.Context) ([]string, error) {
	output, err := c.run(ctx, "list-sessions", "-F", "#{session_name}")
	if err != nil {
		// If no sessions exist, tmux returns an error
		if isNoServer(err) || strings.Contains(err.Error(), "exit status 1") {
			return []string{}, nil
		}
		return nil, err
	}

	output = strings.TrimSpace(output)
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

// GetPanePID returns the process ID of the shell running in the session's active pane.
func (c *Client) GetPanePID(ctx context.Context, sessionName string) (int, error) {
	output, err := c.run(ctx, "display-message", "-p", "-t", SessionTarget(sessionName), "#{pane_pid}")
	if err != nil {
		return 0, fmt.Errorf("failed to get pane PID from tmux: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(output))
	if err != nil {
		return 0, fmt.Errorf("failed to parse pane PID from tmux output '%s': %w", output, err)
	}

	return pid, nil
}

// SessionTarget returns a target that addresses the active pane of exactly sessionName.
func SessionTarget(sessionName string) string {
	return "=" + sessionName + ":"
}

// InsideTmux reports whether the current process runs inside a tmux client.
func InsideTmux() bool {
	return os.Getenv("TMUX") != ""
}
