package tmux

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/grovetools/justrun/command"
)

// SocketEnv names the environment variable that points every client at a
// dedicated tmux server. Tests set it so spawned processes share the isolated server.
const SocketEnv = "JUSTRUN_TMUX_SOCKET"

type Client struct {
	builder *command.SafeBuilder
	binary  string
	socket  string // Socket name for dedicated tmux server (uses -L flag)
}

// NewClient returns a client for the default server, or for the socket named
// by JUSTRUN_TMUX_SOCKET when it is set.
func NewClient() (*Client, error) {
	return NewClientWithSocket(DefaultSocket())
}

// DefaultSocket returns the socket named by JUSTRUN_TMUX_SOCKET, or "" for the default server.
func DefaultSocket() string {
	return os.Getenv(SocketEnv)
}

// NewClientWithSocket creates a tmux client that uses a dedicated server socket.
// This provides isolation from the default tmux server.
func NewClientWithSocket(socket string) (*Client, error) {
	return NewClientWithBuilder(command.NewSafeBuilder(), socket)
}

// NewClientWithBuilder creates a client whose commands go through builder.
// It fails when tmux cannot be resolved by the builder's executor.
func NewClientWithBuilder(builder *command.SafeBuilder, socket string) (*Client, error) {
	binary, err := builder.LookPath("tmux")
	if err != nil {
		return nil, fmt.Errorf("tmux command not found in PATH: %w", err)
	}
	return &Client{
		builder: builder,
		binary:  binary,
		socket:  socket,
	}, nil
}

// Available reports whether a tmux binary can be found.
func Available() bool {
	_, err := command.NewSafeBuilder().LookPath("tmux")
	return err == nil
}

// Socket returns the socket name this client uses, or empty string for default.
func (c *Client) Socket() string {
	return c.socket
}

// KillServer kills the tmux server for this client's socket.
// If the client uses the default socket, this will kill the default tmux server.
func (c *Client) KillServer(ctx context.Context) error {
	_, err := c.run(ctx, "kill-server")
	if err != nil && isNoServer(err) {
		return nil
	}
	return err
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	if c.socket != "" {
		args = append([]string{"-L", c.socket}, args...)
	}

	cmd, err := c.builder.Build(ctx, c.binary, args...)
	if err != nil {
		return "", fmt.Errorf("failed to build command: %w", err)
	}
	defer cmd.Release()

	output, err := cmd.Exec().CombinedOutput()
	if err != nil {
		cmdStr := "tmux " + strings.Join(args, " ")
		return string(output), fmt.Errorf("tmux command failed: `%s`: %w, output: %s", cmdStr, err, string(output))
	}

	return string(output), nil
}

func isNoServer(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no server running") || strings.Contains(msg, "error connecting to")
}
