package sessions

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/grovetools/justrun/command"
	"github.com/grovetools/justrun/pkg/process"
)

// ShellBackend keeps a shell process alive and feeds it commands on stdin.
// Its sessions end with the justrun process.
type ShellBackend struct {
	builder *command.SafeBuilder
	shell   Shell
	dir     string
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewShellBackend creates a backend whose sessions run shell in dir with
// output going to the calling terminal.
func NewShellBackend(builder *command.SafeBuilder, shell Shell, dir string) *ShellBackend {
	return &ShellBackend{builder: builder, shell: shell, dir: dir, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (b *ShellBackend) Name() string { return "shell" }

func (b *ShellBackend) Create(ctx context.Context, name string) (Terminal, error) {
	cmd, err := b.builder.Build(ctx, b.shell.Program, b.shell.Args...)
	if err != nil {
		return nil, err
	}
	// The shell lives until the session is closed, not until ctx ends.
	cmd.WithoutTimeout(context.Background()).InDir(b.dir)

	execCmd := cmd.Exec()
	stdin, err := execCmd.StdinPipe()
	if err != nil {
		cmd.Release()
		return nil, err
	}
	execCmd.Stdout = b.Stdout
	execCmd.Stderr = b.Stderr
	if err := execCmd.Start(); err != nil {
		cmd.Release()
		return nil, err
	}

	t := &shellTerminal{
		id:      fmt.Sprintf("%s[%d]", name, execCmd.Process.Pid),
		pid:     execCmd.Process.Pid,
		stdin:   stdin,
		done:    make(chan struct{}),
		newline: "\n",
	}
	if b.shell.Dialect == DialectWindows {
		t.newline = "\r\n"
	}
	go func() {
		_ = execCmd.Wait()
		cmd.Release()
		close(t.done)
	}()
	return t, nil
}

// Adopt never finds anything: shell sessions do not outlive their creator.
func (b *ShellBackend) Adopt(ctx context.Context, name string) (Terminal, bool, error) {
	return nil, false, nil
}

type shellTerminal struct {
	id      string
	pid     int
	newline string

	mu      sync.Mutex
	stdin   io.WriteCloser
	closed  bool
	done    chan struct{}
}

func (t *shellTerminal) ID() string { return t.id }

func (t *shellTerminal) Send(ctx context.Context, line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.exited() {
		return fmt.Errorf("shell %s has exited", t.id)
	}
	_, err := io.WriteString(t.stdin, line+t.newline)
	return err
}

func (t *shellTerminal) exited() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *shellTerminal) Alive(ctx context.Context) bool {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	return !closed && !t.exited() && process.IsProcessAlive(t.pid)
}

// Show has nothing to do: the shell writes straight to the user's terminal.
func (t *shellTerminal) Show(ctx context.Context) error { return nil }

// Close ends stdin and waits for the shell to finish the commands it was sent.
func (t *shellTerminal) Close() error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		_ = t.stdin.Close()
	}
	t.mu.Unlock()

	<-t.done
	return nil
}
