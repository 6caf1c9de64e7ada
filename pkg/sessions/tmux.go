package sessions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/grovetools/justrun/pkg/tmux"
)

// SessionPrefix starts the tmux name of every session justrun creates.
const SessionPrefix = "just-"

// TmuxBackend runs sessions as detached tmux sessions. They outlive the
// justrun process and are adopted by later invocations.
type TmuxBackend struct {
	client *tmux.Client
	shell  Shell
	dir    string
	// Interactive allows Show to attach the calling terminal when it is not
	// already inside tmux.
	Interactive bool
}

// NewTmuxBackend creates a backend whose sessions start shell in dir.
func NewTmuxBackend(client *tmux.Client, shell Shell, dir string) *TmuxBackend {
	return &TmuxBackend{client: client, shell: shell, dir: dir}
}

func (b *TmuxBackend) Name() string { return "tmux" }

// maxTmuxName leaves room for the "-N" suffixes Create appends.
const maxTmuxName = 44

// TmuxName maps a logical session name such as "Just: build" to a tmux name.
// Names that sanitizing would alter or shorten get a short hash of the
// logical name, so "Just: a.b" and "Just: a-b" never share a session.
func TmuxName(name string) string {
	if rest, ok := strings.CutPrefix(name, "Just: "); ok {
		if id := SessionPrefix + rest; tmux.SanitizeForTmuxSession(rest) == rest && len(id) <= maxTmuxName {
			return id
		}
	}

	sum := uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()[:8]
	base := tmux.SanitizeForTmuxSession(name)
	if !strings.HasPrefix(base, SessionPrefix) {
		base = SessionPrefix + base
	}
	if limit := maxTmuxName - len(sum) - 1; len(base) > limit {
		base = strings.TrimRight(base[:limit], "-")
	}
	return base + "-" + sum
}

func (b *TmuxBackend) Create(ctx context.Context, name string) (Terminal, error) {
	base := TmuxName(name)
	id := base
	for i := 2; ; i++ {
		exists, err := b.client.SessionExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}

	err := b.client.NewSession(ctx, tmux.NewSessionOptions{
		Name:             id,
		WorkingDirectory: b.dir,
		Command:          b.shell.Argv(),
	})
	if err != nil {
		return nil, err
	}
	return &tmuxTerminal{backend: b, id: id}, nil
}

func (b *TmuxBackend) Adopt(ctx context.Context, name string) (Terminal, bool, error) {
	id := TmuxName(name)
	exists, err := b.client.SessionExists(ctx, id)
	if err != nil || !exists {
		return nil, false, err
	}
	return &tmuxTerminal{backend: b, id: id}, true, nil
}

// List returns the tmux sessions justrun created that are still running.
func (b *TmuxBackend) List(ctx context.Context) ([]string, error) {
	all, err := b.client.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range all {
		if strings.HasPrefix(name, SessionPrefix) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Kill ends the tmux session with the given tmux name.
func (b *TmuxBackend) Kill(ctx context.Context, id string) error {
	return b.client.KillSession(ctx, id)
}

// Capture returns the visible contents of the session's active pane.
func (b *TmuxBackend) Capture(ctx context.Context, id string) (string, error) {
	return b.client.CapturePane(ctx, tmux.SessionTarget(id))
}

// PanePID returns the process ID of the shell in the session's active pane.
func (b *TmuxBackend) PanePID(ctx context.Context, id string) (int, error) {
	return b.client.GetPanePID(ctx, id)
}

type tmuxTerminal struct {
	backend *TmuxBackend
	id      string
}

func (t *tmuxTerminal) ID() string { return t.id }

func (t *tmuxTerminal) Send(ctx context.Context, line string) error {
	return t.backend.client.SendLine(ctx, t.id, line)
}

func (t *tmuxTerminal) Alive(ctx context.Context) bool {
	exists, err := t.backend.client.SessionExists(ctx, t.id)
	return err == nil && exists
}

// Show switches the surrounding tmux client to the session, or attaches when
// justrun runs in a plain interactive terminal. Otherwise it does nothing.
func (t *tmuxTerminal) Show(ctx context.Context) error {
	switch {
	case tmux.InsideTmux():
		return t.backend.client.SwitchClientToSession(ctx, t.id)
	case t.backend.Interactive:
		return t.backend.client.Attach(ctx, t.id)
	}
	return nil
}

func (t *tmuxTerminal) Close() error { return nil }
