// Package sessionstest provides an in-memory session backend for tests.
package sessionstest

import (
	"context"
	"fmt"
	"sync"

	"github.com/grovetools/justrun/pkg/sessions"
)

// Backend records created terminals. Terminals stay alive until Kill is called.
type Backend struct {
	mu        sync.Mutex
	Terminals []*Terminal
	// Adoptable maps logical names to terminals an earlier process left behind.
	Adoptable map[string]*Terminal
	// CreateErr makes the next Create fail.
	CreateErr error
	// StartDead makes new terminals report dead immediately.
	StartDead bool
}

func (b *Backend) Name() string { return "fake" }

func (b *Backend) Create(ctx context.Context, name string) (sessions.Terminal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.CreateErr != nil {
		err := b.CreateErr
		b.CreateErr = nil
		return nil, err
	}
	t := &Terminal{id: fmt.Sprintf("%s#%d", name, len(b.Terminals)+1), dead: b.StartDead}
	b.Terminals = append(b.Terminals, t)
	return t, nil
}

func (b *Backend) Adopt(ctx context.Context, name string) (sessions.Terminal, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.Adoptable[name]
	if !ok {
		return nil, false, nil
	}
	return t, true, nil
}

// Created returns the number of terminals created so far.
func (b *Backend) Created() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Terminals)
}

// Terminal records the lines sent to it.
type Terminal struct {
	mu     sync.Mutex
	id     string
	lines  []string
	shown  int
	dead   bool
	closed bool
}

// NewTerminal returns a live terminal, e.g. for Backend.Adoptable.
func NewTerminal(id string) *Terminal {
	return &Terminal{id: id}
}

func (t *Terminal) ID() string { return t.id }

func (t *Terminal) Send(ctx context.Context, line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dead {
		return fmt.Errorf("terminal %s is dead", t.id)
	}
	t.lines = append(t.lines, line)
	return nil
}

func (t *Terminal) Alive(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.dead
}

func (t *Terminal) Show(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shown++
	return nil
}

func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Kill simulates the user closing the terminal.
func (t *Terminal) Kill() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dead = true
}

// Lines returns the command lines sent so far.
func (t *Terminal) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

// Shown returns how often Show was called.
func (t *Terminal) Shown() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shown
}

// Closed reports whether Close was called.
func (t *Terminal) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
