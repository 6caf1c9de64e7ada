// Package sessions keeps a registry of named persistent sessions that attached
// recipe runs are sent to.
package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/logging"
)

// Terminal is a live execution context a session wraps.
type Terminal interface {
	// ID names the terminal in the backend, e.g. the tmux session name.
	ID() string
	// Send types one command line into the terminal.
	Send(ctx context.Context, line string) error
	// Alive reports whether the terminal can still accept commands.
	Alive(ctx context.Context) bool
	// Show brings the terminal in front of the user.
	Show(ctx context.Context) error
	// Close releases resources held by this process. Terminals that outlive
	// the process are left running.
	Close() error
}

// Backend creates terminals.
type Backend interface {
	Name() string
	// Create starts a new terminal for the logical session name.
	Create(ctx context.Context, name string) (Terminal, error)
	// Adopt returns a live terminal created for name by an earlier process.
	Adopt(ctx context.Context, name string) (Terminal, bool, error)
}

// Session is a named entry in the registry.
type Session struct {
	Name      string
	Terminal  Terminal
	CreatedAt time.Time
	Adopted   bool
}

// Alive re-checks the underlying terminal.
func (s *Session) Alive(ctx context.Context) bool {
	return s.Terminal != nil && s.Terminal.Alive(ctx)
}

// Send forwards a command line to the terminal.
func (s *Session) Send(ctx context.Context, line string) error {
	return s.Terminal.Send(ctx, line)
}

// Show forwards to the terminal.
func (s *Session) Show(ctx context.Context) error {
	return s.Terminal.Show(ctx)
}

// Manager owns the registry. The liveness check and any replacement run under
// one lock so concurrent callers never resurrect or duplicate a session.
type Manager struct {
	mu       sync.Mutex
	backend  Backend
	sessions map[string]*Session
	now      func() time.Time
	logger   *logrus.Entry
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger overrides the manager's logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates an empty registry over backend.
func NewManager(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend:  backend,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.NewLogger("sessions")
	}
	return m
}

// Backend returns the backend sessions are created with.
func (m *Manager) Backend() Backend {
	return m.backend
}

// ResolveOrCreate returns the live session registered under name when reuse
// is allowed, and otherwise creates a new one that replaces any existing entry.
// The returned session is live at the moment of return.
func (m *Manager) ResolveOrCreate(ctx context.Context, name string, reuse bool) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logger.WithFields(logrus.Fields{"session": name, "backend": m.backend.Name()})

	if reuse {
		if s, ok := m.sessions[name]; ok {
			if s.Alive(ctx) {
				log.Debug("Reusing live session")
				return s, nil
			}
			log.Debug("Registered session is dead, replacing it")
		}

		term, ok, err := m.backend.Adopt(ctx, name)
		switch {
		case err != nil:
			log.WithError(err).Debug("Could not adopt existing session")
		case ok && term.Alive(ctx):
			s := m.register(name, term, true)
			log.WithField("terminal", term.ID()).Debug("Adopted existing session")
			return s, nil
		}
	}

	term, err := m.backend.Create(ctx, name)
	if err != nil {
		return nil, errors.SessionFailed(name, err)
	}
	if !term.Alive(ctx) {
		_ = term.Close()
		return nil, errors.SessionFailed(name, fmt.Errorf("terminal %s exited immediately", term.ID()))
	}

	s := m.register(name, term, false)
	log.WithField("terminal", term.ID()).Info("Created session")
	return s, nil
}

func (m *Manager) register(name string, term Terminal, adopted bool) *Session {
	s := &Session{Name: name, Terminal: term, CreatedAt: m.now(), Adopted: adopted}
	m.sessions[name] = s
	return s
}

// Get returns the registry entry for name without checking liveness.
func (m *Manager) Get(name string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[name]
	return s, ok
}

// Len returns the number of registry entries, live or not.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close closes every registered terminal and empties the registry.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, s := range m.sessions {
		if err := s.Terminal.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing session %s: %w", name, err)
		}
		delete(m.sessions, name)
	}
	return firstErr
}
