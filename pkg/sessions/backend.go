package sessions

import (
	"fmt"
	"runtime"

	"github.com/grovetools/justrun/command"
	"github.com/grovetools/justrun/config"
	"github.com/grovetools/justrun/pkg/tmux"
)

// NewBackend builds the backend named by cfg.Session.Backend. "auto" picks
// tmux when it is installed and the platform is not Windows.
func NewBackend(cfg *config.Config, builder *command.SafeBuilder, dir string, interactive bool) (Backend, error) {
	shell := DefaultShell(cfg.Shell)

	name := cfg.Session.Backend
	if name == "" || name == config.BackendAuto {
		name = config.BackendShell
		if runtime.GOOS != "windows" && tmux.Available() {
			name = config.BackendTmux
		}
	}

	switch name {
	case config.BackendTmux:
		socket := cfg.Session.TmuxSocket
		if socket == "" {
			socket = tmux.DefaultSocket()
		}
		client, err := tmux.NewClientWithBuilder(builder, socket)
		if err != nil {
			return nil, err
		}
		b := NewTmuxBackend(client, shell, dir)
		b.Interactive = interactive
		return b, nil
	case config.BackendShell:
		return NewShellBackend(builder, shell, dir), nil
	}
	return nil, fmt.Errorf("unknown session backend %q", name)
}
