package recipe

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/justrun/command"
	"github.com/grovetools/justrun/errors"
)

// JustDiscoverer runs `just --dump --dump-format json` in the workspace root.
type JustDiscoverer struct {
	Binary   string
	Justfile string
	Dir      string
	builder  *command.SafeBuilder
}

// NewJustDiscoverer creates a discoverer for the given binary and workspace root.
// justfile may be empty to let just search for one.
func NewJustDiscoverer(builder *command.SafeBuilder, binary, justfile, dir string) *JustDiscoverer {
	return &JustDiscoverer{Binary: binary, Justfile: justfile, Dir: dir, builder: builder}
}

// Args returns the arguments passed to just.
func (d *JustDiscoverer) Args() []string {
	args := []string{"--dump", "--dump-format", "json"}
	if d.Justfile != "" {
		args = append(args, "--justfile", d.Justfile)
	}
	return args
}

// Discover implements Discoverer.
func (d *JustDiscoverer) Discover(ctx context.Context) ([]byte, error) {
	cmd, err := d.builder.Build(ctx, d.Binary, d.Args()...)
	if err != nil {
		return nil, errors.DiscoveryFailed("invalid just binary", err)
	}
	defer cmd.Release()

	var stdout, stderr bytes.Buffer
	execCmd := cmd.InDir(d.Dir).Exec()
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr
	if err := execCmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "exited with an error"
		}
		return nil, errors.DiscoveryFailed(fmt.Sprintf("%s: %s", cmd.String(), msg), err)
	}
	return stdout.Bytes(), nil
}
