package config

import (
	"fmt"
	"strings"

	"github.com/grovetools/justrun/errors"
)

// Validate performs semantic validation of the configuration
func (c *Config) Validate() error {
	var problems []string

	switch c.Dispatch.Mode {
	case "", ModeAttached, ModeDetached:
	default:
		problems = append(problems, fmt.Sprintf("dispatch.mode must be %q or %q, got %q", ModeAttached, ModeDetached, c.Dispatch.Mode))
	}

	switch c.Session.Backend {
	case "", BackendAuto, BackendTmux, BackendShell:
	default:
		problems = append(problems, fmt.Sprintf("session.backend must be one of auto, tmux, shell, got %q", c.Session.Backend))
	}

	if err := validatePath("just.path", c.Just.Path); err != nil {
		problems = append(problems, err.Error())
	}
	if err := validatePath("shell.posix", c.Shell.Posix); err != nil {
		problems = append(problems, err.Error())
	}
	if err := validatePath("shell.windows", c.Shell.Windows); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeConfigValidation, strings.Join(problems, "; ")).
			WithDetail("errors", problems)
	}
	return nil
}

func validatePath(fieldName, path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsAny(path, ";|&`\n") {
		return fmt.Errorf("%s contains invalid characters: %q", fieldName, path)
	}
	return nil
}
