package errors

import (
	"fmt"
	"os/exec"
	"strings"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *Error {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *Error {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// DiscoveryFailed creates an error describing unusable recipe discovery output.
func DiscoveryFailed(reason string, cause error) *Error {
	if cause == nil {
		return New(ErrCodeDiscoveryFailed, fmt.Sprintf("recipe discovery failed: %s", reason))
	}
	return Wrap(cause, ErrCodeDiscoveryFailed, fmt.Sprintf("recipe discovery failed: %s", reason))
}

// RecipeNotFound creates a recipe not found error
func RecipeNotFound(name string) *Error {
	return New(ErrCodeRecipeNotFound, fmt.Sprintf("recipe '%s' not found", name)).
		WithDetail("recipe", name)
}

// ValidationFailed creates a parameter validation error carrying every message verbatim.
func ValidationFailed(recipe string, problems []string) *Error {
	return New(ErrCodeValidation,
		fmt.Sprintf("invalid parameters for recipe '%s': %s", recipe, strings.Join(problems, "; "))).
		WithDetail("recipe", recipe).
		WithDetail("errors", problems)
}

// SpawnFailed creates an error for a process that could not be started.
func SpawnFailed(binary string, err error) *Error {
	return Wrap(err, ErrCodeSpawnFailed, fmt.Sprintf("failed to start %s", binary)).
		WithDetail("binary", binary)
}

// RuntimeFailure creates an error for a recipe that exited with a nonzero code.
func RuntimeFailure(recipe string, exitCode int) *Error {
	return New(ErrCodeRuntimeFailure, fmt.Sprintf("recipe '%s' exited with code %d", recipe, exitCode)).
		WithDetail("recipe", recipe).
		WithDetail("exitCode", exitCode)
}

// SessionFailed creates a session management error
func SessionFailed(session string, err error) *Error {
	return Wrap(err, ErrCodeSessionFailed, fmt.Sprintf("session '%s' unavailable", session)).
		WithDetail("session", session)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *Error {
	cmdErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		cmdErr = cmdErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return cmdErr
}
