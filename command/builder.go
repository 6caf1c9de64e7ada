package command

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default command execution timeout
	DefaultTimeout = 2 * time.Minute

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
	sessionPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// SafeBuilder provides secure command execution with validation
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

// makeDefaultValidators returns the default set of validators
func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"recipeName":    validateRecipeName,
		"parameterName": validateParameterName,
		"sessionName":   validateSessionName,
		"binaryPath":    validateBinaryPath,
	}
}

// validateRecipeName ensures a recipe name cannot be mistaken for a flag by just.
func validateRecipeName(name string) error {
	if name == "" {
		return fmt.Errorf("recipe name cannot be empty")
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid recipe name: %s (must start with a letter or underscore and contain only letters, digits, underscores, and hyphens)", name)
	}
	return nil
}

// validateParameterName uses the same identifier rules as just.
func validateParameterName(name string) error {
	if name == "" {
		return fmt.Errorf("parameter name cannot be empty")
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid parameter name: %s", name)
	}
	return nil
}

// validateSessionName ensures names are usable as tmux targets
func validateSessionName(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	if !sessionPattern.MatchString(name) {
		return fmt.Errorf("invalid session name: %s", name)
	}
	if len(name) > 50 {
		return fmt.Errorf("session name too long: %s (max 50 characters)", name)
	}
	return nil
}

// validateBinaryPath ensures a configured tool path is safe to exec
func validateBinaryPath(path string) error {
	if path == "" {
		return fmt.Errorf("binary path cannot be empty")
	}

	// Prevent command injection via shell metacharacters
	if strings.ContainsAny(path, ";|&$`\n") {
		return fmt.Errorf("binary path contains invalid characters")
	}

	return nil
}

// Command represents a safe command configuration
type Command struct {
	ctx      context.Context
	cancel   context.CancelFunc
	name     string
	args     []string
	dir      string
	timeout  time.Duration
	executor Executor
}

// Build creates a new command with validation
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	// Validate command name
	if name == "" {
		return nil, fmt.Errorf("command name cannot be empty")
	}
	if err := validateBinaryPath(name); err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, sb.defaultTimeout)

	return &Command{
		ctx:      timeoutCtx,
		cancel:   cancel,
		name:     name,
		args:     args,
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// WithTimeout sets a custom timeout for the command
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}

	c.cancel()
	c.ctx, c.cancel = context.WithTimeout(context.Background(), timeout)
	c.timeout = timeout
	return c
}

// WithoutTimeout lets the command run until it exits on its own or parent is cancelled.
// Recipe runs use this: a recipe may legitimately run for hours.
func (c *Command) WithoutTimeout(parent context.Context) *Command {
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(parent)
	c.timeout = 0
	return c
}

// InDir sets the working directory of the command
func (c *Command) InDir(dir string) *Command {
	c.dir = dir
	return c
}

// Release frees the command's context. Call it once the process has exited.
func (c *Command) Release() {
	c.cancel()
}

// String renders the command line for logs
func (c *Command) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// LookPath resolves a binary through the builder's executor.
func (sb *SafeBuilder) LookPath(file string) (string, error) {
	return sb.executor.LookPath(file)
}

// Exec creates and returns an exec.Cmd
func (c *Command) Exec() *exec.Cmd {
	cmd := c.executor.CommandContext(c.ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
	if c.dir != "" {
		cmd.Dir = c.dir
	}
	return cmd
}
