package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Dispatch modes.
const (
	ModeAttached = "attached"
	ModeDetached = "detached"
)

// Session backends.
const (
	BackendAuto  = "auto"
	BackendTmux  = "tmux"
	BackendShell = "shell"
)

// JustConfig locates the just binary and the justfile it reads.
type JustConfig struct {
	Path             string `yaml:"path,omitempty" toml:"path,omitempty" mapstructure:"path" jsonschema:"description=Path to the just binary (default: just from PATH)"`
	Justfile         string `yaml:"justfile,omitempty" toml:"justfile,omitempty" mapstructure:"justfile" jsonschema:"description=Explicit justfile passed with --justfile"`
	WorkingDirectory string `yaml:"working_directory,omitempty" toml:"working_directory,omitempty" mapstructure:"working_directory" jsonschema:"description=Workspace root used as the working directory for discovery and runs"`
}

// ShellConfig overrides the shell used for attached sessions, per platform.
type ShellConfig struct {
	Posix       string   `yaml:"posix,omitempty" toml:"posix,omitempty" mapstructure:"posix" jsonschema:"description=Shell program on Linux and macOS (default: $SHELL or /bin/sh)"`
	PosixArgs   []string `yaml:"posix_args,omitempty" toml:"posix_args,omitempty" mapstructure:"posix_args" jsonschema:"description=Arguments passed to the POSIX shell"`
	Windows     string   `yaml:"windows,omitempty" toml:"windows,omitempty" mapstructure:"windows" jsonschema:"description=Shell program on Windows (default: cmd.exe)"`
	WindowsArgs []string `yaml:"windows_args,omitempty" toml:"windows_args,omitempty" mapstructure:"windows_args" jsonschema:"description=Arguments passed to the Windows shell"`
}

// DispatchConfig selects how recipes are executed.
type DispatchConfig struct {
	Mode         string `yaml:"mode,omitempty" toml:"mode,omitempty" mapstructure:"mode" jsonschema:"enum=attached,enum=detached,description=Run recipes in a persistent session (attached) or with captured output (detached)"`
	ReuseSession *bool  `yaml:"reuse_session,omitempty" toml:"reuse_session,omitempty" mapstructure:"reuse_session" jsonschema:"description=Reuse a live session for repeated runs of the same recipe (default: true)"`
}

// SessionConfig configures the persistent session backend.
type SessionConfig struct {
	Backend    string `yaml:"backend,omitempty" toml:"backend,omitempty" mapstructure:"backend" jsonschema:"enum=auto,enum=tmux,enum=shell,description=Session backend (default: auto)"`
	TmuxSocket string `yaml:"tmux_socket,omitempty" toml:"tmux_socket,omitempty" mapstructure:"tmux_socket" jsonschema:"description=Dedicated tmux server socket name (tmux -L)"`
}

// Config represents a justrun.yml or justrun.toml configuration.
type Config struct {
	Version  string         `yaml:"version,omitempty" toml:"version,omitempty" mapstructure:"version" jsonschema:"description=Configuration version (e.g. '1.0')"`
	Just     JustConfig     `yaml:"just,omitempty" toml:"just,omitempty" mapstructure:"just" jsonschema:"description=Location of the just binary and justfile"`
	Shell    ShellConfig    `yaml:"shell,omitempty" toml:"shell,omitempty" mapstructure:"shell" jsonschema:"description=Shell overrides for attached sessions"`
	Dispatch DispatchConfig `yaml:"dispatch,omitempty" toml:"dispatch,omitempty" mapstructure:"dispatch" jsonschema:"description=Recipe dispatch settings"`
	Session  SessionConfig  `yaml:"session,omitempty" toml:"session,omitempty" mapstructure:"session" jsonschema:"description=Persistent session settings"`

	// Extensions captures all other top-level keys for extensibility.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" mapstructure:",remain" jsonschema:"-"`

	// sourceDir is the directory of the project config file, if one was loaded.
	sourceDir string
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Just.Path == "" {
		c.Just.Path = "just"
	}
	if c.Dispatch.Mode == "" {
		c.Dispatch.Mode = ModeDetached
	}
	if c.Dispatch.ReuseSession == nil {
		trueVal := true
		c.Dispatch.ReuseSession = &trueVal
	}
	if c.Session.Backend == "" {
		c.Session.Backend = BackendAuto
	}
}

// ReuseSession reports whether attached runs may reuse a live session.
func (c *Config) ReuseSession() bool {
	return c.Dispatch.ReuseSession == nil || *c.Dispatch.ReuseSession
}

// SourceDir returns the directory of the project configuration file, or "".
func (c *Config) SourceDir() string {
	return c.sourceDir
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded justrun.yml into the provided target struct. The target must be a pointer.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
