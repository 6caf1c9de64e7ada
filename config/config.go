package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/pkg/paths"
	"github.com/grovetools/justrun/util/pathutil"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are the project configuration file names, in lookup order.
var configNames = []string{
	"justrun.yml",
	"justrun.yaml",
	"justrun.toml",
	".justrun.yml",
	".justrun.yaml",
	".justrun.toml",
}

// Load reads and parses a single justrun configuration file
func Load(path string) (*Config, error) {
	cfg, err := loadRaw(path)
	if err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	applyEnvOverrides(cfg)
	expandPaths(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads configuration for the current working directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}

	return LoadFrom(cwd)
}

// LoadFrom loads configuration with hierarchical merging starting from the given directory
func LoadFrom(startDir string) (*Config, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return LoadFromWithLogger(startDir, logger)
}

// LoadFromWithLogger loads configuration with hierarchical merging:
// 1. Global config (~/.config/justrun/justrun.yml) - base layer
// 2. Project config (justrun.yml, searched upward) - overrides global
// 3. Local override (justrun.override.yml) - overrides all
//
// Every layer is optional; with no files the defaults apply.
func LoadFromWithLogger(startDir string, logger *logrus.Logger) (*Config, error) {
	finalConfig := &Config{}

	if globalPath := findGlobalConfig(); globalPath != "" {
		logger.WithField("path", globalPath).Debug("Loading global configuration")
		globalConfig, err := loadRaw(globalPath)
		if err != nil {
			logger.WithError(err).Warn("Failed to load global configuration, continuing without it")
		} else {
			finalConfig = globalConfig
		}
	}

	projectPath, err := FindConfigFile(startDir)
	if err == nil {
		logger.WithField("path", projectPath).Debug("Loading project configuration")
		projectConfig, err := loadRaw(projectPath)
		if err != nil {
			return nil, err
		}
		finalConfig = mergeConfigs(finalConfig, projectConfig)
		finalConfig.sourceDir = filepath.Dir(projectPath)

		for _, name := range []string{"justrun.override.yml", "justrun.override.yaml", "justrun.override.toml"} {
			overridePath := filepath.Join(finalConfig.sourceDir, name)
			if _, err := os.Stat(overridePath); err != nil {
				continue
			}
			logger.WithField("path", overridePath).Debug("Loading local override configuration")
			overrideConfig, err := loadRaw(overridePath)
			if err != nil {
				logger.WithError(err).Warn("Failed to parse override file, skipping")
				continue
			}
			finalConfig = mergeConfigs(finalConfig, overrideConfig)
		}
	} else if !errors.Is(err, errors.ErrCodeConfigNotFound) {
		return nil, err
	}

	finalConfig.SetDefaults()
	applyEnvOverrides(finalConfig)
	expandPaths(finalConfig)

	if err := finalConfig.Validate(); err != nil {
		return nil, err
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		configData, err := yaml.Marshal(finalConfig)
		if err == nil {
			logger.Debugf("Merged configuration:\n%s", string(configData))
		}
	}

	return finalConfig, nil
}

// LoadFromBytes parses configuration from a byte array in the given format ("yaml" or "toml").
func LoadFromBytes(data []byte, format string) (*Config, error) {
	cfg, err := parse(data, format)
	if err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadRaw reads one file without defaults so layers merge cleanly.
func loadRaw(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := parse(data, formatFor(path))
	if err != nil {
		if e, ok := errors.As(err); ok {
			return nil, e.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// parse decodes and schema-validates a configuration document.
func parse(data []byte, format string) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	var raw map[string]interface{}
	var cfg Config

	switch format {
	case "toml":
		if err := toml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &cfg,
			TagName:          "mapstructure",
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create TOML decoder")
		}
		if err := decoder.Decode(raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode TOML configuration")
		}
	default:
		if err := yaml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}

	if raw != nil {
		validator, err := NewSchemaValidator()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create validator")
		}
		if err := validator.Validate(raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed")
		}
	}

	return &cfg, nil
}

func formatFor(path string) string {
	if strings.HasSuffix(path, ".toml") {
		return "toml"
	}
	return "yaml"
}

// FindConfigFile searches for a justrun configuration file from startDir up to the filesystem root.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

// findGlobalConfig returns the first global config file that exists, or "".
func findGlobalConfig() string {
	dir := paths.ConfigDir()
	if dir == "" {
		return ""
	}
	for _, name := range []string{"justrun.yml", "justrun.yaml", "justrun.toml"} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// applyEnvOverrides lets the environment win over every file layer.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("JUSTRUN_JUST_PATH"); v != "" {
		c.Just.Path = v
	}
	if v := os.Getenv("JUSTRUN_MODE"); v != "" {
		c.Dispatch.Mode = v
	}
	if v := os.Getenv("JUSTRUN_SESSION_BACKEND"); v != "" {
		c.Session.Backend = v
	}
}

// expandPaths resolves a leading ~ in path settings.
func expandPaths(c *Config) {
	c.Just.Path = pathutil.ExpandHome(c.Just.Path)
	c.Just.Justfile = pathutil.ExpandHome(c.Just.Justfile)
	c.Just.WorkingDirectory = pathutil.ExpandHome(c.Just.WorkingDirectory)
	c.Shell.Posix = pathutil.ExpandHome(c.Shell.Posix)
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// WorkspaceRoot resolves the directory discovery and runs execute in.
// An explicit just.working_directory wins; relative values are resolved
// against the project config file's directory.
func (c *Config) WorkspaceRoot(cwd string) string {
	dir := c.Just.WorkingDirectory
	if dir == "" {
		return cwd
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	base := c.sourceDir
	if base == "" {
		base = cwd
	}
	return filepath.Join(base, dir)
}

// ToJSON renders the effective configuration, including extensions.
func (c *Config) ToJSON() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
