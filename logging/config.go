package logging

// Config is the `logging` section of justrun.yml.
type Config struct {
	// Level is the minimum level to output ("debug", "info", "warn", "error").
	// JUSTRUN_LOG_LEVEL takes precedence.
	Level string `yaml:"level"`

	// ReportCaller adds file, line and function to each entry.
	// JUSTRUN_LOG_CALLER=true enables it as well.
	ReportCaller bool `yaml:"report_caller"`

	File   FileSinkConfig `yaml:"file"`
	Format FormatConfig   `yaml:"format"`
}

// FileSinkConfig configures the file logging sink.
type FileSinkConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path is the full path to the log file. Defaults to a dated file under the state log directory.
	Path string `yaml:"path"`
}

// FormatConfig controls the log output format.
type FormatConfig struct {
	// Preset can be "default" (rich text), "simple" (minimal text), or "json".
	Preset           string `yaml:"preset"`
	DisableTimestamp bool   `yaml:"disable_timestamp"`
	DisableComponent bool   `yaml:"disable_component"`
	// StructuredToStderr is "auto" (default), "always", or "never".
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
