package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/justrun/config"
	"github.com/grovetools/justrun/pkg/paths"
	"github.com/grovetools/justrun/util/pathutil"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger returns the logger for a component, creating it on first use.
// Settings come from the `logging` section of justrun.yml and JUSTRUN_LOG_* variables.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	var logCfg Config
	if cfg, err := config.LoadDefault(); err == nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
	}

	entry := newLoggerFromConfig(component, logCfg, stderrIsInteractive())
	loggers[component] = entry
	return entry
}

// newLoggerFromConfig builds a component logger without touching the registry.
func newLoggerFromConfig(component string, logCfg Config, interactive bool) *logrus.Entry {
	logger := logrus.New()

	levelStr := "info"
	if env := os.Getenv("JUSTRUN_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("JUSTRUN_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer
	if file := openLogFile(component, logCfg.File); file != nil {
		writers = append(writers, file)
	}
	if shouldLogToStderr(logCfg.Format.StructuredToStderr, level, interactive) {
		writers = append(writers, GetGlobalOutput())
	}

	switch len(writers) {
	case 0:
		// Interactive sessions keep the terminal clean; nothing is written.
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	return logger.WithField("component", component)
}

// openLogFile opens the configured log file, or the dated default under the
// state log directory. Failures are only reported for an explicit path.
func openLogFile(component string, sink FileSinkConfig) *os.File {
	var logFilePath string
	if sink.Enabled && sink.Path != "" {
		logFilePath = pathutil.ExpandHome(sink.Path)
	} else if dir := paths.LogDir(); dir != "" {
		logFilePath = filepath.Join(dir, fmt.Sprintf("%s-%s.log", component, time.Now().Format("2006-01-02")))
	}
	if logFilePath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		if sink.Enabled {
			fmt.Fprintf(os.Stderr, "Warning: failed to create log directory %s: %v\n", filepath.Dir(logFilePath), err)
		}
		return nil
	}
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		if sink.Enabled {
			fmt.Fprintf(os.Stderr, "Warning: failed to open log file %s: %v\n", logFilePath, err)
		}
		return nil
	}
	return file
}

// shouldLogToStderr decides whether structured entries reach the terminal.
// In "auto" mode they do when debugging or when stderr is not a terminal.
func shouldLogToStderr(mode string, level logrus.Level, interactive bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		isDebug := os.Getenv("JUSTRUN_DEBUG") == "1" || level >= logrus.DebugLevel
		return isDebug || !interactive
	}
}

func stderrIsInteractive() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

