package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsSingletonPerComponent(t *testing.T) {
	t.Setenv("JUSTRUN_HOME", t.TempDir())

	first := NewLogger("test-component")
	second := NewLogger("test-component")
	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Equal(t, "test-component", first.Data["component"])
}

func TestLevelFromEnvironment(t *testing.T) {
	t.Setenv("JUSTRUN_HOME", t.TempDir())
	t.Setenv("JUSTRUN_LOG_LEVEL", "warn")

	entry := newLoggerFromConfig("lvl", Config{Level: "debug"}, true)
	assert.Equal(t, logrus.WarnLevel, entry.Logger.GetLevel())
}

func TestLevelFromConfigAndFallback(t *testing.T) {
	t.Setenv("JUSTRUN_HOME", t.TempDir())
	t.Setenv("JUSTRUN_LOG_LEVEL", "")

	entry := newLoggerFromConfig("lvl", Config{Level: "error"}, true)
	assert.Equal(t, logrus.ErrorLevel, entry.Logger.GetLevel())

	entry = newLoggerFromConfig("lvl", Config{Level: "loud"}, true)
	assert.Equal(t, logrus.InfoLevel, entry.Logger.GetLevel())
}

func TestExplicitLogFile(t *testing.T) {
	t.Setenv("JUSTRUN_HOME", t.TempDir())
	t.Setenv("JUSTRUN_LOG_LEVEL", "")
	logPath := filepath.Join(t.TempDir(), "nested", "justrun.log")

	entry := newLoggerFromConfig("filetest", Config{
		File:   FileSinkConfig{Enabled: true, Path: logPath},
		Format: FormatConfig{StructuredToStderr: "never"},
	}, true)
	entry.WithField("recipe", "build").Info("dispatched")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dispatched")
	assert.Contains(t, string(data), "recipe=build")
}

func TestDefaultLogFileUnderStateDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("JUSTRUN_HOME", home)

	entry := newLoggerFromConfig("defaults", Config{Format: FormatConfig{StructuredToStderr: "never"}}, true)
	entry.Info("hello")

	matches, err := filepath.Glob(filepath.Join(home, "state", "logs", "defaults-*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestShouldLogToStderr(t *testing.T) {
	t.Setenv("JUSTRUN_DEBUG", "")

	assert.True(t, shouldLogToStderr("always", logrus.InfoLevel, true))
	assert.False(t, shouldLogToStderr("never", logrus.DebugLevel, false))
	assert.False(t, shouldLogToStderr("auto", logrus.InfoLevel, true))
	assert.True(t, shouldLogToStderr("auto", logrus.InfoLevel, false))
	assert.True(t, shouldLogToStderr("", logrus.DebugLevel, true))
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		config  FormatConfig
		entry   *logrus.Entry
		want    []string
		notWant []string
	}{
		{
			name:   "default format",
			config: FormatConfig{},
			entry: &logrus.Entry{
				Level:   logrus.InfoLevel,
				Message: "test message",
				Data:    logrus.Fields{"component": "dispatch", "recipe": "build"},
			},
			want: []string{"[INFO]", "dispatch", "test message", "recipe=build"},
		},
		{
			name:   "simple format",
			config: FormatConfig{DisableTimestamp: true, DisableComponent: true},
			entry: &logrus.Entry{
				Level:   logrus.WarnLevel,
				Message: "careful",
				Data:    logrus.Fields{"component": "dispatch"},
			},
			want:    []string{"[WARN] careful"},
			notWant: []string{"dispatch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &TextFormatter{Config: tt.config}
			out, err := f.Format(tt.entry)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, string(out), w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, string(out), nw)
			}
		})
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	f := &TextFormatter{Config: FormatConfig{DisableTimestamp: true}}
	out, err := f.Format(&logrus.Entry{
		Level:   logrus.InfoLevel,
		Message: "m",
		Data:    logrus.Fields{"zeta": 1, "alpha": 2},
	})
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(out), "alpha="), strings.Index(string(out), "zeta="))
}

func TestContextWriter(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithWriter(context.Background(), &buf)
	assert.Same(t, &buf, GetWriter(ctx))
	assert.Equal(t, GetGlobalOutput(), GetWriter(context.Background()))
}

func TestGlobalOutputRedirect(t *testing.T) {
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	defer SetGlobalOutput(os.Stderr)

	_, err := GetGlobalOutput().Write([]byte("captured"))
	require.NoError(t, err)
	assert.Equal(t, "captured", buf.String())
}

func TestUnifiedLoggerWritesBothOutputs(t *testing.T) {
	var structured, pretty bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&structured)
	logger.SetFormatter(&logrus.JSONFormatter{})

	ulog := newUnifiedLoggerWithEntry("dispatch", logger.WithField("component", "dispatch"))
	ctx := WithWriter(context.Background(), &pretty)

	ulog.Success("Recipe finished").Field("recipe", "build").Log(ctx)

	assert.Contains(t, pretty.String(), "Recipe finished")
	assert.NotContains(t, pretty.String(), "recipe")
	assert.Contains(t, structured.String(), `"recipe":"build"`)
	assert.Contains(t, structured.String(), `"status":"success"`)
}

func TestUnifiedLoggerStructuredOnly(t *testing.T) {
	var structured, pretty bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&structured)

	ulog := newUnifiedLoggerWithEntry("dispatch", logger.WithField("component", "dispatch"))
	ctx := WithWriter(context.Background(), &pretty)
	ulog.Info("audit only").StructuredOnly().Log(ctx)

	assert.Empty(t, pretty.String())
	assert.Contains(t, structured.String(), "audit only")
}
