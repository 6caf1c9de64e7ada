package logging

import (
	"context"
	"fmt"
	"regexp"

	"github.com/grovetools/justrun/tui/theme"
	"github.com/sirupsen/logrus"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// UnifiedLogger writes each message twice: styled to the user-facing writer
// carried by the context, and as a structured entry to the component log.
type UnifiedLogger struct {
	component  string
	structured *logrus.Entry
}

// NewUnifiedLogger creates a unified logger for a component.
func NewUnifiedLogger(component string) *UnifiedLogger {
	return &UnifiedLogger{component: component, structured: NewLogger(component)}
}

// newUnifiedLoggerWithEntry is used by tests to capture structured output.
func newUnifiedLoggerWithEntry(component string, entry *logrus.Entry) *UnifiedLogger {
	return &UnifiedLogger{component: component, structured: entry}
}

func (u *UnifiedLogger) entry(msg string, level logrus.Level, icon, status string) *LogEntry {
	fields := logrus.Fields{}
	if status != "" {
		fields["status"] = status
	}
	return &LogEntry{logger: u, msg: msg, level: level, icon: icon, fields: fields}
}

// Debug returns an entry at DEBUG level.
func (u *UnifiedLogger) Debug(msg string) *LogEntry {
	return u.entry(msg, logrus.DebugLevel, "", "")
}

// Info returns an entry at INFO level.
func (u *UnifiedLogger) Info(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, "", "")
}

// Warn returns an entry at WARN level.
func (u *UnifiedLogger) Warn(msg string) *LogEntry {
	return u.entry(msg, logrus.WarnLevel, theme.IconWarning, "")
}

// Error returns an entry at ERROR level.
func (u *UnifiedLogger) Error(msg string) *LogEntry {
	return u.entry(msg, logrus.ErrorLevel, theme.IconError, "")
}

// Success returns an INFO entry marked status=success.
func (u *UnifiedLogger) Success(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, theme.IconSuccess, "success")
}

// Progress returns an INFO entry marked status=progress.
func (u *UnifiedLogger) Progress(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, theme.IconRunning, "progress")
}

// LogEntry accumulates options until Log writes it.
type LogEntry struct {
	logger     *UnifiedLogger
	msg        string
	level      logrus.Level
	fields     logrus.Fields
	icon       string
	prettyMsg  string
	structOnly bool
}

// Field adds a structured field. Fields do not appear in the styled output.
func (e *LogEntry) Field(key string, value interface{}) *LogEntry {
	e.fields[key] = value
	return e
}

// Err attaches an error as the "error" field.
func (e *LogEntry) Err(err error) *LogEntry {
	if err != nil {
		e.fields["error"] = err.Error()
	}
	return e
}

// Pretty replaces the styled output with a pre-rendered string.
func (e *LogEntry) Pretty(styled string) *LogEntry {
	e.prettyMsg = styled
	return e
}

// StructuredOnly skips the styled output.
func (e *LogEntry) StructuredOnly() *LogEntry {
	e.structOnly = true
	return e
}

// Log writes the entry.
func (e *LogEntry) Log(ctx context.Context) {
	pretty := e.render()
	if !e.structOnly && e.logger.structured.Logger.IsLevelEnabled(e.level) {
		fmt.Fprintln(GetWriter(ctx), pretty)
	}
	e.fields["pretty_text"] = ansiRegex.ReplaceAllString(pretty, "")
	e.logger.structured.WithFields(e.fields).Log(e.level, e.msg)
}

func (e *LogEntry) render() string {
	if e.prettyMsg != "" {
		return e.prettyMsg
	}
	icon := e.icon
	if icon == "" {
		icon = theme.IconBullet
	}
	out := icon + " " + e.msg

	t := theme.DefaultTheme
	switch {
	case e.level == logrus.WarnLevel:
		return t.Warning.Render(out)
	case e.level == logrus.ErrorLevel:
		return t.Error.Render(out)
	case e.level == logrus.DebugLevel:
		return t.Muted.Render(out)
	case e.icon == theme.IconSuccess:
		return t.Success.Render(out)
	case e.icon == theme.IconRunning:
		return t.Info.Render(out)
	default:
		return out
	}
}
