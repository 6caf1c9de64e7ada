// Package paths provides XDG-compliant path resolution for justrun.
//
// Resolution order:
// 1. JUSTRUN_HOME (portable root) → $JUSTRUN_HOME/{config,state,cache}
// 2. XDG env vars → $XDG_*_HOME/justrun
// 3. Platform defaults → ~/.config/justrun, ~/.local/state/justrun, etc.
package paths

import (
	"os"
	"path/filepath"
)

const appName = "justrun"

// resolve picks the base directory for one XDG category.
func resolve(homeSub, xdgVar string, fallback ...string) string {
	if home := os.Getenv("JUSTRUN_HOME"); home != "" {
		return filepath.Join(home, homeSub)
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		parts := append([]string{homeDir}, fallback...)
		parts = append(parts, appName)
		return filepath.Join(parts...)
	}
	return ""
}

// ConfigDir returns the justrun configuration directory.
// Used for the global justrun.yml.
func ConfigDir() string {
	return resolve("config", "XDG_CONFIG_HOME", ".config")
}

// StateDir returns the justrun state directory.
// Used for run history and logs.
func StateDir() string {
	return resolve("state", "XDG_STATE_HOME", ".local", "state")
}

// CacheDir returns the justrun cache directory.
func CacheDir() string {
	return resolve("cache", "XDG_CACHE_HOME", ".cache")
}

// LogDir returns the directory for justrun's own structured logs.
func LogDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}

// RunsDir returns the directory holding per-run metadata and captured output.
func RunsDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "runs")
}

// EnsureDirs creates all justrun directories if they don't exist.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), StateDir(), CacheDir(), LogDir(), RunsDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
