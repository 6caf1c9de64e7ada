// Package pathutil expands user-supplied paths from flags and configuration.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
// Other paths, including bare command names, are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Expand expands the home directory and environment variables in path and
// returns it as an absolute path.
func Expand(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		expanded := ExpandHome(path)
		if expanded == path {
			return "", fmt.Errorf("could not expand home directory in %q", path)
		}
		path = expanded
	}
	return filepath.Abs(os.ExpandEnv(path))
}
