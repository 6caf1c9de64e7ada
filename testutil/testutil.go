// Package testutil holds helpers shared by justrun's package tests.
package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequirePOSIX skips tests that rely on /bin/sh scripts.
func RequirePOSIX(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
}

// RequireTmux skips the test if tmux is not installed.
func RequireTmux(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tmux"); err != nil {
		t.Skip("tmux not available")
	}
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// FakeJust writes an executable stand-in for just into dir and returns its path.
// Invoked with --dump it prints dump. Otherwise it prints "ran: <args>" on
// stdout, "err: <recipe>" on stderr, and exits with exitCode.
func FakeJust(t *testing.T, dir, dump string, exitCode int) string {
	t.Helper()
	RequirePOSIX(t)

	dumpPath := WriteFile(t, dir, "dump.json", dump)
	script := fmt.Sprintf(`#!/bin/sh
for a in "$@"; do
  if [ "$a" = "--dump" ]; then
    cat %q
    exit 0
  fi
done
echo "ran: $*"
echo "err: $1" >&2
exit %d
`, dumpPath, exitCode)

	path := filepath.Join(dir, "just")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// RandomString generates a random hex string of the given length.
func RandomString(length int) string {
	b := make([]byte, (length+1)/2)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)[:length]
}
