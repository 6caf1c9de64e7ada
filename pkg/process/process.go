// Package process holds OS-level helpers for processes justrun did not start itself.
package process

import (
	"os"
	"syscall"
)

// IsProcessAlive reports whether a process with the given PID exists.
// Signal 0 probes for existence without delivering anything; EPERM still
// means the process is alive.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = p.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}
