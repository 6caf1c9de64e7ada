// Package runs keeps the history of dispatched recipes and the output
// captured from detached runs.
package runs

import (
	"time"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning        Status = "running"
	StatusSuccess        Status = "success"
	StatusRuntimeFailure Status = "failed"
	StatusSpawnError     Status = "spawn_error"
	StatusSent           Status = "sent"
	// StatusInterrupted marks a run whose justrun process died before recording an end.
	StatusInterrupted Status = "interrupted"
)

// Record is the metadata stored on disk for one run.
type Record struct {
	ID               string     `json:"id"`
	Recipe           string     `json:"recipe"`
	Args             []string   `json:"args"`
	Mode             string     `json:"mode"`
	Session          string     `json:"session,omitempty"`
	PID              int        `json:"pid"`
	WorkingDirectory string     `json:"working_directory"`
	User             string     `json:"user,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	Status           Status     `json:"status"`
	ExitCode         *int       `json:"exit_code,omitempty"`
	Message          string     `json:"message,omitempty"`
	LogFile          string     `json:"log_file,omitempty"`
}

// Duration returns how long the run took, or how long it has been running.
func (r Record) Duration(now time.Time) time.Duration {
	if r.EndedAt != nil {
		return r.EndedAt.Sub(r.StartedAt)
	}
	return now.Sub(r.StartedAt)
}

// ShortID returns the first eight characters of the run ID.
func (r Record) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}
