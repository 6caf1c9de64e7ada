package runs

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/pkg/paths"
	"github.com/grovetools/justrun/pkg/process"
)

const (
	metadataFile = "metadata.json"
	pidFile      = "pid.lock"
	logFile      = "output.log"
)

// Store keeps one directory per run under baseDir:
//
//	<id>/metadata.json  the Record
//	<id>/pid.lock       PID of the justrun process while the run is in flight
//	<id>/output.log     captured output of detached runs
type Store struct {
	baseDir string
	now     func() time.Time
}

// NewStore creates a store rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("run history directory is not set")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runs directory: %w", err)
	}
	return &Store{baseDir: baseDir, now: time.Now}, nil
}

// NewDefaultStore creates a store in the justrun state directory.
func NewDefaultStore() (*Store, error) {
	return NewStore(paths.RunsDir())
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.baseDir
}

func (s *Store) runDir(id string) string {
	return filepath.Join(s.baseDir, id)
}

// Start assigns an ID, marks the run as running, and writes its metadata.
func (s *Store) Start(rec Record) (Record, error) {
	rec.ID = uuid.NewString()
	rec.Status = StatusRunning
	rec.PID = os.Getpid()
	if rec.StartedAt.IsZero() {
		rec.StartedAt = s.now()
	}
	if rec.User == "" {
		if u, err := user.Current(); err == nil {
			rec.User = u.Username
		}
	}

	dir := s.runDir(rec.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return rec, fmt.Errorf("failed to create run directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, pidFile), []byte(strconv.Itoa(rec.PID)), 0644); err != nil {
		return rec, fmt.Errorf("failed to write pid.lock: %w", err)
	}
	return rec, s.write(rec)
}

// Finish records the end of a run and removes its pid.lock.
func (s *Store) Finish(rec Record) error {
	if rec.EndedAt == nil {
		now := s.now()
		rec.EndedAt = &now
	}
	if err := s.write(rec); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.runDir(rec.ID), pidFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove pid.lock: %w", err)
	}
	return nil
}

func (s *Store) write(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.runDir(rec.ID), metadataFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata.json: %w", err)
	}
	return nil
}

// LogPath returns the output log of run id.
func (s *Store) LogPath(id string) string {
	return filepath.Join(s.runDir(id), logFile)
}

// OpenLog creates the output log of run id.
func (s *Store) OpenLog(id string) (*LogSink, error) {
	f, err := os.OpenFile(s.LogPath(id), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log: %w", err)
	}
	return &LogSink{file: f}, nil
}

// Get loads run id. id may be any unambiguous prefix of a run ID.
func (s *Store) Get(id string) (Record, error) {
	full, err := s.resolve(id)
	if err != nil {
		return Record{}, err
	}
	return s.read(full)
}

func (s *Store) resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "run ID is required")
	}
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to read runs directory: %w", err)
	}

	var matches []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if e.Name() == prefix {
			return prefix, nil
		}
		if strings.HasPrefix(e.Name(), prefix) {
			matches = append(matches, e.Name())
		}
	}

	switch len(matches) {
	case 0:
		return "", errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("no run matches '%s'", prefix))
	case 1:
		return matches[0], nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("run ID '%s' is ambiguous", prefix)).
		WithDetail("matches", matches)
}

// read loads a run and marks it interrupted when its owning process is gone.
func (s *Store) read(id string) (Record, error) {
	dir := s.runDir(id)
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return Record{}, fmt.Errorf("failed to read metadata.json: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse metadata.json: %w", err)
	}

	if rec.Status == StatusRunning && !ownerAlive(dir) {
		rec.Status = StatusInterrupted
	}
	return rec, nil
}

func ownerAlive(dir string) bool {
	content, err := os.ReadFile(filepath.Join(dir, pidFile))
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return false
	}
	return process.IsProcessAlive(pid)
}

// List returns runs newest first. Unreadable entries are skipped. limit <= 0
// returns everything.
func (s *Store) List(limit int) ([]Record, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		rec, err := s.read(e.Name())
		if err != nil {
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// LogSink appends captured output to a run's log file. It is safe for
// concurrent use.
type LogSink struct {
	mu   sync.Mutex
	file *os.File
}

func (l *LogSink) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Write(p)
}

// Path returns the log file's path.
func (l *LogSink) Path() string {
	return l.file.Name()
}

func (l *LogSink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
