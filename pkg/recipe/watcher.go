package recipe

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/justrun/logging"
	"github.com/sirupsen/logrus"
)

// Watcher invalidates a catalog when a justfile in the watched directory changes.
type Watcher struct {
	watcher    *fsnotify.Watcher
	catalog    *Catalog
	dir        string
	debounce   time.Duration
	logger     *logrus.Entry
	onChange   func(path string)
	mu         sync.Mutex
	lastChange time.Time
}

// NewWatcher watches dir for justfile edits. onChange, if non-nil, runs after
// each invalidation.
func NewWatcher(dir string, catalog *Catalog, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		watcher:  fw,
		catalog:  catalog,
		dir:      dir,
		debounce: 100 * time.Millisecond,
		logger:   logging.NewLogger("watcher"),
		onChange: onChange,
	}, nil
}

// IsJustfile reports whether a path names a file just reads recipes from.
func IsJustfile(path string) bool {
	base := filepath.Base(path)
	switch strings.ToLower(base) {
	case "justfile", ".justfile":
		return true
	}
	return strings.HasSuffix(base, ".just")
}

// Start processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 || !IsJustfile(event.Name) {
				continue
			}
			if !w.accept() {
				continue
			}
			w.logger.WithField("path", event.Name).Debug("Justfile changed, clearing recipe cache")
			w.catalog.ClearCache()
			if w.onChange != nil {
				w.onChange(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("Justfile watcher error")
		case <-ctx.Done():
			return
		}
	}
}

// accept drops events that arrive within the debounce window of the last one.
func (w *Watcher) accept() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	if now.Sub(w.lastChange) < w.debounce {
		return false
	}
	w.lastChange = now
	return true
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
