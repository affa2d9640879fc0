// Package filesystem watches a directory tree and surfaces file
// changes as ingestable documents.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mnemo-labs/mnemo-cli/internal/logger"
)

// debounceWindow coalesces the event bursts editors produce when
// saving a file (truncate, write, chmod in quick succession).
const debounceWindow = 500 * time.Millisecond

// Change is one observed document change.
type Change struct {
	// Path is the absolute path of the changed file.
	Path string

	// Content is the file content at the time the change settled.
	Content string
}

// Watcher observes a directory tree for created and modified files.
type Watcher struct {
	root string

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher rooted at dir.
func NewWatcher(dir string) *Watcher {
	return &Watcher{
		root:    dir,
		pending: make(map[string]*time.Timer),
	}
}

// Watch streams file changes until ctx is cancelled. The returned
// channel is closed when watching stops.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := w.addRecursive(fw, w.root); err != nil {
		fw.Close() //nolint:errcheck,gosec // Best-effort cleanup
		return nil, err
	}

	changes := make(chan Change)
	go w.run(ctx, fw, changes)
	return changes, nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)
	defer fw.Close() //nolint:errcheck // Best-effort cleanup

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, fw, event, changes)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// handleEvent filters an fsnotify event and schedules delivery.
// Only Create and Write on visible regular files produce changes;
// new directories are added to the watch set.
func (w *Watcher) handleEvent(
	ctx context.Context,
	fw *fsnotify.Watcher,
	event fsnotify.Event,
	changes chan<- Change,
) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if isHidden(event.Name) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		// Removed before we could look at it.
		return
	}

	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addRecursive(fw, event.Name); err != nil {
				logger.Warn("watching %s: %v", event.Name, err)
			}
		}
		return
	}

	w.debounce(ctx, event.Name, changes)
}

// debounce delays delivery of a path until the event burst settles.
func (w *Watcher) debounce(ctx context.Context, path string, changes chan<- Change) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(debounceWindow)
		return
	}

	w.pending[path] = time.AfterFunc(debounceWindow, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("reading %s: %v", path, err)
			return
		}

		select {
		case changes <- Change{Path: path, Content: string(content)}:
		case <-ctx.Done():
		}
	})
}

// addRecursive watches dir and all visible subdirectories.
func (w *Watcher) addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether any element of path starts with a dot.
// The relative elements "." and ".." do not count as hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
