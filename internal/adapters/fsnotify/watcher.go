// Package fsnotify implements ports.Watcher using github.com/fsnotify/fsnotify.
// It watches a source tree recursively, skips VCS and dependency directories,
// and debounces bursts of events for the same file (editors often write twice per save).
package fsnotify

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the window within which repeat events for one path are dropped.
const DefaultDebounce = 50 * time.Millisecond

// Directories never descended into.
var ignoreDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	".venv":        true,
	"__pycache__":  true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
	"dist":         true,
	"build":        true,
	".astdump":     true,
	".next":        true,
	"target":       true,
}

// File names and suffixes that never trigger a callback.
var ignoreFiles = map[string]bool{
	".DS_Store": true,
	".swp":      true,
	"~":         true,
	".pyc":      true,
	".o":        true,
	".so":       true,
	".dylib":    true,
}

// Watcher implements ports.Watcher.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration
	log      logrus.FieldLogger

	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewWatcher creates a watcher. A debounce of zero or less uses DefaultDebounce.
func NewWatcher(debounce time.Duration, log logrus.FieldLogger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Watcher{
		fw:       fw,
		debounce: debounce,
		log:      log,
		done:     make(chan struct{}),
	}, nil
}

// Watch starts monitoring root recursively.
// onChange is called with the absolute path of each changed file.
func (w *Watcher) Watch(root string, onChange func(path string)) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "watch", Path: absRoot, Err: os.ErrInvalid}
	}

	err = filepath.WalkDir(absRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}
		if d.IsDir() {
			if ignoreDirs[d.Name()] && path != absRoot {
				return filepath.SkipDir
			}
			return w.fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop(absRoot, onChange)
	return nil
}

func (w *Watcher) loop(root string, onChange func(string)) {
	defer w.wg.Done()

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			path := event.Name

			// New directories join the watch list.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					if !ignoreDirs[info.Name()] {
						if err := w.fw.Add(path); err != nil {
							w.log.WithError(err).WithField("dir", path).Debug("watch add failed")
						}
					}
					continue
				}
			}

			if shouldIgnorePath(root, path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			now := time.Now()
			if prev, seen := last[path]; seen && now.Sub(prev) < w.debounce {
				continue
			}
			last[path] = now

			select {
			case <-w.done:
				return
			default:
			}
			onChange(path)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("file watcher error")

		case <-w.done:
			return
		}
	}
}

// Stop ends monitoring, waits for the event loop to exit and releases the
// underlying watcher. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	err := w.fw.Close()
	w.wg.Wait()
	return err
}

// shouldIgnorePath reports whether a change to path should be dropped. Only
// components below root are checked against ignoreDirs.
func shouldIgnorePath(root, path string) bool {
	base := filepath.Base(path)
	if ignoreFiles[base] {
		return true
	}
	for suffix := range ignoreFiles {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}
	return false
}
