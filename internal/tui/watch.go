package tui

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/gitpulse/internal/debounce"
)

const (
	autoRefreshDebounceDelay = 350 * time.Millisecond
	// maxWatchedDirs bounds the number of inotify watches a single
	// dashboard may take.
	maxWatchedDirs = 4096
)

// watcher turns file system activity in a repository into debounced
// change notifications on C.
type watcher struct {
	mu       sync.Mutex
	root     string
	fs       *fsnotify.Watcher
	debounce *debounce.Debouncer
	watched  int
	changes  chan struct{}
	closed   bool
}

func startWatcher(root string) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &watcher{root: root, fs: fsw, changes: make(chan struct{}, 1)}
	for path := range watchPaths(root) {
		if err := w.add(path); err != nil {
			err := errors.Join(err, fsw.Close())
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
	}
	w.debounce = debounce.New(autoRefreshDebounceDelay, w.notify)
	go w.loop()
	return w, nil
}

// C delivers at most one pending notification at a time.
func (w *watcher) C() <-chan struct{} {
	return w.changes
}

func (w *watcher) add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched >= maxWatchedDirs {
		return nil
	}
	slog.Debug("adding path to FS watcher", slog.String("path", path))
	if err := w.fs.Add(path); err != nil {
		return err
	}
	w.watched++
	if w.watched == maxWatchedDirs {
		slog.Warn("watch limit reached, deeper directories are refreshed by the timer only",
			slog.Int("limit", maxWatchedDirs))
	}
	return nil
}

func (w *watcher) notify() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnoreWatchPath(ev.Name) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !isGitInternal(w.root, ev.Name) {
					if err := w.add(ev.Name); err != nil {
						slog.Debug("watch new directory", slog.String("path", ev.Name), slog.Any("error", err))
					}
				}
			}
			w.debounce.Trigger()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.changes)
	w.mu.Unlock()
	w.debounce.Stop()
	return w.fs.Close()
}

// waitForChange turns the next notification into a message. It returns nil
// once the watcher is closed.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fsChangedMsg{}
	}
}

// watchPaths yields the worktree directories and the top of the git
// directory, where index and HEAD updates land.
func watchPaths(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if root == "" {
			return
		}
		gitDir := filepath.Join(root, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			if !yield(gitDir) {
				return
			}
		}
		count := 0
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if d.Name() == ".git" || isGitInternal(root, path) {
				return filepath.SkipDir
			}
			count++
			if count > maxWatchedDirs || !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func isGitInternal(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first == ".git"
}

func shouldIgnoreWatchPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".lock" || ext == ".ipc" {
		return true
	}
	return false
}
