// Package backend watches the prompts directory and reports changes made
// outside the program so open editors can reload their catalogue.
package backend

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atomicstack/tmux-prompts/internal/logging/events"
)

// DefaultQuiet is how long the directory must stay still before a change is
// reported.
const DefaultQuiet = 200 * time.Millisecond

// Event reports that something under the watched root changed. Path is the
// last file touched in the burst.
type Event struct {
	Path string
	Err  error
}

// Watcher watches a directory tree and publishes one event per burst of
// filesystem activity.
type Watcher struct {
	root     string
	quiet    time.Duration
	throttle *throttle
	fs       *fsnotify.Watcher

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts watching root and all of its subdirectories.
func NewWatcher(root string, quiet time.Duration) (*Watcher, error) {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		root:     root,
		quiet:    quiet,
		throttle: newThrottle(quiet),
		fs:       fw,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}
	if err := w.addTree(root); err != nil {
		cancel()
		_ = fw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.run()
	go func() {
		w.wg.Wait()
		close(w.events)
	}()
	return w, nil
}

// Events returns a channel of change events. It is closed after Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the watcher goroutine has exited and the events channel
// is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer w.fs.Close()

	timer := time.NewTimer(w.quiet)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := ""

	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						events.Host.Error("watch-add", err)
					}
				}
			}
			events.Daemon.Watch(ev.Name, ev.Op.String())
			pending = ev.Name
			timer.Reset(w.quiet)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if !w.emit(Event{Err: err}) {
				return
			}
		case <-timer.C:
			if pending == "" {
				continue
			}
			if !w.throttle.wait(w.ctx) || !w.emit(Event{Path: pending}) {
				return
			}
			pending = ""
		}
	}
}

func (w *Watcher) emit(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	return !hidden(base) && !strings.HasSuffix(base, ".tmp")
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
