// Package watcher re-runs a callback when the watched repository
// directories change on disk, with debouncing so a burst of writes
// (e.g. a repo sync) triggers a single run.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches directory trees and invokes OnChange after events
// settle for the debounce window.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New creates a Watcher over the given directory trees. Each tree is
// added recursively; directories created later are added as they
// appear.
func New(dirs []string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("onChange callback cannot be nil")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Start begins event processing in a background goroutine.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.fsw.Add(event.Name); err != nil {
						fmt.Fprintf(os.Stderr, "watcher: failed to watch %s: %v\n", event.Name, err)
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.onChange()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watcher: %v\n", err)
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Stop halts event processing and releases the underlying watcher.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	w.wg.Wait()
	return w.fsw.Close()
}
