package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Changed is published on the event bus when the config file is reloaded.
type Changed struct {
	Config Config
}

// Watcher reloads the config file when it changes on disk.
//
// Editors typically rewrite config files with a remove/rename plus create,
// so the watcher monitors the parent directory and filters by name, with a
// short debounce to collapse bursts.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(Config)

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}
	running bool
}

// NewWatcher creates a watcher for the config file at path.
// onChange is called with the freshly loaded config after each change.
func NewWatcher(path string, onChange func(Config)) *Watcher {
	return &Watcher{
		path:     path,
		debounce: 250 * time.Millisecond,
		onChange: onChange,
	}
}

// Start begins watching. Returns an error if the parent directory cannot be
// watched.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watching config directory: %w", err)
	}

	w.fsw = fsw
	w.done = make(chan struct{})
	w.running = true

	go w.loop()
	return nil
}

// Stop stops watching. Safe to call multiple times.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	close(w.done)
	_ = w.fsw.Close()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// scheduleReload debounces rapid change bursts into one reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		// A half-written or invalid file; keep the current config.
		return
	}
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
