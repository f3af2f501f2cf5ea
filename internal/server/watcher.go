package server

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/livetemplate/pinboard/internal/config"
)

// debounce is how long the watched file must stay quiet before onChange runs.
// A save usually arrives as a truncate followed by one or more writes.
const debounce = 100 * time.Millisecond

// Watcher watches a single file and calls onChange when it is written or
// recreated. Editors that save by rename replace the file, so the parent
// directory is watched and events are filtered by name.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(path string) error
	done     chan struct{}
	debug    bool

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for path.
func NewWatcher(path string, onChange func(string) error, debug bool) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return &Watcher{
		watcher:  fsWatcher,
		path:     abs,
		onChange: onChange,
		done:     make(chan struct{}),
		debug:    debug,
	}, nil
}

// Start begins watching in a new goroutine.
func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}

				if w.debug {
					log.Printf("[Watch] File changed: %s", event.Name)
				}
				w.schedule()

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[Watch] Error: %v", err)

			case <-w.done:
				return
			}
		}
	}()
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Reset(debounce)
		return
	}
	w.timer = time.AfterFunc(debounce, func() {
		if err := w.onChange(w.path); err != nil {
			log.Printf("[Watch] Reload failed for %s: %v", w.path, err)
		}
	})
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

// EnableWatch reloads the board whenever the config file changes. An invalid
// config is logged and the current board kept.
func (s *Server) EnableWatch(ctx context.Context) error {
	if s.config.Path == "" {
		return fmt.Errorf("no config file to watch")
	}

	watcher, err := NewWatcher(s.config.Path, func(path string) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		log.Printf("[Watch] Reloading board from %s", path)
		return s.Reset(ctx, cfg.Board.GetItems())
	}, s.debug)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	s.watcher = watcher
	s.watcher.Start()

	log.Printf("[Watch] Config watcher started for %s", s.config.Path)
	return nil
}

// StopWatch stops the config watcher if it's running.
func (s *Server) StopWatch() error {
	if s.watcher != nil {
		w := s.watcher
		s.watcher = nil
		return w.Stop()
	}
	return nil
}
