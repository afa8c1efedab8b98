package auth

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"fleetsync/internal/config"
	"fleetsync/internal/config/logger"
)

// Watcher reports changes of the token file
type Watcher interface {
	Start(ctx context.Context, onChange func()) error
	Close()
}

// watcher implements Watcher on top of fsnotify
type watcher struct {
	path      string
	debounce  time.Duration
	fsWatcher *fsnotify.Watcher
	debouncer Debouncer
	log       logger.Logger
	mu        sync.Mutex
	started   bool
	closed    bool
}

// NewWatcher creates a token file watcher; it is inert when no token file is configured
func NewWatcher(cfg *config.Config, log logger.Logger) Watcher {
	return &watcher{
		path:     cfg.Auth.TokenFile,
		debounce: cfg.Watch.Debounce,
		log:      log.WithComponent("AUTH"),
	}
}

// Start watches the directory holding the token file so editor renames and atomic replaces are seen
func (w *watcher) Start(ctx context.Context, onChange func()) error {
	if w.path == "" {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started || w.closed {
		return nil
	}

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return err
	}

	w.path = abs
	w.fsWatcher = fsw
	w.debouncer = NewDebouncer(w.debounce, onChange)
	w.started = true

	w.log.Info().Msgf("Watching token file %s", abs)

	go w.processEvents(fsw)

	go func() {
		<-ctx.Done()
		w.Close()
	}()

	return nil
}

// Close stops watching and drops pending notifications
func (w *watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	w.closed = true

	if w.debouncer != nil {
		w.debouncer.Stop()
	}

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
	}
}

func (w *watcher) processEvents(fsw *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}

			w.handleEvent(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}

			w.log.Error().Err(err).Msg("Token watcher error")
		}
	}
}

func (w *watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	if !isRelevantEvent(event) {
		return
	}

	w.log.Debug().Msgf("Token file changed (%s)", event.Op)
	w.debouncer.Trigger()
}

// isRelevantEvent returns true if the event may have changed the token
func isRelevantEvent(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename)
}
