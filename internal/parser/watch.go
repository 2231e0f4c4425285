package parser

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher reports files created or written directly under a root
// directory to its onEvent callback: an fsnotify.Watcher wrapped with a
// stop channel and a goroutine draining Events/Errors. Subdirectories of
// root are not watched, and the orchestrator does not create a Watcher.
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string
	onEvent func(path string)
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	started bool
}

// NewWatcher creates a Watcher rooted at root. onEvent is called (from
// the watcher's own goroutine) for every create/write event observed.
func NewWatcher(root string, onEvent func(path string)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(root); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{
		watcher: w,
		root:    root,
		onEvent: onEvent,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine. Calling Start twice
// is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.run()
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.onEvent(ev.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Str("root", w.root).Msg("parser watcher error")
		}
	}
}

// Stop ends the watch goroutine and releases the underlying fsnotify
// watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}
