package item

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/logging"
)

// Watcher observes a project's data source directory and reports when image
// files appear or disappear. It only notifies; the library still changes
// exclusively through Scan.
type Watcher struct {
	fw        *fsnotify.Watcher
	log       zerolog.Logger
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// WatchSource starts watching dir. For every created, removed, or renamed
// file matching patterns, notify is invoked from the watcher goroutine with
// the affected path and the operation name.
func WatchSource(dir string, patterns []string, notify func(path, op string)) (*Watcher, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		fw:      fw,
		log:     logging.Component("source-watcher"),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go w.loop(patterns, notify)
	w.log.Debug().Str("dir", dir).Msg("watching data source")
	return w, nil
}

func (w *Watcher) loop(patterns []string, notify func(path, op string)) {
	defer close(w.stopped)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !matchesAny(patterns, filepath.Base(ev.Name)) {
				continue
			}
			notify(ev.Name, strings.ToLower(ev.Op.String()))
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func matchesAny(patterns []string, name string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, lower); err == nil && ok {
			return true
		}
	}
	return false
}

// Close stops the watcher and waits for its goroutine to exit. Closing an
// already closed watcher is a no-op.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fw.Close()
		<-w.stopped
	})
	return err
}
