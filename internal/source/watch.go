package source

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/chatview/internal/logging"
)

// DefaultDebounce collapses the burst of events a single save produces.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports changes to one export file. The parent directory is
// watched so editors that replace the file are still seen.
type Watcher struct {
	fw       *fsnotify.Watcher
	path     string
	debounce time.Duration
	log      zerolog.Logger
}

func Watch(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	return &Watcher{
		fw:       fw,
		path:     abs,
		debounce: debounce,
		log:      logging.Component("watch"),
	}, nil
}

// Run calls onChange once per settled change until ctx is done, then
// releases the watcher.
func (w *Watcher) Run(ctx context.Context, onChange func()) {
	defer w.fw.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("path", w.path).Msg("watch error")

		case <-fire:
			fire = nil
			w.log.Debug().Str("path", w.path).Msg("export changed")
			onChange()
		}
	}
}

func (w *Watcher) Close() error {
	return w.fw.Close()
}

// Path is the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}
