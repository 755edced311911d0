package datasource

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettle is how long the trace log must stay quiet before a reload
// is signaled.
const DefaultSettle = 100 * time.Millisecond

// Watcher reports when the trace log has been appended to or rewritten.
//
// A running test suite writes the log one event line at a time, so a
// single test produces a burst of writes. Reloading on each of them would
// reparse a half-written session over and over. The watcher instead waits
// until no write to the log has arrived for the settle window and then
// sends one signal for the whole burst.
type Watcher struct {
	fsw     *fsnotify.Watcher
	logPath string
	settle  time.Duration
	changes chan struct{}
	done    chan struct{}
	log     *zap.Logger
}

// WatchOption customizes a Watcher.
type WatchOption func(*Watcher)

// WithSettle sets the quiet period that ends a burst of writes.
func WithSettle(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// NewWatcher starts watching the trace log at logPath. The parent
// directory is watched, not the file, because a fresh test run removes
// the log and creates it again.
func NewWatcher(logPath string, log *zap.Logger, opts ...WatchOption) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(logPath)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		logPath: logPath,
		settle:  DefaultSettle,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     log,
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.loop()
	return w, nil
}

// Changes receives one value per settled burst. A signal the reader has
// not consumed yet absorbs later ones.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

// touchesLog reports whether ev is a write to, or recreation of, the log.
func (w *Watcher) touchesLog(ev fsnotify.Event) bool {
	if filepath.Base(ev.Name) != filepath.Base(w.logPath) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

func (w *Watcher) loop() {
	// quiet fires once the log has not been touched for w.settle; it is
	// nil while no burst is open.
	var quiet <-chan time.Time
	var timer *time.Timer
	writes := 0
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.touchesLog(ev) {
				continue
			}
			writes++
			if timer == nil {
				timer = time.NewTimer(w.settle)
			} else {
				timer.Reset(w.settle)
			}
			quiet = timer.C
		case <-quiet:
			quiet = nil
			w.log.Debug("trace log settled", zap.String("path", w.logPath), zap.Int("writes", writes))
			writes = 0
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch trace log", zap.String("path", w.logPath), zap.Error(err))
		}
	}
}
