package pysource

import (
	"context"
	"os"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher bridges host filesystem change events into Store.SetText calls
// (spec §3 Source file lifecycle: "mutated by the host (editor/filesystem
// watcher) which bumps revision"). Only used for regular (on-disk) paths;
// virtual and vendored paths are never watched.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	log     *zap.Logger
	cancel  context.CancelFunc
}

// NewWatcher creates a Watcher that applies on-disk changes to store.
func NewWatcher(store *Store, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{store: store, watcher: fw, log: log}, nil
}

// Add begins watching path for changes.
func (w *Watcher) Add(path string) error {
	return w.watcher.Add(path)
}

// Run processes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("filesystem watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(_ context.Context, ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	data, err := os.ReadFile(ev.Name)
	if err != nil {
		w.log.Debug("skip unreadable path on change", zap.String("path", ev.Name), zap.Error(err))
		return
	}
	rev := w.store.SetText(ev.Name, string(data), KindRegular)
	w.log.Debug("applied external edit", zap.String("path", ev.Name), zap.Int("revision", rev))
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	return w.watcher.Close()
}
