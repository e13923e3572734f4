package docstore

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the store when the loaded document changes on disk.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher bound to the store.
func NewWatcher(store *Store) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{store: store, watcher: w}, nil
}

// Watch monitors the directory containing path and reloads the store
// when the document file is written or recreated. Runs until ctx is done.
func (w *Watcher) Watch(ctx context.Context, path string) error {
	// Watch the directory, not the file: editors and uploads commonly
	// replace the file, which drops a direct file watch.
	dir := filepath.Dir(path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := w.store.Load(target); err != nil {
					log.Printf("[ERROR] reload after change to %s: %v", target, err)
					continue
				}
				log.Printf("[INFO] document reloaded: %s (%d pages)", target, w.store.Len())
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
