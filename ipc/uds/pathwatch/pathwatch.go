// Package pathwatch tells a server when its socket file has been removed out from under it.
//
// A socket that has been unlinked keeps working for peers that are already connected, but
// nothing new can connect to it. Servers that want to exit (or rebind) when an operator
// removes the file can wait on Watch.Done().
//
//	w, err := pathwatch.Removed(path)
//	if err != nil {
//		// Do something
//	}
//	defer w.Close()
//
//	select {
//	case <-w.Done():
//		log.Infof("socket file %s was removed", path)
//	case <-ctx.Done():
//	}
package pathwatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	log "github.com/golang/glog"
)

// Watch watches a single path for removal.
type Watch struct {
	path    string
	watcher *fsnotify.Watcher

	done     chan struct{}
	doneOnce sync.Once

	closer  chan struct{}
	stopped chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Removed starts watching path and returns a Watch whose Done() channel closes once path is
// removed or renamed away. path must exist.
func Removed(path string) (*Watch, error) {
	path = filepath.Clean(path)
	if _, err := os.Lstat(path); err != nil {
		return nil, fmt.Errorf("cannot watch %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("problem creating file watcher: %w", err)
	}
	// Sockets cannot be watched directly on every platform, the parent directory can.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("problem watching directory of %q: %w", path, err)
	}

	w := &Watch{
		path:    path,
		watcher: watcher,
		done:    make(chan struct{}),
		closer:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go w.listen()

	// The file may have gone before the watch was in place.
	if _, err := os.Lstat(path); os.IsNotExist(err) {
		w.removed()
	}
	return w, nil
}

func (w *Watch) listen() {
	defer close(w.stopped)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				log.V(1).Infof("pathwatch: saw %s on %s", event.Op, w.path)
				w.removed()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("problem with pathwatch on %s: %s", w.path, err)
		case <-w.closer:
			return
		}
	}
}

func (w *Watch) removed() {
	w.doneOnce.Do(func() { close(w.done) })
}

// Path returns the path being watched.
func (w *Watch) Path() string {
	return w.path
}

// Done returns a channel that is closed when the path is removed.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}

// Close stops watching. Done() will not close after this unless it already has.
func (w *Watch) Close() error {
	w.closeOnce.Do(func() {
		close(w.closer)
		<-w.stopped
		w.closeErr = w.watcher.Close()
	})
	return w.closeErr
}
