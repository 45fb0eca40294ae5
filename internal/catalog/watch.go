package catalog

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long a layout file must stay quiet before it is reloaded.
const debounce = 100 * time.Millisecond

// Watcher reloads a catalog when its layout file changes on disk.
type Watcher struct {
	catalog *Catalog
	watcher *fsnotify.Watcher

	// Reloaded receives the outcome of every reload attempt. Sends never block.
	Reloaded chan error

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches the catalog's layout directory.
func NewWatcher(c *Catalog) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(c.Dir()); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		catalog:  c,
		watcher:  w,
		Reloaded: make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isLayoutFile(event.Name) || filepath.Base(event.Name) != w.catalog.Name() {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("layout watcher error", "error", err)
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	err := w.catalog.Reload()
	if err != nil {
		slog.Error("layout reload failed, keeping previous layout", "file", w.catalog.Name(), "error", err)
	}
	select {
	case w.Reloaded <- err:
	default:
	}
}

func isLayoutFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
