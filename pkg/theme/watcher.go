package theme

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// debounceInterval coalesces the burst of fsnotify events a single
// save produces into one catalog rebuild.
const debounceInterval = 250 * time.Millisecond

// Watcher rebuilds a registry's catalog when the active theme's files
// change on disk. It is a development-server convenience; production
// deployments load the catalog once at startup.
type Watcher struct {
	dir      *Dir
	registry *Registry
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	done     chan struct{}
}

// Watch starts watching the theme directory tree. The Dir must have
// been opened at an OS path (NewDirAt); memory-backed theme dirs have
// nothing to watch.
func Watch(dir *Dir, registry *Registry, logger *zap.Logger) (*Watcher, error) {
	if dir.Root() == "" {
		return nil, errors.New("theme: watcher requires a theme directory on the OS filesystem")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filesystem watcher")
	}

	w := &Watcher{
		dir:      dir,
		registry: registry,
		watcher:  fsw,
		logger:   logger,
		done:     make(chan struct{}),
	}

	themeRoot := filepath.Join(dir.Root(), registry.Theme())
	if err := w.addRecursive(themeRoot); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return errors.Wrap(w.watcher.Close(), "failed to close filesystem watcher")
}

func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// New block folders need their own watch to pick up the
			// markup source that lands next.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(debounceInterval)
				timerCh = timer.C
			} else {
				timer.Reset(debounceInterval)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("theme watcher error", zap.Error(err))
		case <-timerCh:
			timer = nil
			timerCh = nil
			w.rebuild()
		}
	}
}

func (w *Watcher) rebuild() {
	name := w.registry.Theme()

	catalog, err := w.dir.BuildCatalog(name)
	if err != nil && catalog == nil {
		w.logger.Error("failed to rebuild theme catalog", zap.String("theme", name), zap.Error(err))
		return
	}
	if err != nil {
		// Partial build: healthy blocks registered, broken ones logged.
		w.logger.Warn("theme catalog rebuilt with errors", zap.String("theme", name), zap.Error(err))
	}

	w.registry.Swap(catalog)
	w.logger.Info(
		"theme catalog reloaded",
		zap.String("theme", name),
		zap.Int("definitions", len(catalog.Definitions())),
	)
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "failed to watch %q", path)
		}
		if !d.IsDir() {
			return nil
		}
		return errors.Wrapf(w.watcher.Add(path), "failed to watch %q", path)
	})
}
