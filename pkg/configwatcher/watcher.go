package configwatcher

import (
	"context"
	"learning_system_backend/internal/config"
	"learning_system_backend/pkg/logger"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounce = time.Second

// Reloader receives every successfully reloaded configuration.
type Reloader func(cfg *config.Config)

type Watcher struct {
	path string

	mu        sync.Mutex
	reloaders []Reloader
}

func New(configFile string) *Watcher {
	return &Watcher{path: configFile}
}

// OnChange registers fn; callbacks run in registration order.
func (w *Watcher) OnChange(fn Reloader) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reloaders = append(w.reloaders, fn)
}

func (w *Watcher) notify(cfg *config.Config) {
	w.mu.Lock()
	fns := append([]Reloader(nil), w.reloaders...)
	w.mu.Unlock()
	for _, fn := range fns {
		fn(cfg)
	}
}

// Run watches the directory holding the config file until ctx is cancelled.
// The directory is watched rather than the file so editors that replace the
// file on save are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(debounce)
			}
		case <-timer.C:
			newCfg, err := config.LoadConfig(dir)
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			logger.Log.Info("Config reloaded", zap.String("path", absPath))
			w.notify(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}
