package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the bursts of events editors produce on save.
const reloadDebounce = 100 * time.Millisecond

// Watch calls onChange after the file at path is written, created or
// renamed into place, until ctx is done. The parent directory is watched,
// so editors that replace the file are followed.
func Watch(ctx context.Context, path string, onChange func()) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("get absolute path for %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("add watch dir for %s: %w", absPath, err)
	}
	log.Debugf("Watching %s", absPath)

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			log.Debugf("Config event %s on %s", event.Op, event.Name)
			timer.Reset(reloadDebounce)

		case <-timer.C:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("File watch error: %v", err)
		}
	}
}

// WatchConfig reloads the [server] section of the config at path whenever
// it changes. Files that fail to load or validate are ignored and the
// previous settings stay in effect.
func (s *Server) WatchConfig(ctx context.Context, path string) error {
	return Watch(ctx, path, func() {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			log.Warnf("Keeping current server config, reload failed: %v", err)
			return
		}
		s.UpdateConfig(cfg.Server)
		log.Infof("Reloaded server config from %s", path)
	})
}
