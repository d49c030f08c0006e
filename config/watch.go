package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const debounceInterval = 100 * time.Millisecond

// Watch reloads the configuration file whenever it changes, until ctx is
// done. It returns immediately when no file was configured.
func Watch(ctx context.Context) error {
	mu.RLock()
	p := path
	mu.RUnlock()
	if p == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	// the directory is watched so that editors replacing the file are seen
	if err := watcher.Add(filepath.Dir(p)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", p, err)
	}

	go func() {
		defer watcher.Close()
		var timer *time.Timer
		var fire <-chan time.Time
		target := filepath.Clean(p)
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				log.Debugf("config file event: %s", event)
				if timer == nil {
					timer = time.NewTimer(debounceInterval)
				} else {
					timer.Reset(debounceInterval)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				if err := reload(); err != nil {
					log.Errorf("config reload failed, keeping the previous one: %s", err)
				} else {
					log.Infof("config reloaded from %s", target)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("config watcher error: %s", err)
			}
		}
	}()
	return nil
}
