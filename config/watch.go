package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/fsnotify/fsnotify"
)

// Watch republishes the controller section of the file at path every time the file is written or
// replaced. The directory is watched rather than the file so editors that save via rename are seen.
// Invalid or unreadable revisions are logged and skipped. Only the most recent tuning is buffered.
// The returned channel is closed when ctx is done.
//
// Parameters:
//   - ctx: controls the watcher's lifetime
//   - path: the TOML file to watch
//
// Returns:
//   - <-chan ControllerConfig: receives each valid new tuning
//   - error: error if the watcher cannot be created
func Watch(ctx context.Context, path string) (<-chan ControllerConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(abs), err)
	}

	out := make(chan ControllerConfig, 1)
	go func() {
		defer close(out)
		defer watcher.Close()
		log := common.Logger().With("path", abs)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				cfg, err := Load(abs)
				if err != nil {
					log.Warn("config reload skipped", "err", err)
					continue
				}
				if err := cfg.Controller.Validate(); err != nil {
					log.Warn("config reload skipped", "err", err)
					continue
				}
				publishLatest(out, cfg.Controller)
				log.Info("controller tuning reloaded", "speed", cfg.Controller.Speed, "sensitivity", cfg.Controller.Sensitivity)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", "err", err)
			}
		}
	}()
	return out, nil
}

// publishLatest replaces any unread value so the consumer always sees the newest tuning.
func publishLatest(out chan ControllerConfig, c ControllerConfig) {
	for {
		select {
		case out <- c:
			return
		default:
			select {
			case <-out:
			default:
			}
		}
	}
}
