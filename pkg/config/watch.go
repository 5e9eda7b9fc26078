package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/tesseralab/tessera/internal/logger"
)

// Watch observes the configuration file and calls onChange with the
// freshly loaded configuration whenever it is rewritten. Malformed
// rewrites are logged and skipped; the previous configuration stays in
// effect. Watch blocks until the context is cancelled.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file (rename-over-write) keep triggering.
func Watch(ctx context.Context, configPath string, onChange func(*Config)) error {
	if configPath == "" {
		configPath = GetDefaultConfigPath()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		return err
	}

	target := filepath.Clean(configPath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(configPath)
			if err != nil {
				logger.Warn("config reload skipped", logger.KeyError, err)
				continue
			}
			logger.Info("configuration reloaded", "path", configPath)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", logger.KeyError, err)
		}
	}
}
