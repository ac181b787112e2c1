package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/five82/sessiondeck/internal/logging"
)

const watchDebounce = 500 * time.Millisecond

// watchFile calls onChange after path is written, created or renamed into
// place. The parent directory is watched because editors usually replace the
// file rather than write it in place. Bursts of events collapse into one
// call. It blocks until ctx is done.
func watchFile(ctx context.Context, log zerolog.Logger, path string, debounce time.Duration, onChange func()) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info().Str(logging.FieldEvent, "config.watcher_disabled").Str("dir", dir).Msg("config directory missing; not watching")
			return nil
		}
		return fmt.Errorf("stat config dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}
	log.Info().Str(logging.FieldEvent, "config.watcher_started").Str("path", path).Msg("watching config file for changes")

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()
	name := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			log.Info().Str(logging.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug().Str(logging.FieldEvent, "config.file_changed").Str("op", event.Op.String()).Msg("config file changed")
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				if ctx.Err() == nil {
					onChange()
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Str(logging.FieldEvent, "config.watcher_error").Msg("config watcher error")
		}
	}
}
