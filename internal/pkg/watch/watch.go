// Package watch reports changes to a single file. The containing directory
// is watched so editors that save by renaming over the file are seen.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/debounce"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/logger"
)

// DefaultQuiet is the pause after the last write before a change is
// reported.
const DefaultQuiet = 300 * time.Millisecond

// File calls fn after path has been written, created or renamed into place,
// once the writes have been quiet for the given period. It blocks until ctx
// is cancelled.
func File(ctx context.Context, zLogger *zap.Logger, path string, quiet time.Duration, fn func(path string)) error {
	if zLogger == nil {
		zLogger = zap.NewNop()
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}

	log := zLogger.Named(logger.ComponentNameWatch)

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	dir := filepath.Dir(abs)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	d := debounce.New(quiet, fn)
	defer d.Stop()

	log.Debug("watching file", zap.String("path", abs), zap.Duration("quiet", quiet))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("file changed", zap.String("path", abs), zap.String("op", event.Op.String()))
			d.Trigger(path)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", zap.Error(err))
		}
	}
}
