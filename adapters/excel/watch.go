package excel

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"safetyhub/domain/core"
	"safetyhub/ports"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce groups the burst of events a single save produces.
const DefaultWatchDebounce = 500 * time.Millisecond

// Watch re-imports path every time its content changes until ctx is done.
// The containing directory is watched so editors that replace the file on
// save are still seen. Saves that leave the content unchanged are skipped.
// onImport receives every import outcome.
func (i *Ingester) Watch(ctx context.Context, path string, debounce time.Duration, onImport func(*ports.IngestResult, error)) error {
	if _, err := NewDataReader(path); err != nil {
		return err
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return core.NewConfigurationError("file", err.Error())
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return core.NewExternalServiceError("file watcher", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return core.NewExternalServiceError("file watcher", err)
	}
	i.logger.Info("Watching %s for changes", target)

	last := checksum(target)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			i.logger.Debug("Change detected: %s", event)
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			i.logger.Warn("File watcher error: %v", err)
		case <-timer.C:
			sum := checksum(target)
			if sum != "" && sum == last {
				i.logger.Debug("%s unchanged, skipping import", filepath.Base(target))
				continue
			}
			last = sum
			i.logger.Info("%s modified, re-importing", filepath.Base(target))
			onImport(i.IngestFile(ctx, target))
		}
	}
}

// checksum returns the content checksum of path, or "" when it cannot be read.
func checksum(path string) core.FileChecksum {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return core.NewFileChecksum(data)
}
