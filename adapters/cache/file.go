// Package cache stores the latest analytics report as a JSON file.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"safetyhub/domain/analytics"
	"safetyhub/domain/core"
	"safetyhub/internal"
	"safetyhub/ports"
)

// FileCache is a ports.AnalyticsCache backed by one JSON document.
type FileCache struct {
	path   string
	mu     sync.RWMutex
	logger *internal.Logger
}

var _ ports.AnalyticsCache = (*FileCache)(nil)

// NewFileCache creates a cache at path. The file is created on first Store.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path, logger: internal.DefaultLogger.With("cache")}
}

// Path is the cache file location.
func (c *FileCache) Path() string {
	return c.path
}

// Load reads the cached report, returning ports.ErrCacheMiss when none exists.
func (c *FileCache) Load(ctx context.Context) (*analytics.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, core.NewExternalServiceError("analytics cache", err)
	}
	var report analytics.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, core.NewFormatError(c.path, err)
	}
	return &report, nil
}

// Store replaces the cached report.
func (c *FileCache) Store(ctx context.Context, report *analytics.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return core.NewFormatError(c.path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := internal.WriteFileAtomic(c.path, data); err != nil {
		return core.NewExternalServiceError("analytics cache", err)
	}
	c.logger.Info("Stored analytics run %s in %s", report.RunID, c.path)
	return nil
}
