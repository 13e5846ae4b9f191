package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/adlinkton/internal/favicon"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
	"github.com/MrSnakeDoc/adlinkton/internal/metrics"
)

const (
	// DefaultGCThreshold is the age after which unreferenced favicons are deleted
	DefaultGCThreshold = 30 * 24 * time.Hour // 30 days
)

// FaviconReferences lists the favicon paths still used by links
type FaviconReferences interface {
	FaviconPaths(ctx context.Context) ([]string, error)
}

// GarbageCollector removes cached favicons no link points to anymore
type GarbageCollector struct {
	refs      FaviconReferences
	files     *favicon.Store
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	refs FaviconReferences,
	files *favicon.Store,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *GarbageCollector {
	if threshold == 0 {
		threshold = DefaultGCThreshold
	}

	return &GarbageCollector{
		refs:      refs,
		files:     files,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if _, err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial favicon garbage collection failed",
			logger.Error(err))
	}

	if gc.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := gc.Collect(ctx); err != nil {
					gc.logger.Error("favicon garbage collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect removes unreferenced favicons older than the threshold and returns
// how many were deleted. Young files are kept: they may belong to an import
// that has not committed yet.
func (gc *GarbageCollector) Collect(ctx context.Context) (int, error) {
	paths, err := gc.refs.FaviconPaths(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list referenced favicons: %w", err)
	}

	referenced := make(map[string]bool, len(paths))
	for _, p := range paths {
		if name := gc.files.NameOf(p); name != "" {
			referenced[name] = true
		}
	}

	files, err := gc.files.Files()
	if err != nil {
		return 0, err
	}

	now := gc.now()
	deleted := 0
	for _, f := range files {
		if referenced[f.Name] {
			continue
		}
		age := now.Sub(f.ModTime)
		if age < gc.threshold {
			continue
		}

		if err := gc.files.Remove(f.Name); err != nil {
			gc.logger.Warn("failed to remove favicon",
				logger.String("file", f.Name),
				logger.Error(err))
			continue
		}

		gc.logger.Debug("garbage collected favicon",
			logger.String("file", f.Name),
			logger.String("unused_for", age.String()))
		metrics.FaviconFilesRemoved.Inc()
		deleted++
	}

	if deleted > 0 {
		gc.logger.Info("favicon garbage collection completed",
			logger.Int("deleted", deleted),
			logger.Int("kept", len(files)-deleted))
	} else {
		gc.logger.Debug("no favicons to garbage collect")
	}

	return deleted, nil
}
