package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/adlinkton/internal/domain"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
)

const (
	// DefaultRefetchTimeout bounds each favicon candidate during a refetch
	DefaultRefetchTimeout = 5 * time.Second
	// DefaultRefetchDelay paces consecutive fetches
	DefaultRefetchDelay = 500 * time.Millisecond
)

// RefetchStore lists links without an icon and records resolved ones
type RefetchStore interface {
	LinksMissingFavicon(ctx context.Context) ([]domain.Link, error)
	UpdateFavicon(ctx context.Context, linkID int64, path string) error
}

// FaviconFetcher resolves the favicon of a page URL
type FaviconFetcher interface {
	Resolve(ctx context.Context, rawURL string, timeout time.Duration) (string, bool)
}

// RefetchOptions configures a FaviconRefetcher
type RefetchOptions struct {
	Interval time.Duration // 0 = manual trigger only
	Timeout  time.Duration // per-candidate timeout
	Delay    time.Duration // minimum spacing between two fetches
	Workers  int           // concurrent fetches (default 1)
}

// RefetchResult summarizes one refetch run
type RefetchResult struct {
	Total   int
	Updated int
	Failed  int
}

// FaviconRefetcher resolves favicons for links imported without one
type FaviconRefetcher struct {
	store         RefetchStore
	favicons      FaviconFetcher
	logger        logger.Logger
	opts          RefetchOptions
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewFaviconRefetcher creates a new favicon refetcher
func NewFaviconRefetcher(
	store RefetchStore,
	favicons FaviconFetcher,
	log logger.Logger,
	opts RefetchOptions,
	manualTrigger chan struct{},
) *FaviconRefetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRefetchTimeout
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	return &FaviconRefetcher{
		store:         store,
		favicons:      favicons,
		logger:        log,
		opts:          opts,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic refetch process. Nothing runs until the first
// tick or manual trigger.
func (fr *FaviconRefetcher) Start(ctx context.Context) error {
	go func() {
		var tick <-chan time.Time
		if fr.opts.Interval > 0 {
			ticker := time.NewTicker(fr.opts.Interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				fr.run(ctx)
			case <-fr.manualTrigger:
				fr.logger.Info("manual favicon refetch triggered")
				fr.run(ctx)
			case <-fr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the refetcher
func (fr *FaviconRefetcher) Stop() {
	close(fr.stopCh)
}

func (fr *FaviconRefetcher) run(ctx context.Context) {
	if _, err := fr.Refetch(ctx); err != nil {
		fr.logger.Error("favicon refetch failed", logger.Error(err))
	}
}

// Refetch resolves a favicon for every link that has none
func (fr *FaviconRefetcher) Refetch(ctx context.Context) (RefetchResult, error) {
	start := time.Now()

	links, err := fr.store.LinksMissingFavicon(ctx)
	if err != nil {
		return RefetchResult{}, fmt.Errorf("failed to list links: %w", err)
	}

	fr.logger.Info("refetching missing favicons",
		logger.Int("total", len(links)))

	limit := rate.Inf
	if fr.opts.Delay > 0 {
		limit = rate.Every(fr.opts.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var updated, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fr.opts.Workers)

	for _, link := range links {
		if err := limiter.Wait(gctx); err != nil {
			break
		}

		g.Go(func() error {
			path, ok := fr.favicons.Resolve(gctx, link.URL, fr.opts.Timeout)
			if !ok {
				failed.Add(1)
				fr.logger.Debug("no favicon for link",
					logger.Int64("link_id", link.ID),
					logger.String("url", link.URL))
				return nil
			}
			if err := fr.store.UpdateFavicon(gctx, link.ID, path); err != nil {
				failed.Add(1)
				fr.logger.Warn("failed to store favicon",
					logger.Int64("link_id", link.ID),
					logger.Error(err))
				return nil
			}
			updated.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	res := RefetchResult{
		Total:   len(links),
		Updated: int(updated.Load()),
		Failed:  int(failed.Load()),
	}

	fr.logger.Info("favicon refetch completed",
		logger.Int("total", res.Total),
		logger.Int("updated", res.Updated),
		logger.Int("failed", res.Failed),
		logger.Duration("duration", time.Since(start)))

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("favicon refetch interrupted: %w", err)
	}
	return res, nil
}
