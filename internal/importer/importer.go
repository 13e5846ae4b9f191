// Package importer turns a normalized bookmark tree into categories and links.
//
// One Import call runs inside a single transaction. Per-entry problems
// (invalid or duplicate URL, empty name) are tallied as skipped; any other
// error rolls the whole import back.
package importer

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/adlinkton/internal/bookmark"
	"github.com/MrSnakeDoc/adlinkton/internal/domain"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
	"github.com/MrSnakeDoc/adlinkton/internal/metrics"
)

// DefaultFaviconTimeout bounds each favicon candidate during an import.
const DefaultFaviconTimeout = 2 * time.Second

// Repository is the storage an import writes through. All calls of one
// import share the same transaction.
type Repository interface {
	FindCategory(ctx context.Context, userID int64, name string, parentID *int64) (int64, error)
	CreateCategory(ctx context.Context, c *domain.Category) (int64, error)
	LinkExists(ctx context.Context, userID int64, url string) (bool, error)
	InsertLink(ctx context.Context, l *domain.Link) (int64, error)
	AttachCategory(ctx context.Context, linkID, categoryID int64, sortOrder int) error
}

// Transactor runs fn with a Repository bound to one transaction.
// A non-nil error from fn rolls back everything fn wrote.
type Transactor interface {
	InTx(ctx context.Context, fn func(repo Repository) error) error
}

// FaviconResolver resolves icons for imported links.
type FaviconResolver interface {
	Resolve(ctx context.Context, rawURL string, timeout time.Duration) (string, bool)
	SaveDataURL(dataURL, pageURL string) (string, bool)
}

// Options is computed once at startup.
type Options struct {
	FaviconTimeout time.Duration
	// Now is the creation time of links without a usable add date.
	Now func() time.Time
}

// Importer drives imports for any user.
type Importer struct {
	tx       Transactor
	favicons FaviconResolver
	opts     Options
	log      logger.Logger
}

func New(tx Transactor, favicons FaviconResolver, opts Options, log logger.Logger) *Importer {
	if opts.FaviconTimeout <= 0 {
		opts.FaviconTimeout = DefaultFaviconTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Importer{
		tx:       tx,
		favicons: favicons,
		opts:     opts,
		log:      log,
	}
}

// Import attaches nodes under the user's "Imported Bookmarks" category.
// On error nothing is persisted and the returned stats are zero.
func (im *Importer) Import(ctx context.Context, userID int64, nodes []bookmark.Node) (domain.ImportStats, error) {
	start := time.Now()

	var stats domain.ImportStats
	err := im.tx.InTx(ctx, func(repo Repository) error {
		w := &walker{im: im, repo: repo, userID: userID}

		rootID, err := ResolveCategory(ctx, repo, userID, domain.ImportRootName, nil)
		if err != nil {
			return err
		}

		s, err := w.walk(ctx, nodes, rootID)
		if err != nil {
			return err
		}

		stats = domain.ImportStats{Folders: 1}
		stats.Add(s)
		return nil
	})
	if err != nil {
		metrics.ImportsTotal.WithLabelValues("failure").Inc()
		im.log.Error("bookmark import failed",
			logger.Int64("user_id", userID),
			logger.Duration("duration", time.Since(start)),
			logger.Error(err))
		return domain.ImportStats{}, err
	}

	metrics.ImportsTotal.WithLabelValues("success").Inc()
	metrics.ImportEntriesTotal.WithLabelValues("folder").Add(float64(stats.Folders))
	metrics.ImportEntriesTotal.WithLabelValues("link").Add(float64(stats.Links))
	metrics.ImportEntriesTotal.WithLabelValues("skipped").Add(float64(stats.Skipped))

	im.log.Info("bookmark import finished",
		logger.Int64("user_id", userID),
		logger.Int("folders", stats.Folders),
		logger.Int("links", stats.Links),
		logger.Int("skipped", stats.Skipped),
		logger.Int("favicons_fetched", stats.FaviconsFetched),
		logger.Duration("duration", time.Since(start)))

	return stats, nil
}
