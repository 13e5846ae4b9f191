package importer

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/adlinkton/internal/bookmark"
	"github.com/MrSnakeDoc/adlinkton/internal/domain"
)

// linkResult is what one successful link import adds to the stats.
type linkResult struct {
	ID             int64
	FaviconFetched bool
}

// importLink validates and inserts one bookmark, then attaches it to
// categoryID when set. Rejections wrap domain.ErrInvalidURL,
// domain.ErrEmptyName or domain.ErrDuplicateLink.
func (im *Importer) importLink(ctx context.Context, repo Repository, userID int64, b *bookmark.Link, categoryID *int64) (linkResult, error) {
	if strings.TrimSpace(b.URL) == "" {
		return linkResult{}, fmt.Errorf("%w: missing href", domain.ErrEmptyName)
	}

	url, err := domain.ValidateURL(b.URL)
	if err != nil {
		return linkResult{}, err
	}

	name := domain.SanitizeName(b.Name)
	if name == "" {
		return linkResult{}, fmt.Errorf("%w: %s", domain.ErrEmptyName, url)
	}

	exists, err := repo.LinkExists(ctx, userID, url)
	if err != nil {
		return linkResult{}, err
	}
	if exists {
		return linkResult{}, fmt.Errorf("%w: %s", domain.ErrDuplicateLink, url)
	}

	favicon, fetched := im.favicon(ctx, url, b.Icon)

	id, err := repo.InsertLink(ctx, &domain.Link{
		UserID:      userID,
		URL:         url,
		Name:        name,
		FaviconPath: sql.NullString{String: favicon, Valid: fetched},
		CreatedAt:   im.createdAt(b.AddDate),
	})
	if err != nil {
		return linkResult{}, err
	}

	if categoryID != nil {
		if err := repo.AttachCategory(ctx, id, *categoryID, 0); err != nil {
			return linkResult{}, err
		}
	}

	return linkResult{ID: id, FaviconFetched: fetched}, nil
}

// favicon prefers the bookmark's embedded icon and falls back to the network.
func (im *Importer) favicon(ctx context.Context, url, icon string) (string, bool) {
	if strings.HasPrefix(icon, "data:image/") {
		if p, ok := im.favicons.SaveDataURL(icon, url); ok {
			return p, true
		}
	}
	return im.favicons.Resolve(ctx, url, im.opts.FaviconTimeout)
}

// maxAddDate is 9999-12-31T23:59:59Z, the last instant every backend stores.
const maxAddDate = 253402300799

// createdAt converts an ADD_DATE attribute (Unix seconds) and falls back to
// now when it is missing, not positive or past year 9999.
func (im *Importer) createdAt(addDate string) time.Time {
	addDate = strings.TrimSpace(addDate)
	if secs, err := strconv.ParseInt(addDate, 10, 64); err == nil {
		if secs > 0 && secs <= maxAddDate {
			return time.Unix(secs, 0).UTC()
		}
		return im.opts.Now().UTC()
	}
	if f, err := strconv.ParseFloat(addDate, 64); err == nil && f > 0 && f <= maxAddDate {
		return time.Unix(int64(f), 0).UTC()
	}
	return im.opts.Now().UTC()
}
