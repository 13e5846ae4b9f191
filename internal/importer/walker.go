package importer

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/adlinkton/internal/bookmark"
	"github.com/MrSnakeDoc/adlinkton/internal/domain"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
)

// walker performs the side effects of one import over a normalized tree.
type walker struct {
	im     *Importer
	repo   Repository
	userID int64
}

// walk imports nodes in document order under parentID and returns what it
// added. Only non-entry errors are returned.
func (w *walker) walk(ctx context.Context, nodes []bookmark.Node, parentID int64) (domain.ImportStats, error) {
	var stats domain.ImportStats

	for _, n := range nodes {
		switch v := n.(type) {
		case *bookmark.Folder:
			s, err := w.folder(ctx, v, parentID)
			if err != nil {
				return stats, err
			}
			stats.Add(s)

		case *bookmark.Link:
			s, err := w.link(ctx, v, parentID)
			if err != nil {
				return stats, err
			}
			stats.Add(s)
		}
	}
	return stats, nil
}

// folder counts one folder per resolved category, created or reused.
// A folder without a name is skipped and its children stay in parentID.
func (w *walker) folder(ctx context.Context, f *bookmark.Folder, parentID int64) (domain.ImportStats, error) {
	if strings.TrimSpace(f.Name) == "" {
		w.im.log.Debug("skipping unnamed folder", logger.Int("children", len(f.Children)))
		s, err := w.walk(ctx, f.Children, parentID)
		s.Skipped++
		return s, err
	}

	id, err := ResolveCategory(ctx, w.repo, w.userID, f.Name, &parentID)
	if err != nil {
		if domain.IsEntryError(err) {
			s, err := w.walk(ctx, f.Children, parentID)
			s.Skipped++
			return s, err
		}
		return domain.ImportStats{}, err
	}

	s, err := w.walk(ctx, f.Children, id)
	s.Folders++
	return s, err
}

func (w *walker) link(ctx context.Context, l *bookmark.Link, parentID int64) (domain.ImportStats, error) {
	res, err := w.im.importLink(ctx, w.repo, w.userID, l, &parentID)
	if err != nil {
		if domain.IsEntryError(err) {
			w.im.log.Debug("skipping bookmark",
				logger.String("url", l.URL),
				logger.Error(err))
			return domain.ImportStats{Skipped: 1}, nil
		}
		return domain.ImportStats{}, err
	}

	s := domain.ImportStats{Links: 1}
	if res.FaviconFetched {
		s.FaviconsFetched++
	}
	return s, nil
}
