package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/MrSnakeDoc/adlinkton/internal/domain"
)

// LinkExists reports whether userID already owns a link to url.
func (q *Queries) LinkExists(ctx context.Context, userID int64, url string) (bool, error) {
	var id int64
	query := q.ext.Rebind("SELECT id FROM links WHERE user_id = ? AND url = ? LIMIT 1")
	err := sqlx.GetContext(ctx, q.ext, &id, query, userID, url)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check link: %w", err)
	}
	return true, nil
}

// InsertLink inserts l and returns its id.
func (q *Queries) InsertLink(ctx context.Context, l *domain.Link) (int64, error) {
	query := q.ext.Rebind(`INSERT INTO links (user_id, url, name, favicon_path, is_favorite, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := sqlx.GetContext(ctx, q.ext, &id, query,
		l.UserID, l.URL, l.Name, l.FaviconPath, l.IsFavorite, l.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert link: %w", err)
	}
	return id, nil
}

// AttachCategory links linkID to categoryID.
func (q *Queries) AttachCategory(ctx context.Context, linkID, categoryID int64, sortOrder int) error {
	query := q.ext.Rebind("INSERT INTO link_categories (link_id, category_id, sort_order) VALUES (?, ?, ?)")
	if _, err := q.ext.ExecContext(ctx, query, linkID, categoryID, sortOrder); err != nil {
		return fmt.Errorf("failed to attach link to category: %w", err)
	}
	return nil
}

// ListLinks returns every link of userID in creation order.
func (q *Queries) ListLinks(ctx context.Context, userID int64) ([]domain.Link, error) {
	var links []domain.Link
	query := q.ext.Rebind(`SELECT id, user_id, url, name, favicon_path, is_favorite, created_at
		FROM links WHERE user_id = ? ORDER BY id`)
	if err := sqlx.SelectContext(ctx, q.ext, &links, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// LinkCategoryIDs returns the categories linkID is attached to.
func (q *Queries) LinkCategoryIDs(ctx context.Context, linkID int64) ([]int64, error) {
	var ids []int64
	query := q.ext.Rebind("SELECT category_id FROM link_categories WHERE link_id = ? ORDER BY category_id")
	if err := sqlx.SelectContext(ctx, q.ext, &ids, query, linkID); err != nil {
		return nil, fmt.Errorf("failed to list link categories: %w", err)
	}
	return ids, nil
}

// LinksMissingFavicon returns links of all users whose favicon_path is NULL or empty.
func (q *Queries) LinksMissingFavicon(ctx context.Context) ([]domain.Link, error) {
	var links []domain.Link
	query := `SELECT id, user_id, url, name, favicon_path, is_favorite, created_at
		FROM links WHERE favicon_path IS NULL OR favicon_path = '' ORDER BY id`
	if err := sqlx.SelectContext(ctx, q.ext, &links, query); err != nil {
		return nil, fmt.Errorf("failed to list links without favicon: %w", err)
	}
	return links, nil
}

// UpdateFavicon sets the favicon path of a link.
func (q *Queries) UpdateFavicon(ctx context.Context, linkID int64, path string) error {
	query := q.ext.Rebind("UPDATE links SET favicon_path = ? WHERE id = ?")
	if _, err := q.ext.ExecContext(ctx, query, path, linkID); err != nil {
		return fmt.Errorf("failed to update favicon: %w", err)
	}
	return nil
}

// FaviconPaths returns the distinct favicon paths referenced by any link.
func (q *Queries) FaviconPaths(ctx context.Context) ([]string, error) {
	var paths []string
	query := "SELECT DISTINCT favicon_path FROM links WHERE favicon_path IS NOT NULL AND favicon_path <> ''"
	if err := sqlx.SelectContext(ctx, q.ext, &paths, query); err != nil {
		return nil, fmt.Errorf("failed to list favicon paths: %w", err)
	}
	return paths, nil
}
