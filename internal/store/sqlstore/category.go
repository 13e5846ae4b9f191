package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/MrSnakeDoc/adlinkton/internal/domain"
)

// FindCategory returns the id of the category named name under parentID
// (nil = top level). name is compared as stored, case-sensitive.
func (q *Queries) FindCategory(ctx context.Context, userID int64, name string, parentID *int64) (int64, error) {
	query := "SELECT id FROM categories WHERE user_id = ? AND name = ? AND parent_id "
	args := []interface{}{userID, name}
	if parentID == nil {
		query += "IS NULL"
	} else {
		query += "= ?"
		args = append(args, *parentID)
	}
	query += " ORDER BY id LIMIT 1"

	var id int64
	if err := sqlx.GetContext(ctx, q.ext, &id, q.ext.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to find category: %w", err)
	}
	return id, nil
}

// CreateCategory inserts c and returns its id.
func (q *Queries) CreateCategory(ctx context.Context, c *domain.Category) (int64, error) {
	query := q.ext.Rebind(`INSERT INTO categories (user_id, parent_id, name, display_mode, default_count, sort_order)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := sqlx.GetContext(ctx, q.ext, &id, query,
		c.UserID, c.ParentID, c.Name, string(c.DisplayMode), c.DefaultCount, c.SortOrder)
	if err != nil {
		return 0, fmt.Errorf("failed to create category: %w", err)
	}
	return id, nil
}

// GetCategory returns one category of userID.
func (q *Queries) GetCategory(ctx context.Context, userID, id int64) (*domain.Category, error) {
	var c domain.Category
	query := q.ext.Rebind(`SELECT id, user_id, parent_id, name, display_mode, default_count, sort_order
		FROM categories WHERE user_id = ? AND id = ?`)
	if err := sqlx.GetContext(ctx, q.ext, &c, query, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// ListCategories returns every category of userID in creation order.
func (q *Queries) ListCategories(ctx context.Context, userID int64) ([]domain.Category, error) {
	var cats []domain.Category
	query := q.ext.Rebind(`SELECT id, user_id, parent_id, name, display_mode, default_count, sort_order
		FROM categories WHERE user_id = ? ORDER BY id`)
	if err := sqlx.SelectContext(ctx, q.ext, &cats, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return cats, nil
}
