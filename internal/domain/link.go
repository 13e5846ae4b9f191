package domain

import (
	"database/sql"
	"time"
)

// Link is a bookmarked URL owned by a user.
// (UserID, URL) is unique: a second insert for the same pair is rejected.
type Link struct {
	ID     int64  `db:"id" json:"id"`
	UserID int64  `db:"user_id" json:"user_id"`
	URL    string `db:"url" json:"url"`
	Name   string `db:"name" json:"name"`

	// FaviconPath is the public path of the cached icon, NULL when none could be resolved.
	FaviconPath sql.NullString `db:"favicon_path" json:"-"`

	IsFavorite bool      `db:"is_favorite" json:"is_favorite"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// LinkCategory attaches a link to a category.
type LinkCategory struct {
	LinkID     int64 `db:"link_id"`
	CategoryID int64 `db:"category_id"`
	SortOrder  int   `db:"sort_order"`
}
