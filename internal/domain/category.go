package domain

// DisplayMode controls how the frontend renders a category.
type DisplayMode string

const (
	DisplayTab             DisplayMode = "tab"
	DisplayCollapsibleTile DisplayMode = "collapsible_tile"
	DisplayCollapsibleTree DisplayMode = "collapsible_tree"
)

const (
	// DefaultDisplayMode is assigned to categories created by an import.
	DefaultDisplayMode = DisplayTab
	// DefaultCount is the number of links shown before "show more".
	DefaultCount = 10
	// ImportRootName is the category every import is attached under.
	ImportRootName = "Imported Bookmarks"
)

// Valid reports whether m is one of the known display modes.
func (m DisplayMode) Valid() bool {
	switch m {
	case DisplayTab, DisplayCollapsibleTile, DisplayCollapsibleTree:
		return true
	}
	return false
}

// Category is a user-owned, optionally nested folder grouping links.
//
// (UserID, ParentID, Name) is unique in practice: resolvers reuse an
// existing row instead of creating a duplicate.
type Category struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	ID     int64 `db:"id" json:"id"`
	UserID int64 `db:"user_id" json:"user_id"`

	// ParentID is nil for top-level categories.
	ParentID *int64 `db:"parent_id" json:"parent_id"`

	// Name is stored HTML-escaped (see SanitizeName).
	Name string `db:"name" json:"name"`

	// ─────────────────────────────
	// Presentation
	// ─────────────────────────────

	DisplayMode  DisplayMode `db:"display_mode" json:"display_mode"`
	DefaultCount int         `db:"default_count" json:"default_count"`
	SortOrder    int         `db:"sort_order" json:"sort_order"`
}
