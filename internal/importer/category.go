package importer

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/adlinkton/internal/domain"
	"github.com/MrSnakeDoc/adlinkton/internal/store/sqlstore"
)

// ResolveCategory returns the id of the user's category named name under
// parentID, creating it with default presentation when missing.
// The lookup uses the sanitized name and is case-sensitive.
func ResolveCategory(ctx context.Context, repo Repository, userID int64, name string, parentID *int64) (int64, error) {
	name = domain.SanitizeName(name)
	if name == "" {
		return 0, domain.ErrEmptyName
	}

	id, err := repo.FindCategory(ctx, userID, name, parentID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sqlstore.ErrNotFound) {
		return 0, err
	}

	return repo.CreateCategory(ctx, &domain.Category{
		UserID:       userID,
		ParentID:     parentID,
		Name:         name,
		DisplayMode:  domain.DefaultDisplayMode,
		DefaultCount: domain.DefaultCount,
		SortOrder:    0,
	})
}
