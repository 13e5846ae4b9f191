package importer

import (
	"context"

	"github.com/MrSnakeDoc/adlinkton/internal/store/sqlstore"
)

type sqlTransactor struct {
	store *sqlstore.Store
}

// NewSQLTransactor runs imports on store, one transaction per import.
func NewSQLTransactor(store *sqlstore.Store) Transactor {
	return &sqlTransactor{store: store}
}

func (t *sqlTransactor) InTx(ctx context.Context, fn func(repo Repository) error) error {
	return t.store.WithTx(ctx, func(q *sqlstore.Queries) error {
		return fn(q)
	})
}
