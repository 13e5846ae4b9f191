package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Session is an unexpired login of a user.
type Session struct {
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
}

// ActiveSession returns the session behind token when it has not expired at now.
func (q *Queries) ActiveSession(ctx context.Context, token string, now time.Time) (Session, error) {
	var s Session
	query := q.ext.Rebind("SELECT user_id, expires_at FROM sessions WHERE id = ? AND expires_at > ?")
	if err := sqlx.GetContext(ctx, q.ext, &s, query, token, now.UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("failed to look up session: %w", err)
	}
	return s, nil
}

// CreateSession stores a session token. Sessions are normally issued by the
// account service sharing this database.
func (q *Queries) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	query := q.ext.Rebind("INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)")
	if _, err := q.ext.ExecContext(ctx, query, token, userID, expiresAt.UTC()); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}
