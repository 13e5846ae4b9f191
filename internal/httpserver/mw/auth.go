package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/deps"
	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/respond"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
	"github.com/MrSnakeDoc/adlinkton/internal/store/sqlstore"
)

// SessionCookie is the cookie set by the web frontend after login.
const SessionCookie = "session_token"

type userIDKey struct{}

// WithUserID returns ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID returns the authenticated user id set by Auth.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok
}

// sessionToken reads "Authorization: Bearer <token>", then the session cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Auth rejects requests without a valid session with 401. Resolved sessions
// are cached for ttl, never past their expiry, when cache is non-nil; cache
// errors only cost a lookup.
func Auth(sessions deps.SessionStore, cache deps.SessionCache, ttl time.Duration, now func() time.Time, log logger.Logger) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}

	resolve := func(ctx context.Context, token string) (int64, error) {
		if cache != nil {
			id, found, err := cache.CachedSession(ctx, token)
			if err != nil {
				log.Warn("session cache lookup failed", logger.Error(err))
			} else if found {
				return id, nil
			}
		}

		at := now()
		sess, err := sessions.ActiveSession(ctx, token, at)
		if err != nil {
			return 0, err
		}

		if cache != nil {
			if keep := min(ttl, sess.ExpiresAt.Sub(at)); keep > 0 {
				if err := cache.CacheSession(ctx, token, sess.UserID, keep); err != nil {
					log.Warn("failed to cache session", logger.Error(err))
				}
			}
		}
		return sess.UserID, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				respond.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			userID, err := resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, sqlstore.ErrNotFound) {
					log.Debug("Auth: unknown or expired session")
					respond.Error(w, http.StatusUnauthorized, "Authentication required")
					return
				}
				log.Error("session lookup failed", logger.Error(err))
				respond.Error(w, http.StatusServiceUnavailable, "Authentication unavailable")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
