package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheSession stores token -> userID for ttl
func (s *Store) CacheSession(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if err := s.client.Set(ctx, SessionKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}
	return nil
}

// CachedSession returns the cached owner of token. found is false on a cache miss.
func (s *Store) CachedSession(ctx context.Context, token string) (userID int64, found bool, err error) {
	raw, err := s.client.Get(ctx, SessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil // Cache miss
		}
		return 0, false, fmt.Errorf("failed to get cached session: %w", err)
	}

	userID, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse cached session: %w", err)
	}
	return userID, true, nil
}
