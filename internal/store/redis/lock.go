package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrImportInProgress is returned when the user already holds the import lock
var ErrImportInProgress = errors.New("import already in progress")

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock re-acquired by another import is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireImportLock takes the user's import lock for ttl. The returned
// release func must be called once the import is done.
func (s *Store) AcquireImportLock(ctx context.Context, userID int64, ttl time.Duration) (release func(context.Context) error, err error) {
	if ttl <= 0 {
		ttl = DefaultImportLockTTL
	}

	key := ImportLockKey(userID)
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire import lock: %w", err)
	}
	if !ok {
		return nil, ErrImportInProgress
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, s.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to release import lock: %w", err)
		}
		return nil
	}, nil
}
