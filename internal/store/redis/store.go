package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSessionTTL is how long a resolved session stays cached (5 minutes)
	DefaultSessionTTL = 5 * time.Minute
	// DefaultImportLockTTL bounds a crashed import's lock (15 minutes)
	DefaultImportLockTTL = 15 * time.Minute
)

// Store handles Redis operations for sessions and import locks
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
