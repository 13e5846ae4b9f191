package redis

import "strconv"

const (
	// KeyPrefixSession is the prefix for cached session tokens
	KeyPrefixSession = "adlinkton:session:"
	// KeyPrefixImportLock is the prefix for per-user import locks
	KeyPrefixImportLock = "adlinkton:import-lock:"
)

// SessionKey returns the Redis key caching the owner of a session token
func SessionKey(token string) string {
	return KeyPrefixSession + token
}

// ImportLockKey returns the Redis key of a user's import lock
func ImportLockKey(userID int64) string {
	return KeyPrefixImportLock + strconv.FormatInt(userID, 10)
}
