package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/adlinkton/internal/bookmark"
	"github.com/MrSnakeDoc/adlinkton/internal/domain"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
	"github.com/MrSnakeDoc/adlinkton/internal/store/sqlstore"
)

// Importer writes a parsed bookmark tree for a user.
type Importer interface {
	Import(ctx context.Context, userID int64, nodes []bookmark.Node) (domain.ImportStats, error)
}

// ImportLocker enforces one running import per user.
type ImportLocker interface {
	AcquireImportLock(ctx context.Context, userID int64, ttl time.Duration) (func(context.Context) error, error)
}

// SessionStore resolves a session token to its owner and expiry.
type SessionStore interface {
	ActiveSession(ctx context.Context, token string, now time.Time) (sqlstore.Session, error)
}

// SessionCache caches resolved session tokens.
type SessionCache interface {
	CachedSession(ctx context.Context, token string) (int64, bool, error)
	CacheSession(ctx context.Context, token string, userID int64, ttl time.Duration) error
}

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedOrigins  []string // CORS origins of the web frontend
	AllowedHosts    []string // Host headers allowed to access the server
	AllowedCIDRS    []string // IPs allowed to access readyz/metrics endpoints
	TrustProxy      bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitBurst  int      // per-client burst on /api
	RateLimitPerMin int      // per-client refill on /api

	Database Pinger
	Redis    Pinger

	Sessions        SessionStore
	SessionCache    SessionCache  // nil disables caching
	SessionCacheTTL time.Duration // lifetime of a cached session

	Importer      Importer
	ImportLocker  ImportLocker
	ImportTimeout time.Duration // whole import request
	ImportLockTTL time.Duration // lifetime of a per-user import lock
	MaxUploadSize int64         // bytes

	FaviconDir          string        // favicon cache directory
	FaviconPublicPrefix string        // URL prefix of the favicon cache (ex: /favicons)
	RefetchTrigger      chan struct{} // Channel to trigger a manual favicon refetch
}
