package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Database
	DBDriver          string        // "sqlite" | "postgres"
	DBDSN             string        // ex: "file:/data/adlinkton.db" or "postgres://user:pass@db/adlinkton?sslmode=disable"
	DBMaxOpenConns    int           // 0 = driver default
	DBConnectAttempts uint          // attempts before giving up
	DBRetryDelay      time.Duration // initial wait between attempts, doubled each time

	// Favicons
	FaviconDir            string        // cache directory, shared by every user
	FaviconPublicPrefix   string        // URL prefix the cache is served under (ex: /favicons)
	FaviconTimeout        time.Duration // per-candidate timeout (default: 3s)
	FaviconMaxBytes       int64         // largest accepted icon (default: 100KB)
	FaviconAllowPrivate   bool          // allow fetching from private ranges (dev only)
	ImportFaviconTimeout  time.Duration // per-candidate timeout during imports (default: 2s)
	RefetchFaviconTimeout time.Duration // per-candidate timeout for the refetch job (default: 5s)
	RefetchInterval       time.Duration // interval of the refetch job (0 = manual only)
	RefetchDelay          time.Duration // spacing between refetches (default: 500ms)
	RefetchWorkers        int           // concurrent refetches (default: 1)
	FaviconGCInterval     time.Duration // interval of the favicon garbage collector (default: 24h)
	FaviconGCThreshold    time.Duration // minimum age of an unreferenced favicon before deletion (default: 30 days)

	// Import
	MaxUploadSize   int64         // bytes
	ImportTimeout   time.Duration // whole import request
	ImportLockTTL   time.Duration // lifetime of a per-user import lock
	SessionCacheTTL time.Duration // how long a resolved session is cached in redis

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Access restrictions
	AllowedOrigins  []string // CORS origins of the web frontend
	AllowedHosts    []string // optional, restrict access to specific Host headers
	AllowedCIDRS    []string // optional, restrict infra endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy      bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateLimitBurst  int      // requests allowed at once per client on /api
	RateLimitPerMin int      // refill rate per client on /api
}

func Load() *Config {
	loadEnvFile(getenv("ADLINKTON_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("ADLINKTON_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("ADLINKTON_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("ADLINKTON_LOG_LEVEL", "info"),
		PrettyLog: mustBool("ADLINKTON_PRETTY_LOG", true),

		// Database
		DBDriver:          getenv("ADLINKTON_DB_DRIVER", "sqlite"),
		DBDSN:             requireEnv("ADLINKTON_DB_DSN"),
		DBMaxOpenConns:    getenvInt("ADLINKTON_DB_MAX_OPEN_CONNS", 0),
		DBConnectAttempts: uint(getenvInt("ADLINKTON_DB_CONNECT_ATTEMPTS", 5)),
		DBRetryDelay:      mustDuration("ADLINKTON_DB_RETRY_DELAY", time.Second),

		// Favicons
		FaviconDir:            getenv("ADLINKTON_FAVICON_DIR", "/app/data/favicons"),
		FaviconPublicPrefix:   getenv("ADLINKTON_FAVICON_PUBLIC_PREFIX", "/favicons"),
		FaviconTimeout:        mustDuration("ADLINKTON_FAVICON_TIMEOUT", 3*time.Second),
		FaviconMaxBytes:       getenvInt64("ADLINKTON_FAVICON_MAX_BYTES", 100*1024),
		FaviconAllowPrivate:   mustBool("ADLINKTON_FAVICON_ALLOW_PRIVATE", false),
		ImportFaviconTimeout:  mustDuration("ADLINKTON_IMPORT_FAVICON_TIMEOUT", 2*time.Second),
		RefetchFaviconTimeout: mustDuration("ADLINKTON_REFETCH_FAVICON_TIMEOUT", 5*time.Second),
		RefetchInterval:       mustDuration("ADLINKTON_REFETCH_INTERVAL", 24*time.Hour),
		RefetchDelay:          mustDuration("ADLINKTON_REFETCH_DELAY", 500*time.Millisecond),
		RefetchWorkers:        getenvInt("ADLINKTON_REFETCH_WORKERS", 1),
		FaviconGCInterval:     mustDuration("ADLINKTON_FAVICON_GC_INTERVAL", 24*time.Hour),
		FaviconGCThreshold:    mustDuration("ADLINKTON_FAVICON_GC_THRESHOLD", 30*24*time.Hour),

		// Import
		MaxUploadSize:   getenvInt64("ADLINKTON_MAX_UPLOAD_SIZE", 10<<20),
		ImportTimeout:   mustDuration("ADLINKTON_IMPORT_TIMEOUT", 10*time.Minute),
		ImportLockTTL:   mustDuration("ADLINKTON_IMPORT_LOCK_TTL", 15*time.Minute),
		SessionCacheTTL: mustDuration("ADLINKTON_SESSION_CACHE_TTL", 5*time.Minute),

		// Redis settings
		RedisAddr:             requireEnv("ADLINKTON_REDIS_ADDR"),
		RedisUser:             getenv("ADLINKTON_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("ADLINKTON_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("ADLINKTON_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("ADLINKTON_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedOrigins:  splitAndTrim(getenv("ADLINKTON_ALLOWED_ORIGINS", "")),
		AllowedHosts:    splitAndTrim(getenv("ADLINKTON_ALLOWED_HOSTS", "")),
		AllowedCIDRS:    parseAllowedIPs(getenv("ADLINKTON_ALLOWED_CIDRS", "")),
		TrustProxy:      mustBool("ADLINKTON_TRUST_PROXY", true),
		RateLimitBurst:  getenvInt("ADLINKTON_RATE_LIMIT_BURST", 10),
		RateLimitPerMin: getenvInt("ADLINKTON_RATE_LIMIT_PER_MIN", 30),
	}

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		panic(fmt.Sprintf("❌ FATAL: ADLINKTON_DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver))
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: ADLINKTON_REDIS_PASSWORD is required when ADLINKTON_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.DBDSN = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loadEnvFile loads KEY=VALUE pairs from path. Variables already set in the
// environment win. A missing file is not an error.
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("❌ FATAL: Invalid env file %s: %v", path, err))
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
