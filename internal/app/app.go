package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/adlinkton/internal/config"
	"github.com/MrSnakeDoc/adlinkton/internal/favicon"
	"github.com/MrSnakeDoc/adlinkton/internal/httpserver"
	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/deps"
	"github.com/MrSnakeDoc/adlinkton/internal/importer"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
	"github.com/MrSnakeDoc/adlinkton/internal/redis"
	"github.com/MrSnakeDoc/adlinkton/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/adlinkton/internal/store/redis"
	"github.com/MrSnakeDoc/adlinkton/internal/store/sqlstore"
	"github.com/MrSnakeDoc/adlinkton/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	db          *sqlstore.Store
	redisClient *goredis.Client
	refetcher   *scheduler.FaviconRefetcher
	gc          *scheduler.GarbageCollector
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Database first: nothing works without it
	loggerClient.Info("Opening database", logger.String("driver", cfg.DBDriver))
	db, err := sqlstore.Open(context.Background(), sqlstore.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnectAttempts: cfg.DBConnectAttempts,
		RetryDelay:      cfg.DBRetryDelay,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Database initialized successfully")

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(context.Background(), redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		_ = db.Close()
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)

	resolver := favicon.NewResolver(favicon.Options{
		Dir:          cfg.FaviconDir,
		PublicPrefix: cfg.FaviconPublicPrefix,
		Timeout:      cfg.FaviconTimeout,
		MaxBytes:     cfg.FaviconMaxBytes,
		AllowPrivate: cfg.FaviconAllowPrivate,
	}, loggerClient)

	imp := importer.New(
		importer.NewSQLTransactor(db),
		resolver,
		importer.Options{FaviconTimeout: cfg.ImportFaviconTimeout},
		loggerClient,
	)

	// Create manual refetch trigger channel
	refetchTrigger := make(chan struct{}, 1)

	refetcher := scheduler.NewFaviconRefetcher(
		db,
		resolver,
		loggerClient,
		scheduler.RefetchOptions{
			Interval: cfg.RefetchInterval,
			Timeout:  cfg.RefetchFaviconTimeout,
			Delay:    cfg.RefetchDelay,
			Workers:  cfg.RefetchWorkers,
		},
		refetchTrigger,
	)

	gc := scheduler.NewGarbageCollector(
		db,
		resolver.Store(),
		loggerClient,
		cfg.FaviconGCInterval,
		cfg.FaviconGCThreshold,
	)

	d := deps.Deps{
		Logger:              loggerClient,
		StartTime:           time.Now(),
		Version:             version.Version,
		Commit:              version.Commit,
		BuildDate:           version.BuildDate,
		GoVersion:           version.GoVersion,
		TimeNow:             time.Now,
		AllowedOrigins:      cfg.AllowedOrigins,
		AllowedHosts:        cfg.AllowedHosts,
		AllowedCIDRS:        cfg.AllowedCIDRS,
		TrustProxy:          cfg.TrustProxy,
		RateLimitBurst:      cfg.RateLimitBurst,
		RateLimitPerMin:     cfg.RateLimitPerMin,
		Database:            db,
		Redis:               store,
		Sessions:            db,
		SessionCache:        store,
		SessionCacheTTL:     cfg.SessionCacheTTL,
		Importer:            imp,
		ImportLocker:        store,
		ImportTimeout:       cfg.ImportTimeout,
		ImportLockTTL:       cfg.ImportLockTTL,
		MaxUploadSize:       cfg.MaxUploadSize,
		FaviconDir:          cfg.FaviconDir,
		FaviconPublicPrefix: cfg.FaviconPublicPrefix,
		RefetchTrigger:      refetchTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		db:          db,
		redisClient: redisClient,
		refetcher:   refetcher,
		gc:          gc,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Adlinkton v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Adlinkton %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.refetcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start favicon refetcher: %w", err)
	}
	a.logger.Info("favicon refetcher started",
		logger.Duration("interval", a.cfg.RefetchInterval))

	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.FaviconGCInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.refetcher.Stop()
	a.gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.db.Close(); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	} else {
		a.logger.Info("✅ Database closed cleanly")
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Adlinkton stopped cleanly")
	return nil
}
