// Package sqlstore is the relational storage of categories, links and sessions.
//
// Queries are written with ? placeholders and rebound per driver, so the same
// code runs on SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq).
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/adlinkton/internal/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

//go:embed schema/*.sql
var schemaFS embed.FS

// Options configures the connection.
type Options struct {
	Driver          string        // "sqlite" | "postgres"
	DSN             string        // ex: "file:/data/adlinkton.db?_pragma=busy_timeout(5000)"
	MaxOpenConns    int           // 0 = driver default
	ConnectAttempts uint          // attempts before giving up (ex: 5)
	RetryDelay      time.Duration // initial delay between attempts, doubled each time
}

// Store owns the connection pool. Its embedded Queries run outside any transaction.
type Store struct {
	*Queries
	db  *sqlx.DB
	log logger.Logger
}

// Open connects with retries, applies the schema and returns the store.
func Open(ctx context.Context, opts Options, log logger.Logger) (*Store, error) {
	if opts.Driver != DriverSQLite && opts.Driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver: %q", opts.Driver)
	}
	if opts.ConnectAttempts == 0 {
		opts.ConnectAttempts = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}

	var db *sqlx.DB
	err := retry.Do(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, opts.Driver, opts.DSN)
			if err != nil {
				return err
			}
			db = conn
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(opts.ConnectAttempts),
		retry.Delay(opts.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("database connection failed, retrying",
				logger.String("driver", opts.Driver),
				logger.Int("attempt", int(n+1)),
				logger.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", opts.Driver, err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	s := New(db, log)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection.
func New(db *sqlx.DB, log logger.Logger) *Store {
	return &Store{
		Queries: &Queries{ext: db},
		db:      db,
		log:     log,
	}
}

// Migrate creates missing tables for the connected driver.
func (s *Store) Migrate(ctx context.Context) error {
	raw, err := schemaFS.ReadFile("schema/" + s.db.DriverName() + ".sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	for _, stmt := range strings.Split(string(raw), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn in a transaction. fn's error or a panic rolls everything back.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.log.Warn("rollback failed", logger.Error(err))
		}
	}()

	if err := fn(&Queries{ext: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Queries runs statements on either the pool or a transaction.
type Queries struct {
	ext sqlx.ExtContext
}
