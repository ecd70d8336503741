// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package database handles PostgreSQL connection management and migration
// execution using goose. The site can run without a database, so the
// connection is owned by a Lazy handle that opens (and migrates) on first
// use and reconnects after a failed ping.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"golang.org/x/sync/singleflight"
)

//go:embed migrations
var embedMigrations embed.FS

// ErrNotConfigured is returned when no database connection string was given.
var ErrNotConfigured = errors.New("database not configured")

// connectTimeout bounds a single connect-and-migrate attempt.
const connectTimeout = 5 * time.Second

// Connect opens a PostgreSQL connection pool using the provided DSN.
// It verifies the connection with a ping, bounded by ctx and connectTimeout,
// before returning.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected")
	return db, nil
}

// Migrate runs all pending goose migrations from the embedded SQL files.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied")
	return nil
}

// Lazy is a database handle that is opened on first use. Callers share a
// single Lazy; the underlying pool is reused across requests and replaced
// when a ping fails.
type Lazy struct {
	dsn string

	// dial collapses concurrent first uses into one connect attempt.
	dial singleflight.Group

	mu  sync.Mutex
	db  *sql.DB
	sdb *sqlx.DB
}

// NewLazy creates a handle for dsn without connecting. An empty dsn yields
// a handle whose methods return ErrNotConfigured.
func NewLazy(dsn string) *Lazy {
	return &Lazy{dsn: dsn}
}

// Configured reports whether a connection string is present.
func (l *Lazy) Configured() bool {
	return l != nil && l.dsn != ""
}

// DB returns the shared pool, connecting and migrating on first call.
// The connect attempt is shared by all callers waiting on it and runs
// under its own timeout; each caller stops waiting when its ctx is done.
func (l *Lazy) DB(ctx context.Context) (*sql.DB, error) {
	if !l.Configured() {
		return nil, ErrNotConfigured
	}
	if db := l.current(); db != nil {
		return db, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := l.dial.DoChan("connect", func() (any, error) {
		if db := l.current(); db != nil {
			return db, nil
		}
		return l.open(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*sql.DB), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// open connects and migrates, then publishes the pool.
func (l *Lazy) open(ctx context.Context) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*connectTimeout)
	defer cancel()

	db, err := Connect(ctx, l.dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.db = db
	l.sdb = sqlx.NewDb(db, "pgx")
	return db, nil
}

func (l *Lazy) current() *sql.DB {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db
}

// X returns the shared pool wrapped for sqlx.
func (l *Lazy) X(ctx context.Context) (*sqlx.DB, error) {
	if _, err := l.DB(ctx); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sdb == nil {
		return nil, fmt.Errorf("database reset during use")
	}
	return l.sdb, nil
}

// Ping verifies the connection. On failure the pool is dropped so that the
// next call to DB reconnects.
func (l *Lazy) Ping(ctx context.Context) error {
	db, err := l.DB(ctx)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		slog.Warn("database ping failed, dropping pool", "error", err)
		l.reset(db)
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// reset closes db if it is still the current pool.
func (l *Lazy) reset(db *sql.DB) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == db {
		l.db.Close()
		l.db = nil
		l.sdb = nil
	}
}

// Close releases the pool if one was opened.
func (l *Lazy) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	l.sdb = nil
	return err
}
