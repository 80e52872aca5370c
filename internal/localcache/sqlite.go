package localcache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteCache is a durable cache backed by a single SQLite table. It
// survives process restarts, which is what makes local-first startup
// fallback possible.
type SQLiteCache struct {
	db       *sql.DB
	capacity int64 // Max total character length (0 = unlimited)
	closed   atomic.Bool
}

// OpenSQLite opens (creating if needed) a SQLite-backed cache at path.
// capacity limits the total stored character length; 0 means unlimited.
func OpenSQLite(path string, capacity int64) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteCache{db: db, capacity: capacity}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running cache migrations: %w", err)
	}
	return nil
}

// Get retrieves a value from the cache.
func (c *SQLiteCache) Get(ctx context.Context, key string) (string, error) {
	if c.closed.Load() {
		return "", ErrCacheClosed
	}

	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("reading cache key %q: %w", key, err)
	}
	return value, nil
}

// Set stores a value, enforcing the capacity limit.
func (c *SQLiteCache) Set(ctx context.Context, key, value string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	if c.capacity > 0 {
		var existing int64
		err := c.db.QueryRowContext(ctx,
			`SELECT length(key) + length(value) FROM cache_entries WHERE key = ?`, key).Scan(&existing)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("sizing cache key %q: %w", key, err)
		}

		total, err := c.TotalSize(ctx)
		if err != nil {
			return err
		}
		if total-existing+int64(len(key)+len(value)) > c.capacity {
			return ErrQuotaExceeded
		}
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("writing cache key %q: %w", key, err)
	}
	return nil
}

// Delete removes a key from the cache.
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting cache key %q: %w", key, err)
	}
	return nil
}

// Keys returns all stored keys.
func (c *SQLiteCache) Keys(ctx context.Context) ([]string, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	rows, err := c.db.QueryContext(ctx, `SELECT key FROM cache_entries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning cache key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// TotalSize returns the total character length of all keys and values.
func (c *SQLiteCache) TotalSize(ctx context.Context) (int64, error) {
	if c.closed.Load() {
		return 0, ErrCacheClosed
	}

	var total sql.NullInt64
	err := c.db.QueryRowContext(ctx,
		`SELECT SUM(length(key) + length(value)) FROM cache_entries`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sizing cache: %w", err)
	}
	return total.Int64, nil
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.db.Close()
}
