package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteCache stores cache entries in a SQLite database.
type SQLiteCache struct {
	db         *sql.DB
	retention  time.Duration
	writeMutex *sync.Mutex
}

// NewSQLiteCache creates a new cache with the given filename as the db.
// If file name is empty, a new in-memory db is opened.
// Entries are dropped once retention has passed since storing them; zero retention keeps them forever.
func NewSQLiteCache(filename string, retention time.Duration) (SQLiteCache, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return SQLiteCache{}, fmt.Errorf("opening %s: %w", filename, err)
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY,
			expires INTEGER,
			requested_at INTEGER,
			received_at INTEGER,
			retain_until INTEGER,
			bytes BLOB
		)`,
		"CREATE INDEX IF NOT EXISTS retain_until_idx ON cache (retain_until)",
		"PRAGMA journal_mode=WAL",
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return SQLiteCache{}, fmt.Errorf("initializing %s: %w", filename, err)
		}
	}
	return SQLiteCache{
		db:         db,
		retention:  retention,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s SQLiteCache) Get(ctx context.Context, key string) (CacheEntry, bool, error) {
	entry := CacheEntry{Key: key}
	var exp, req, rec, retain int64
	err := s.db.QueryRowContext(ctx, `SELECT
		expires, requested_at, received_at, retain_until, bytes
		FROM cache WHERE key = ?`, key).Scan(&exp, &req, &rec, &retain, &entry.Bytes)
	if errors.Is(err, sql.ErrNoRows) {
		return entry, false, nil
	}
	if err != nil {
		return entry, false, err
	}
	if retain != 0 && time.Now().After(time.UnixMilli(retain)) {
		return entry, false, s.Purge(ctx, key)
	}
	entry.Expires = time.UnixMilli(exp)
	entry.RequestedAt = time.UnixMilli(req)
	entry.ReceivedAt = time.UnixMilli(rec)
	return entry, true, nil
}

func (s SQLiteCache) Put(ctx context.Context, ce CacheEntry) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	var retain int64
	if until := retainUntil(s.retention, time.Now()); !until.IsZero() {
		retain = until.UnixMilli()
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO cache
		(key, expires, requested_at, received_at, retain_until, bytes) VALUES (?, ?, ?, ?, ?, ?)`,
		ce.Key, ce.Expires.UnixMilli(), ce.RequestedAt.UnixMilli(), ce.ReceivedAt.UnixMilli(), retain, ce.Bytes)
	return err
}

func (s SQLiteCache) Purge(ctx context.Context, key string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM cache WHERE key = ?", key)
	return err
}

// Close closes the underlying database.
func (s SQLiteCache) Close() error {
	return s.db.Close()
}
