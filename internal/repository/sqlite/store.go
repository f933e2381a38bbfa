package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"clockedin/internal/errors"
	"clockedin/internal/migration"
	"clockedin/internal/repository/dbutil"
	"clockedin/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Options tune the cache store. Zero timeouts disable the bound.
type Options struct {
	QueryTimeout   time.Duration
	WriteTimeout   time.Duration
	DirPermissions os.FileMode
}

// Store is a durable key-value store backed by a single sqlite table.
type Store struct {
	db   *sql.DB
	opts Options
	now  func() time.Time
}

// Open creates the parent directory if needed, opens the database and
// applies pending migrations.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	if path != MemoryPath {
		perm := opts.DirPermissions
		if perm == 0 {
			perm = 0755
		}
		if err := os.MkdirAll(filepath.Dir(path), perm); err != nil {
			return nil, errors.NewDatabaseError("create cache directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	if path == MemoryPath {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := migration.NewRunner(db, migrations.FS, migration.SQLite).Up(ctx); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &Store{db: db, opts: opts, now: time.Now}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key. ok is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	query := `
	SELECT key, value, updated_at
	FROM cache_entries
	WHERE key = ?`

	entry, err := dbutil.QuerySingle(ctx, s.db, query, ScanEntry, "cache entry", key, key)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

// Put inserts or replaces the value under key.
func (s *Store) Put(ctx context.Context, key, value string) error {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()

	query := `
	INSERT INTO cache_entries (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	return dbutil.Execute(ctx, s.db, query, key, value, dbutil.FormatTimeForDB(s.now()))
}

// Delete removes key. Deleting a missing key is a NotFound error.
func (s *Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()

	return dbutil.ExecuteWithRowsAffected(ctx, s.db, `DELETE FROM cache_entries WHERE key = ?`, "cache entry", key, key)
}

// Entries lists every cached entry ordered by key.
func (s *Store) Entries(ctx context.Context) ([]*Entry, error) {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	query := `
	SELECT key, value, updated_at
	FROM cache_entries
	ORDER BY key ASC`

	return dbutil.QueryMultiple(ctx, s.db, query, ScanEntries, "cache entries")
}
