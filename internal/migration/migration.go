// Package migration applies versioned SQL migrations embedded in the
// binary. Files are named NNNNNN_name.up.sql with a matching .down.sql.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Dialect carries the few statements that differ between database engines.
type Dialect struct {
	CreateTable   string
	InsertVersion string
	DeleteVersion string
}

var (
	SQLite = Dialect{
		CreateTable: `CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		InsertVersion: "INSERT INTO migrations (version) VALUES (?)",
		DeleteVersion: "DELETE FROM migrations WHERE version = ?",
	}

	Postgres = Dialect{
		CreateTable: `CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		InsertVersion: "INSERT INTO migrations (version) VALUES ($1)",
		DeleteVersion: "DELETE FROM migrations WHERE version = $1",
	}
)

// Runner applies the migrations found in an fs.FS.
type Runner struct {
	db      *sql.DB
	fs      fs.FS
	dialect Dialect
}

// NewRunner creates a new migration runner
func NewRunner(db *sql.DB, migrationFS fs.FS, dialect Dialect) *Runner {
	return &Runner{db: db, fs: migrationFS, dialect: dialect}
}

// Up applies every pending migration in version order and returns how
// many were applied.
func (r *Runner) Up(ctx context.Context) (int, error) {
	if _, err := r.db.ExecContext(ctx, r.dialect.CreateTable); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := Load(r.fs)
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := r.Applied(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	count := 0
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := r.run(ctx, m.Up, r.dialect.InsertVersion, m.Version); err != nil {
			return count, fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		count++
	}
	return count, nil
}

// Down reverts the most recently applied migration. It is a no-op on a
// database with nothing applied.
func (r *Runner) Down(ctx context.Context) error {
	migrations, err := Load(r.fs)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	applied, err := r.Applied(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		if !applied[m.Version] {
			continue
		}
		if err := r.run(ctx, m.Down, r.dialect.DeleteVersion, m.Version); err != nil {
			return fmt.Errorf("failed to revert migration %d (%s): %w", m.Version, m.Name, err)
		}
		return nil
	}
	return nil
}

// Applied returns the set of recorded migration versions.
func (r *Runner) Applied(ctx context.Context) (map[int]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT version FROM migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (r *Runner) run(ctx context.Context, script, record string, version int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, script); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, record, version); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Load reads the up/down pairs from fsys sorted by version. A missing
// down file or a duplicate version is an error.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}

		version, name := parseFilename(entry.Name())
		if version == 0 {
			return nil, fmt.Errorf("invalid migration filename: %s", entry.Name())
		}

		upSQL, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, err
		}

		downFile := strings.Replace(entry.Name(), ".up.sql", ".down.sql", 1)
		downSQL, err := fs.ReadFile(fsys, downFile)
		if err != nil {
			return nil, fmt.Errorf("missing down migration for %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    name,
			Up:      string(upSQL),
			Down:    string(downSQL),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", migrations[i].Version)
		}
	}

	return migrations, nil
}

func parseFilename(filename string) (int, string) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, ""
	}
	_, rest, _ := strings.Cut(filename, "_")
	return version, strings.TrimSuffix(rest, ".up.sql")
}
