// Package postgres is the remote repository: subjects and logs stored per
// user in PostgreSQL. Every statement is scoped by user id and every
// mutation returns the stored row.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	"clockedin/internal/logging"
	"clockedin/internal/migration"
	"clockedin/internal/repository/dbutil"
	"clockedin/internal/repository/postgres/migrations"
)

var ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")

// Options tune the connection pool and statement timeouts.
type Options struct {
	QueryTimeout time.Duration
	MaxOpenConns int
}

type Store struct {
	db   *sql.DB
	opts Options
}

// ValidateConnString checks that connStr is a usable PostgreSQL URI or
// key/value DSN without opening a connection.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if parsedURL.Host == "" && parsedURL.User == nil && (parsedURL.Path == "" || parsedURL.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
	}

	return nil
}

// Open connects, verifies the connection and applies pending migrations.
func Open(ctx context.Context, connStr string, opts Options) (*Store, error) {
	if err := ValidateConnString(connStr); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxConns := opts.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 25
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	applied, err := migration.NewRunner(db, migrations.FS, migration.Postgres).Up(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if applied > 0 {
		logging.Info("applied remote migrations", "count", applied)
	}

	return &Store{db: db, opts: opts}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListSubjects(ctx context.Context, userID uuid.UUID) ([]*SubjectRow, error) {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	query := `SELECT ` + subjectColumns + `
	FROM subjects
	WHERE user_id = $1
	ORDER BY created_at ASC, id ASC`

	return dbutil.QueryMultiple(ctx, s.db, query, ScanSubjects, "subjects", userID)
}

func (s *Store) InsertSubject(ctx context.Context, userID uuid.UUID, name string, weeklyGoal float64, archived bool) (*SubjectRow, error) {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	query := `INSERT INTO subjects (user_id, name, weekly_goal, is_archived)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + subjectColumns

	return dbutil.QuerySingle(ctx, s.db, query, ScanSubject, "subject", name, userID, name, weeklyGoal, archived)
}

func (s *Store) UpdateSubject(ctx context.Context, userID uuid.UUID, id int64, name string, weeklyGoal float64) (*SubjectRow, error) {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	query := `UPDATE subjects
	SET name = $3, weekly_goal = $4
	WHERE user_id = $1 AND id = $2
	RETURNING ` + subjectColumns

	return dbutil.QuerySingle(ctx, s.db, query, ScanSubject, "subject", idString(id), userID, id, name, weeklyGoal)
}

func (s *Store) SetSubjectArchived(ctx context.Context, userID uuid.UUID, id int64, archived bool) (*SubjectRow, error) {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	query := `UPDATE subjects
	SET is_archived = $3
	WHERE user_id = $1 AND id = $2
	RETURNING ` + subjectColumns

	return dbutil.QuerySingle(ctx, s.db, query, ScanSubject, "subject", idString(id), userID, id, archived)
}

func (s *Store) DeleteSubject(ctx context.Context, userID uuid.UUID, id int64) error {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	return dbutil.ExecuteWithRowsAffected(ctx, s.db, `DELETE FROM subjects WHERE user_id = $1 AND id = $2`, "subject", idString(id), userID, id)
}

func (s *Store) ListLogs(ctx context.Context, userID uuid.UUID) ([]*LogRow, error) {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	query := `SELECT ` + logColumns + `
	FROM logs
	WHERE user_id = $1
	ORDER BY created_at DESC, id DESC`

	return dbutil.QueryMultiple(ctx, s.db, query, ScanLogs, "logs", userID)
}

// InsertLog stores a session. A nil createdAt lets the database stamp it.
func (s *Store) InsertLog(ctx context.Context, userID uuid.UUID, subjectID int64, minutes int, createdAt *time.Time) (*LogRow, error) {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	var stamp interface{}
	if createdAt != nil {
		stamp = *createdAt
	}

	query := `INSERT INTO logs (user_id, subject_id, duration_minutes, created_at)
	VALUES ($1, $2, $3, COALESCE($4::timestamptz, now()))
	RETURNING ` + logColumns

	return dbutil.QuerySingle(ctx, s.db, query, ScanLog, "log", idString(subjectID), userID, subjectID, minutes, stamp)
}

func (s *Store) UpdateLogDuration(ctx context.Context, userID uuid.UUID, id int64, minutes int) (*LogRow, error) {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	query := `UPDATE logs
	SET duration_minutes = $3
	WHERE user_id = $1 AND id = $2
	RETURNING ` + logColumns

	return dbutil.QuerySingle(ctx, s.db, query, ScanLog, "log", idString(id), userID, id, minutes)
}

func (s *Store) DeleteLog(ctx context.Context, userID uuid.UUID, id int64) error {
	ctx, cancel := dbutil.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	return dbutil.ExecuteWithRowsAffected(ctx, s.db, `DELETE FROM logs WHERE user_id = $1 AND id = $2`, "log", idString(id), userID, id)
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
