// Package repository defines the single data-access interface used by the
// state controller, with a local implementation over the cache and a
// remote implementation over postgres.
package repository

import (
	"context"
	"time"

	"clockedin/internal/domain"
)

// Mode names the active source of truth.
type Mode int

const (
	ModeLocal Mode = iota
	ModeRemote
)

func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "local"
}

// Repository stores subjects and logs. Every mutation returns the row as
// stored, which callers must treat as canonical.
type Repository interface {
	Mode() Mode

	ListSubjects(ctx context.Context) ([]domain.Subject, error)
	CreateSubject(ctx context.Context, name string, weeklyGoal float64) (domain.Subject, error)
	UpdateSubject(ctx context.Context, id int64, name string, weeklyGoal float64) (domain.Subject, error)
	SetSubjectArchived(ctx context.Context, id int64, archived bool) (domain.Subject, error)
	DeleteSubject(ctx context.Context, id int64) error

	ListLogs(ctx context.Context) ([]domain.LogEntry, error)
	// CreateLog stores a session stamped at createdAt.
	CreateLog(ctx context.Context, subjectID int64, minutes int, createdAt time.Time) (domain.LogEntry, error)
	UpdateLogDuration(ctx context.Context, id int64, minutes int) (domain.LogEntry, error)
	DeleteLog(ctx context.Context, id int64) error
}
