package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"clockedin/internal/domain"
	"clockedin/internal/errors"
	"clockedin/internal/repository/postgres"
)

// RemoteStore is the slice of *postgres.Store the remote repository needs.
type RemoteStore interface {
	ListSubjects(ctx context.Context, userID uuid.UUID) ([]*postgres.SubjectRow, error)
	InsertSubject(ctx context.Context, userID uuid.UUID, name string, weeklyGoal float64, archived bool) (*postgres.SubjectRow, error)
	UpdateSubject(ctx context.Context, userID uuid.UUID, id int64, name string, weeklyGoal float64) (*postgres.SubjectRow, error)
	SetSubjectArchived(ctx context.Context, userID uuid.UUID, id int64, archived bool) (*postgres.SubjectRow, error)
	DeleteSubject(ctx context.Context, userID uuid.UUID, id int64) error
	ListLogs(ctx context.Context, userID uuid.UUID) ([]*postgres.LogRow, error)
	InsertLog(ctx context.Context, userID uuid.UUID, subjectID int64, minutes int, createdAt *time.Time) (*postgres.LogRow, error)
	UpdateLogDuration(ctx context.Context, userID uuid.UUID, id int64, minutes int) (*postgres.LogRow, error)
	DeleteLog(ctx context.Context, userID uuid.UUID, id int64) error
}

// Remote is the repository for one signed-in user. Failures other than
// missing rows are reported as remote errors.
type Remote struct {
	store  RemoteStore
	userID uuid.UUID
	mapper *domain.Mapper
}

func NewRemote(store RemoteStore, userID uuid.UUID, mapper *domain.Mapper) *Remote {
	return &Remote{store: store, userID: userID, mapper: mapper}
}

func (r *Remote) Mode() Mode { return ModeRemote }

// UserID returns the account the repository is bound to.
func (r *Remote) UserID() uuid.UUID { return r.userID }

func (r *Remote) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	rows, err := r.store.ListSubjects(ctx, r.userID)
	if err != nil {
		return nil, remoteError("list subjects", err)
	}
	return r.mapper.Subject.FromDatabaseSlice(rows), nil
}

func (r *Remote) CreateSubject(ctx context.Context, name string, weeklyGoal float64) (domain.Subject, error) {
	row, err := r.store.InsertSubject(ctx, r.userID, name, weeklyGoal, false)
	if err != nil {
		return domain.Subject{}, remoteError("create subject", err)
	}
	return r.mapper.Subject.FromDatabase(*row), nil
}

func (r *Remote) UpdateSubject(ctx context.Context, id int64, name string, weeklyGoal float64) (domain.Subject, error) {
	row, err := r.store.UpdateSubject(ctx, r.userID, id, name, weeklyGoal)
	if err != nil {
		return domain.Subject{}, remoteError("update subject", err)
	}
	return r.mapper.Subject.FromDatabase(*row), nil
}

func (r *Remote) SetSubjectArchived(ctx context.Context, id int64, archived bool) (domain.Subject, error) {
	row, err := r.store.SetSubjectArchived(ctx, r.userID, id, archived)
	if err != nil {
		return domain.Subject{}, remoteError("archive subject", err)
	}
	return r.mapper.Subject.FromDatabase(*row), nil
}

func (r *Remote) DeleteSubject(ctx context.Context, id int64) error {
	if err := r.store.DeleteSubject(ctx, r.userID, id); err != nil {
		return remoteError("delete subject", err)
	}
	return nil
}

func (r *Remote) ListLogs(ctx context.Context) ([]domain.LogEntry, error) {
	rows, err := r.store.ListLogs(ctx, r.userID)
	if err != nil {
		return nil, remoteError("list logs", err)
	}
	return r.mapper.LogEntry.FromDatabaseSlice(rows), nil
}

func (r *Remote) CreateLog(ctx context.Context, subjectID int64, minutes int, createdAt time.Time) (domain.LogEntry, error) {
	var stamp *time.Time
	if !createdAt.IsZero() {
		stamp = &createdAt
	}
	row, err := r.store.InsertLog(ctx, r.userID, subjectID, minutes, stamp)
	if err != nil {
		return domain.LogEntry{}, remoteError("create log", err)
	}
	return r.mapper.LogEntry.FromDatabase(*row), nil
}

func (r *Remote) UpdateLogDuration(ctx context.Context, id int64, minutes int) (domain.LogEntry, error) {
	row, err := r.store.UpdateLogDuration(ctx, r.userID, id, minutes)
	if err != nil {
		return domain.LogEntry{}, remoteError("update log", err)
	}
	return r.mapper.LogEntry.FromDatabase(*row), nil
}

func (r *Remote) DeleteLog(ctx context.Context, id int64) error {
	if err := r.store.DeleteLog(ctx, r.userID, id); err != nil {
		return remoteError("delete log", err)
	}
	return nil
}

func remoteError(operation string, err error) error {
	if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		return err
	}
	return errors.NewRemoteError(operation, err)
}
