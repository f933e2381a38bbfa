package repository

import (
	"context"
	"strconv"
	"sync"
	"time"

	"clockedin/internal/cache"
	"clockedin/internal/domain"
	"clockedin/internal/errors"
)

// Local keeps subjects and logs in the local cache. IDs are creation
// times in milliseconds, bumped when needed to stay unique.
type Local struct {
	mu            sync.Mutex
	cache         *cache.Cache
	displayFormat string
	now           func() time.Time
}

func NewLocal(c *cache.Cache, displayFormat string, now func() time.Time) *Local {
	if now == nil {
		now = time.Now
	}
	return &Local{cache: c, displayFormat: displayFormat, now: now}
}

func (l *Local) Mode() Mode { return ModeLocal }

func (l *Local) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	return l.cache.LoadSubjects(ctx), nil
}

func (l *Local) CreateSubject(ctx context.Context, name string, weeklyGoal float64) (domain.Subject, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	subjects := l.cache.LoadSubjects(ctx)
	subject := domain.NewSubject(name, weeklyGoal)
	subject.ID = l.nextID(subjectIDs(subjects))

	if err := l.saveSubjects(ctx, append(subjects, subject)); err != nil {
		return domain.Subject{}, err
	}
	return subject, nil
}

func (l *Local) UpdateSubject(ctx context.Context, id int64, name string, weeklyGoal float64) (domain.Subject, error) {
	return l.mutateSubject(ctx, id, func(s *domain.Subject) {
		s.Name = name
		s.WeeklyGoal = weeklyGoal
	})
}

func (l *Local) SetSubjectArchived(ctx context.Context, id int64, archived bool) (domain.Subject, error) {
	return l.mutateSubject(ctx, id, func(s *domain.Subject) {
		s.IsArchived = archived
	})
}

func (l *Local) DeleteSubject(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	subjects := l.cache.LoadSubjects(ctx)
	kept := make([]domain.Subject, 0, len(subjects))
	for _, s := range subjects {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(subjects) {
		return errors.NewNotFoundError("subject", strconv.FormatInt(id, 10))
	}
	return l.saveSubjects(ctx, kept)
}

func (l *Local) ListLogs(ctx context.Context) ([]domain.LogEntry, error) {
	return l.cache.LoadLogs(ctx), nil
}

func (l *Local) CreateLog(ctx context.Context, subjectID int64, minutes int, createdAt time.Time) (domain.LogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if createdAt.IsZero() {
		createdAt = l.now()
	}

	logs := l.cache.LoadLogs(ctx)
	entry := domain.NewLogEntry(subjectID, minutes, createdAt, l.displayFormat)
	entry.ID = l.nextID(logIDs(logs))

	// newest first
	updated := append([]domain.LogEntry{entry}, logs...)
	if err := l.saveLogs(ctx, updated); err != nil {
		return domain.LogEntry{}, err
	}
	return entry, nil
}

func (l *Local) UpdateLogDuration(ctx context.Context, id int64, minutes int) (domain.LogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	logs := l.cache.LoadLogs(ctx)
	for i := range logs {
		if logs[i].ID == id {
			logs[i].DurationMinutes = minutes
			if err := l.saveLogs(ctx, logs); err != nil {
				return domain.LogEntry{}, err
			}
			return logs[i], nil
		}
	}
	return domain.LogEntry{}, errors.NewNotFoundError("log", strconv.FormatInt(id, 10))
}

func (l *Local) DeleteLog(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	logs := l.cache.LoadLogs(ctx)
	kept := make([]domain.LogEntry, 0, len(logs))
	for _, entry := range logs {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(logs) {
		return errors.NewNotFoundError("log", strconv.FormatInt(id, 10))
	}
	return l.saveLogs(ctx, kept)
}

func (l *Local) mutateSubject(ctx context.Context, id int64, apply func(*domain.Subject)) (domain.Subject, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	subjects := l.cache.LoadSubjects(ctx)
	for i := range subjects {
		if subjects[i].ID == id {
			apply(&subjects[i])
			if err := l.saveSubjects(ctx, subjects); err != nil {
				return domain.Subject{}, err
			}
			return subjects[i], nil
		}
	}
	return domain.Subject{}, errors.NewNotFoundError("subject", strconv.FormatInt(id, 10))
}

func (l *Local) saveSubjects(ctx context.Context, subjects []domain.Subject) error {
	if err := l.cache.SaveSubjects(ctx, subjects); err != nil {
		return errors.NewDatabaseError("save subjects", err)
	}
	return nil
}

func (l *Local) saveLogs(ctx context.Context, logs []domain.LogEntry) error {
	if err := l.cache.SaveLogs(ctx, logs); err != nil {
		return errors.NewDatabaseError("save logs", err)
	}
	return nil
}

func (l *Local) nextID(existing []int64) int64 {
	id := l.now().UnixMilli()
	for _, e := range existing {
		if e >= id {
			id = e + 1
		}
	}
	return id
}

func subjectIDs(subjects []domain.Subject) []int64 {
	ids := make([]int64, len(subjects))
	for i, s := range subjects {
		ids[i] = s.ID
	}
	return ids
}

func logIDs(logs []domain.LogEntry) []int64 {
	ids := make([]int64, len(logs))
	for i, entry := range logs {
		ids[i] = entry.ID
	}
	return ids
}
