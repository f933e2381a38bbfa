// Package state holds the in-memory subjects and logs and decides which
// repository is the source of truth for the current session.
package state

import (
	"context"
	stderrors "errors"
	"strconv"
	"sync"
	"time"

	"clockedin/internal/auth"
	"clockedin/internal/cache"
	"clockedin/internal/domain"
	"clockedin/internal/errors"
	"clockedin/internal/logging"
	"clockedin/internal/repository"
)

// ErrNotSynced is the cause reported for writes attempted while the
// repository in use does not match the session, which happens while a
// hydration is in flight or after one failed.
var ErrNotSynced = stderrors.New("data source does not match the current session")

// RemoteFactory builds the repository for a signed-in session.
type RemoteFactory func(session *auth.Session) repository.Repository

// Options tune hydration.
type Options struct {
	// MigrateOnSignIn uploads local data the first time a user signs in on this device.
	MigrateOnSignIn bool
	// HydrateTimeout bounds one hydration, migration included. Zero means no limit.
	HydrateTimeout time.Duration
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Mode     repository.Mode
	Session  *auth.Session
	Subjects []domain.Subject
	Logs     []domain.LogEntry
	Hydrated bool
}

// Controller is safe for concurrent use. Network calls happen outside the
// lock; results are applied only if no auth transition happened meanwhile.
type Controller struct {
	mu        sync.Mutex
	local     repository.Repository
	cache     *cache.Cache
	remoteFor RemoteFactory
	opts      Options

	repo       repository.Repository
	session    *auth.Session
	subjects   []domain.Subject
	logs       []domain.LogEntry
	hydrated   bool
	generation uint64
	cancel     context.CancelFunc
}

// New returns a signed-out controller reading from local. remoteFor may be
// nil when remote sync is not configured.
func New(local repository.Repository, c *cache.Cache, remoteFor RemoteFactory, opts Options) *Controller {
	return &Controller{
		local:     local,
		cache:     c,
		remoteFor: remoteFor,
		opts:      opts,
		repo:      local,
		subjects:  []domain.Subject{},
		logs:      []domain.LogEntry{},
	}
}

// HandleSession switches to the source of truth for session (nil means
// signed out) and hydrates from it. Any hydration still running for an
// earlier session is cancelled and its result discarded.
func (c *Controller) HandleSession(ctx context.Context, session *auth.Session) error {
	gen, hctx := c.begin(ctx, session)
	return c.hydrate(hctx, gen, session)
}

// Refresh hydrates again for the current session.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	return c.HandleSession(ctx, session)
}

// Watch applies session events until ctx is done or events is closed.
// Each event starts its own hydration.
func (c *Controller) Watch(ctx context.Context, events <-chan auth.Event) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			gen, hctx := c.begin(ctx, event.Session)
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := c.hydrate(hctx, gen, event.Session); err != nil {
					if errors.IsErrorType(err, errors.ErrorTypeStale) {
						logging.Debug("hydration superseded", "generation", gen)
						return
					}
					logging.Error("hydration failed", "generation", gen, "error", err)
				}
			}()
		}
	}
}

func (c *Controller) begin(ctx context.Context, session *auth.Session) (uint64, context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	c.session = session

	var hctx context.Context
	if c.opts.HydrateTimeout > 0 {
		hctx, c.cancel = context.WithTimeout(ctx, c.opts.HydrateTimeout)
	} else {
		hctx, c.cancel = context.WithCancel(ctx)
	}
	return c.generation, hctx
}

func (c *Controller) finish(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation == gen && c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) hydrate(ctx context.Context, gen uint64, session *auth.Session) error {
	defer c.finish(gen)

	repo := c.local
	if session != nil {
		if c.remoteFor == nil {
			return errors.NewUnauthenticatedError("remote sync is not configured", nil)
		}
		repo = c.remoteFor(session)
		if c.opts.MigrateOnSignIn {
			if err := c.migrate(ctx, gen, repo, session.UserID.String()); err != nil {
				return c.staleOr(gen, "hydrate", err)
			}
		}
	}

	subjects, err := repo.ListSubjects(ctx)
	if err != nil {
		return c.staleOr(gen, "hydrate", err)
	}
	logs, err := repo.ListLogs(ctx)
	if err != nil {
		return c.staleOr(gen, "hydrate", err)
	}

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return errors.NewStaleError("hydrate")
	}
	c.repo = repo
	c.subjects = subjects
	c.logs = logs
	c.hydrated = true
	c.mu.Unlock()

	logging.Info("state hydrated", "mode", repo.Mode(), "subjects", len(subjects), "logs", len(logs))
	c.mirror(ctx, repo, session, subjects, logs)
	return nil
}

// staleOr reports a superseded generation in preference to err, which is
// usually the cancellation that superseding caused.
func (c *Controller) staleOr(gen uint64, op string, err error) error {
	c.mu.Lock()
	stale := c.generation != gen
	c.mu.Unlock()
	if stale {
		return errors.NewStaleError(op)
	}
	return err
}

// current returns the write target and generation. Writes are refused
// while the repository in use does not belong to the session: a signed-in
// write must reach the remote first, and a signed-out write must not.
func (c *Controller) current(op string) (repository.Repository, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targetLocked(op)
}

// targetLocked must be called with mu held.
func (c *Controller) targetLocked(op string) (repository.Repository, uint64, error) {
	remote := c.repo.Mode() == repository.ModeRemote
	switch {
	case c.session != nil && !remote:
		return nil, 0, errors.NewRemoteError(op, ErrNotSynced)
	case c.session == nil && remote:
		return nil, 0, errors.NewStaleError(op)
	}
	return c.repo, c.generation, nil
}

// apply runs fn against the in-memory state if gen is still current, then
// mirrors the result.
func (c *Controller) apply(ctx context.Context, gen uint64, op string, fn func()) error {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		logging.Warn("discarding result from previous session", "op", op)
		return errors.NewStaleError(op)
	}
	fn()
	repo := c.repo
	session := c.session
	subjects := copySubjects(c.subjects)
	logs := copyLogs(c.logs)
	c.mu.Unlock()

	c.mirror(ctx, repo, session, subjects, logs)
	return nil
}

// mirror copies remote state into the local cache and marks the cache as
// owned by the session's user. The owner is recorded before the collections
// so the cache never holds unowned remote data. The local repository
// already persists its own writes.
func (c *Controller) mirror(ctx context.Context, repo repository.Repository, session *auth.Session, subjects []domain.Subject, logs []domain.LogEntry) {
	if repo.Mode() != repository.ModeRemote || session == nil || c.cache == nil {
		return
	}
	if err := c.cache.SetOwner(ctx, session.UserID.String()); err != nil {
		logging.Warn("cache mirror failed", "key", cache.OwnerKey, "error", err)
		return
	}
	if err := c.cache.SaveSubjects(ctx, subjects); err != nil {
		logging.Warn("cache mirror failed", "key", cache.SubjectsKey, "error", err)
	}
	if err := c.cache.SaveLogs(ctx, logs); err != nil {
		logging.Warn("cache mirror failed", "key", cache.LogsKey, "error", err)
	}
}

// CreateSubject stores a new subject and adds the stored row to the state.
func (c *Controller) CreateSubject(ctx context.Context, name string, weeklyGoal float64) (domain.Subject, error) {
	repo, gen, err := c.current("create subject")
	if err != nil {
		return domain.Subject{}, err
	}
	subject, err := repo.CreateSubject(ctx, name, weeklyGoal)
	if err != nil {
		return domain.Subject{}, err
	}
	err = c.apply(ctx, gen, "create subject", func() {
		c.subjects = append(c.subjects, subject)
	})
	if err != nil {
		return domain.Subject{}, err
	}
	return subject, nil
}

// UpdateSubject renames a subject and sets its goal.
func (c *Controller) UpdateSubject(ctx context.Context, id int64, name string, weeklyGoal float64) (domain.Subject, error) {
	repo, gen, err := c.current("update subject")
	if err != nil {
		return domain.Subject{}, err
	}
	subject, err := repo.UpdateSubject(ctx, id, name, weeklyGoal)
	if err != nil {
		return domain.Subject{}, err
	}
	if err := c.apply(ctx, gen, "update subject", func() { c.replaceSubject(subject) }); err != nil {
		return domain.Subject{}, err
	}
	return subject, nil
}

// SetSubjectArchived archives or restores a subject.
func (c *Controller) SetSubjectArchived(ctx context.Context, id int64, archived bool) (domain.Subject, error) {
	repo, gen, err := c.current("archive subject")
	if err != nil {
		return domain.Subject{}, err
	}
	subject, err := repo.SetSubjectArchived(ctx, id, archived)
	if err != nil {
		return domain.Subject{}, err
	}
	if err := c.apply(ctx, gen, "archive subject", func() { c.replaceSubject(subject) }); err != nil {
		return domain.Subject{}, err
	}
	return subject, nil
}

// DeleteSubject refuses subjects that still have logged sessions.
func (c *Controller) DeleteSubject(ctx context.Context, id int64) error {
	c.mu.Lock()
	referenced := domain.ReferencesSubject(c.logs, id)
	repo, gen, err := c.targetLocked("delete subject")
	c.mu.Unlock()

	if err != nil {
		return err
	}
	if referenced {
		return errors.NewReferentialError("subject", strconv.FormatInt(id, 10),
			"This subject has logged sessions. Archive it instead.")
	}
	if err := repo.DeleteSubject(ctx, id); err != nil {
		return err
	}
	return c.apply(ctx, gen, "delete subject", func() {
		kept := c.subjects[:0:0]
		for _, s := range c.subjects {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		c.subjects = kept
	})
}

// CreateLog records a session now. The subject must exist and be active.
func (c *Controller) CreateLog(ctx context.Context, subjectID int64, minutes int) (domain.LogEntry, error) {
	c.mu.Lock()
	subject, found := domain.FindSubject(c.subjects, subjectID)
	repo, gen, err := c.targetLocked("create log")
	c.mu.Unlock()

	if err != nil {
		return domain.LogEntry{}, err
	}
	if !found {
		return domain.LogEntry{}, errors.NewValidationError("Choose a subject to log against", nil).
			WithContext("subject_id", subjectID)
	}
	if !subject.IsActive() {
		return domain.LogEntry{}, errors.NewValidationError("Archived subjects cannot receive new sessions", nil).
			WithContext("subject_id", subjectID)
	}

	entry, err := repo.CreateLog(ctx, subjectID, minutes, time.Time{})
	if err != nil {
		return domain.LogEntry{}, err
	}
	err = c.apply(ctx, gen, "create log", func() {
		c.logs = append([]domain.LogEntry{entry}, c.logs...)
	})
	if err != nil {
		return domain.LogEntry{}, err
	}
	return entry, nil
}

// UpdateLogDuration changes the length of a logged session.
func (c *Controller) UpdateLogDuration(ctx context.Context, id int64, minutes int) (domain.LogEntry, error) {
	repo, gen, err := c.current("update log")
	if err != nil {
		return domain.LogEntry{}, err
	}
	entry, err := repo.UpdateLogDuration(ctx, id, minutes)
	if err != nil {
		return domain.LogEntry{}, err
	}
	err = c.apply(ctx, gen, "update log", func() {
		for i := range c.logs {
			if c.logs[i].ID == entry.ID {
				c.logs[i] = entry
				return
			}
		}
		c.logs = append([]domain.LogEntry{entry}, c.logs...)
	})
	if err != nil {
		return domain.LogEntry{}, err
	}
	return entry, nil
}

// DeleteLog removes a logged session.
func (c *Controller) DeleteLog(ctx context.Context, id int64) error {
	repo, gen, err := c.current("delete log")
	if err != nil {
		return err
	}
	if err := repo.DeleteLog(ctx, id); err != nil {
		return err
	}
	return c.apply(ctx, gen, "delete log", func() {
		kept := c.logs[:0:0]
		for _, l := range c.logs {
			if l.ID != id {
				kept = append(kept, l)
			}
		}
		c.logs = kept
	})
}

// replaceSubject must be called with mu held.
func (c *Controller) replaceSubject(subject domain.Subject) {
	for i := range c.subjects {
		if c.subjects[i].ID == subject.ID {
			c.subjects[i] = subject
			return
		}
	}
	c.subjects = append(c.subjects, subject)
}

// Snapshot returns a copy of the whole state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Mode:     c.repo.Mode(),
		Session:  copySession(c.session),
		Subjects: copySubjects(c.subjects),
		Logs:     copyLogs(c.logs),
		Hydrated: c.hydrated,
	}
}

// Mode reports which repository currently backs the state.
func (c *Controller) Mode() repository.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repo.Mode()
}

// Subjects returns all subjects, archived ones included.
func (c *Controller) Subjects() []domain.Subject {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copySubjects(c.subjects)
}

// Logs returns all logs, newest first.
func (c *Controller) Logs() []domain.LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyLogs(c.logs)
}

// ActiveSubjects returns the subjects that can receive new logs.
func (c *Controller) ActiveSubjects() []domain.Subject {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.ActiveSubjects(c.subjects)
}

// DefaultSubjectID picks the subject of the most recent log if it is still
// active, otherwise the first active subject.
func (c *Controller) DefaultSubjectID() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := domain.ActiveSubjects(c.subjects)
	if len(active) == 0 {
		return 0, false
	}
	if len(c.logs) > 0 {
		if s, ok := domain.FindSubject(active, c.logs[0].SubjectID); ok {
			return s.ID, true
		}
	}
	return active[0].ID, true
}

func copySubjects(in []domain.Subject) []domain.Subject {
	out := make([]domain.Subject, len(in))
	copy(out, in)
	return out
}

func copyLogs(in []domain.LogEntry) []domain.LogEntry {
	out := make([]domain.LogEntry, len(in))
	copy(out, in)
	return out
}

func copySession(s *auth.Session) *auth.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
