package api

import (
	"context"
	"time"

	"clockedin/internal/auth"
	"clockedin/internal/config"
	"clockedin/internal/domain"
	"clockedin/internal/state"
	"clockedin/internal/validation"
)

// API defines every operation the CLI and HTTP surfaces offer.
type API interface {
	// Dashboard
	Dashboard(ctx context.Context) (*Dashboard, error)

	// Subject operations
	ListSubjects(ctx context.Context, includeArchived bool) []SubjectView
	GroupSubjects(ctx context.Context) *SubjectGroups
	AddSubject(ctx context.Context, name, weeklyGoal string) (*domain.Subject, error)
	AddSubjectPreset(ctx context.Context, name string, goalHours float64) (*domain.Subject, error)
	EditSubject(ctx context.Context, id int64, name, weeklyGoal string) (*domain.Subject, error)
	ArchiveSubject(ctx context.Context, id int64) (*domain.Subject, error)
	UnarchiveSubject(ctx context.Context, id int64) (*domain.Subject, error)
	DeleteSubject(ctx context.Context, id int64) error

	// Log operations
	ListLogs(ctx context.Context, limit int) []LogView
	LogHours(ctx context.Context, subjectID int64, hours string) (*LogView, error)
	LogPreset(ctx context.Context, subjectID int64, minutes int) (*LogView, error)
	EditLog(ctx context.Context, id int64, hours string) (*LogView, error)
	DeleteLog(ctx context.Context, id int64) error
	DefaultSubject(ctx context.Context) (*domain.Subject, bool)

	// Session operations
	Status(ctx context.Context) *Status
	SignIn(ctx context.Context, token string) (*Status, error)
	SignOut(ctx context.Context) (*Status, error)
}

// Controller is the state controller surface the API drives.
type Controller interface {
	HandleSession(ctx context.Context, session *auth.Session) error
	Snapshot() state.Snapshot
	DefaultSubjectID() (int64, bool)

	CreateSubject(ctx context.Context, name string, weeklyGoal float64) (domain.Subject, error)
	UpdateSubject(ctx context.Context, id int64, name string, weeklyGoal float64) (domain.Subject, error)
	SetSubjectArchived(ctx context.Context, id int64, archived bool) (domain.Subject, error)
	DeleteSubject(ctx context.Context, id int64) error
	CreateLog(ctx context.Context, subjectID int64, minutes int) (domain.LogEntry, error)
	UpdateLogDuration(ctx context.Context, id int64, minutes int) (domain.LogEntry, error)
	DeleteLog(ctx context.Context, id int64) error
}

// Sessions is the auth manager surface the API drives.
type Sessions interface {
	Current() *auth.Session
	SignIn(token string) (*auth.Session, error)
	SignOut() error
}

type Options struct {
	// HydrateOnSessionChange makes SignIn and SignOut hydrate before they
	// return. Leave it off when something else watches session events.
	HydrateOnSessionChange bool
	Now                    func() time.Time
}

type apiImpl struct {
	controller       Controller
	sessions         Sessions
	opts             Options
	subjectValidator *validation.SubjectValidator
	logValidator     *validation.LogValidator
}

// New creates a new API instance. cfg supplies validation limits and may be nil.
func New(controller Controller, sessions Sessions, cfg *config.Config, opts Options) API {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	v := validation.NewValidatorWithConfig(cfg)
	return &apiImpl{
		controller:       controller,
		sessions:         sessions,
		opts:             opts,
		subjectValidator: validation.NewSubjectValidator(v),
		logValidator:     validation.NewLogValidator(v),
	}
}

// ListSubjects returns active subjects ordered by weekly goal then name,
// followed by the archived ones in the same order when includeArchived is set.
func (a *apiImpl) ListSubjects(ctx context.Context, includeArchived bool) []SubjectView {
	groups := a.GroupSubjects(ctx)
	if !includeArchived {
		return groups.Active
	}
	return append(groups.Active, groups.Archived...)
}

func (a *apiImpl) GroupSubjects(ctx context.Context) *SubjectGroups {
	snap := a.controller.Snapshot()
	return &SubjectGroups{
		Active:   newSubjectViews(domain.SortByGoal(domain.ActiveSubjects(snap.Subjects)), snap.Logs),
		Archived: newSubjectViews(domain.SortByGoal(domain.ArchivedSubjects(snap.Subjects)), snap.Logs),
	}
}

func (a *apiImpl) AddSubject(ctx context.Context, name, weeklyGoal string) (*domain.Subject, error) {
	goal, err := validation.ParseWeeklyGoal(weeklyGoal)
	if err != nil {
		return nil, err
	}
	cleaned, err := a.subjectValidator.ValidateForCreation(name, goal)
	if err != nil {
		return nil, err
	}

	subject, err := a.controller.CreateSubject(ctx, cleaned, goal)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// AddSubjectPreset creates a subject with one of the quick-pick weekly goals.
func (a *apiImpl) AddSubjectPreset(ctx context.Context, name string, goalHours float64) (*domain.Subject, error) {
	if err := a.subjectValidator.ValidateGoalPreset(goalHours, domain.GoalPresetHours()); err != nil {
		return nil, err
	}
	cleaned, err := a.subjectValidator.ValidateForCreation(name, goalHours)
	if err != nil {
		return nil, err
	}

	subject, err := a.controller.CreateSubject(ctx, cleaned, goalHours)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (a *apiImpl) EditSubject(ctx context.Context, id int64, name, weeklyGoal string) (*domain.Subject, error) {
	goal, err := validation.ParseWeeklyGoal(weeklyGoal)
	if err != nil {
		return nil, err
	}
	cleaned, err := a.subjectValidator.ValidateForUpdate(id, name, goal)
	if err != nil {
		return nil, err
	}

	subject, err := a.controller.UpdateSubject(ctx, id, cleaned, goal)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (a *apiImpl) ArchiveSubject(ctx context.Context, id int64) (*domain.Subject, error) {
	return a.setArchived(ctx, id, true)
}

func (a *apiImpl) UnarchiveSubject(ctx context.Context, id int64) (*domain.Subject, error) {
	return a.setArchived(ctx, id, false)
}

func (a *apiImpl) setArchived(ctx context.Context, id int64, archived bool) (*domain.Subject, error) {
	if err := a.subjectValidator.ValidateID(id); err != nil {
		return nil, err
	}
	subject, err := a.controller.SetSubjectArchived(ctx, id, archived)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (a *apiImpl) DeleteSubject(ctx context.Context, id int64) error {
	if err := a.subjectValidator.ValidateID(id); err != nil {
		return err
	}
	return a.controller.DeleteSubject(ctx, id)
}

// ListLogs returns the newest logs first. A limit of zero or less returns all.
func (a *apiImpl) ListLogs(ctx context.Context, limit int) []LogView {
	snap := a.controller.Snapshot()
	logs := snap.Logs
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	views := make([]LogView, len(logs))
	for i, l := range logs {
		views[i] = newLogView(l, snap.Subjects)
	}
	return views
}

// LogHours records a session from free-text hours. A zero subjectID uses
// the default subject.
func (a *apiImpl) LogHours(ctx context.Context, subjectID int64, hours string) (*LogView, error) {
	minutes, err := validation.ParseHoursToMinutes(hours)
	if err != nil {
		return nil, err
	}
	return a.createLog(ctx, subjectID, minutes)
}

// LogPreset records one of the quick-pick durations.
func (a *apiImpl) LogPreset(ctx context.Context, subjectID int64, minutes int) (*LogView, error) {
	if err := a.logValidator.ValidatePreset(minutes, domain.PresetDurations); err != nil {
		return nil, err
	}
	return a.createLog(ctx, subjectID, minutes)
}

func (a *apiImpl) createLog(ctx context.Context, subjectID int64, minutes int) (*LogView, error) {
	if subjectID == 0 {
		if id, ok := a.controller.DefaultSubjectID(); ok {
			subjectID = id
		}
	}
	if err := a.logValidator.ValidateForCreation(subjectID, minutes); err != nil {
		return nil, err
	}

	entry, err := a.controller.CreateLog(ctx, subjectID, minutes)
	if err != nil {
		return nil, err
	}
	view := newLogView(entry, a.controller.Snapshot().Subjects)
	return &view, nil
}

func (a *apiImpl) EditLog(ctx context.Context, id int64, hours string) (*LogView, error) {
	minutes, err := validation.ParseHoursToMinutes(hours)
	if err != nil {
		return nil, err
	}
	if err := a.logValidator.ValidateForUpdate(id, minutes); err != nil {
		return nil, err
	}

	entry, err := a.controller.UpdateLogDuration(ctx, id, minutes)
	if err != nil {
		return nil, err
	}
	view := newLogView(entry, a.controller.Snapshot().Subjects)
	return &view, nil
}

func (a *apiImpl) DeleteLog(ctx context.Context, id int64) error {
	if err := a.logValidator.ValidateID(id); err != nil {
		return err
	}
	return a.controller.DeleteLog(ctx, id)
}

func (a *apiImpl) DefaultSubject(ctx context.Context) (*domain.Subject, bool) {
	id, ok := a.controller.DefaultSubjectID()
	if !ok {
		return nil, false
	}
	subject, ok := domain.FindSubject(a.controller.Snapshot().Subjects, id)
	if !ok {
		return nil, false
	}
	return &subject, true
}

func (a *apiImpl) Status(ctx context.Context) *Status {
	return newStatus(a.controller.Snapshot(), a.sessions.Current())
}

func (a *apiImpl) SignIn(ctx context.Context, token string) (*Status, error) {
	session, err := a.sessions.SignIn(token)
	if err != nil {
		return nil, err
	}
	if a.opts.HydrateOnSessionChange {
		if err := a.controller.HandleSession(ctx, session); err != nil {
			return nil, err
		}
	}
	return a.Status(ctx), nil
}

func (a *apiImpl) SignOut(ctx context.Context) (*Status, error) {
	if err := a.sessions.SignOut(); err != nil {
		return nil, err
	}
	if a.opts.HydrateOnSessionChange {
		if err := a.controller.HandleSession(ctx, nil); err != nil {
			return nil, err
		}
	}
	return a.Status(ctx), nil
}
