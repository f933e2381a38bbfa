package cli

import (
	"context"
	"strconv"
	"time"

	"clockedin/internal/api"
	"clockedin/internal/domain"
	"clockedin/internal/errors"
	"clockedin/internal/stats"
	"clockedin/internal/validation"
)

// mockAPI implements api.API in memory for command tests
type mockAPI struct {
	subjects []domain.Subject
	logs     []domain.LogEntry
	nextID   int64
	signedIn bool
	err      error
	calls    []string
}

func newMockAPI() *mockAPI {
	return &mockAPI{nextID: 1}
}

func (m *mockAPI) record(call string) error {
	m.calls = append(m.calls, call)
	return m.err
}

func (m *mockAPI) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockAPI) Dashboard(ctx context.Context) (*api.Dashboard, error) {
	if err := m.record("Dashboard"); err != nil {
		return nil, err
	}
	now := timeNow()
	summary := stats.Summarize(m.subjects, m.logs, now)
	return &api.Dashboard{
		Mode:                "local",
		Summary:             summary,
		Streak:              stats.Streak(m.logs, now),
		Week:                stats.WeekStrip(m.logs, now),
		Ranked:              stats.RankByHours(summary.Subjects),
		TotalMinutesAllTime: stats.TotalMinutesAllTime(m.logs),
	}, nil
}

func (m *mockAPI) views(subjects []domain.Subject) []api.SubjectView {
	out := make([]api.SubjectView, len(subjects))
	for i, s := range subjects {
		out[i] = api.SubjectView{Subject: s, HasLogs: domain.ReferencesSubject(m.logs, s.ID)}
	}
	return out
}

func (m *mockAPI) ListSubjects(ctx context.Context, includeArchived bool) []api.SubjectView {
	_ = m.record("ListSubjects")
	groups := m.GroupSubjects(ctx)
	if includeArchived {
		return append(groups.Active, groups.Archived...)
	}
	return groups.Active
}

func (m *mockAPI) GroupSubjects(ctx context.Context) *api.SubjectGroups {
	_ = m.record("GroupSubjects")
	return &api.SubjectGroups{
		Active:   m.views(domain.SortByGoal(domain.ActiveSubjects(m.subjects))),
		Archived: m.views(domain.SortByGoal(domain.ArchivedSubjects(m.subjects))),
	}
}

func (m *mockAPI) AddSubjectPreset(ctx context.Context, name string, goalHours float64) (*domain.Subject, error) {
	if err := m.record("AddSubjectPreset"); err != nil {
		return nil, err
	}
	if err := validation.NewSubjectValidator(validation.NewValidator()).ValidateGoalPreset(goalHours, domain.GoalPresetHours()); err != nil {
		return nil, err
	}
	s := domain.NewSubject(name, goalHours)
	s.ID = m.id()
	m.subjects = append(m.subjects, s)
	return &s, nil
}

func (m *mockAPI) AddSubject(ctx context.Context, name, weeklyGoal string) (*domain.Subject, error) {
	if err := m.record("AddSubject"); err != nil {
		return nil, err
	}
	goal, err := validation.ParseWeeklyGoal(weeklyGoal)
	if err != nil {
		return nil, err
	}
	s := domain.NewSubject(name, goal)
	s.ID = m.id()
	m.subjects = append(m.subjects, s)
	return &s, nil
}

func (m *mockAPI) EditSubject(ctx context.Context, id int64, name, weeklyGoal string) (*domain.Subject, error) {
	if err := m.record("EditSubject"); err != nil {
		return nil, err
	}
	goal, err := validation.ParseWeeklyGoal(weeklyGoal)
	if err != nil {
		return nil, err
	}
	return m.mutate(id, func(s *domain.Subject) { s.Name, s.WeeklyGoal = name, goal })
}

func (m *mockAPI) ArchiveSubject(ctx context.Context, id int64) (*domain.Subject, error) {
	if err := m.record("ArchiveSubject"); err != nil {
		return nil, err
	}
	return m.mutate(id, func(s *domain.Subject) { s.IsArchived = true })
}

func (m *mockAPI) UnarchiveSubject(ctx context.Context, id int64) (*domain.Subject, error) {
	if err := m.record("UnarchiveSubject"); err != nil {
		return nil, err
	}
	return m.mutate(id, func(s *domain.Subject) { s.IsArchived = false })
}

func (m *mockAPI) mutate(id int64, apply func(*domain.Subject)) (*domain.Subject, error) {
	for i := range m.subjects {
		if m.subjects[i].ID == id {
			apply(&m.subjects[i])
			s := m.subjects[i]
			return &s, nil
		}
	}
	return nil, errors.NewNotFoundError("subject", strconv.FormatInt(id, 10))
}

func (m *mockAPI) DeleteSubject(ctx context.Context, id int64) error {
	if err := m.record("DeleteSubject"); err != nil {
		return err
	}
	if domain.ReferencesSubject(m.logs, id) {
		return errors.NewReferentialError("subject", strconv.FormatInt(id, 10), "This subject has logged sessions. Archive it instead.")
	}
	for i := range m.subjects {
		if m.subjects[i].ID == id {
			m.subjects = append(m.subjects[:i], m.subjects[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError("subject", strconv.FormatInt(id, 10))
}

func (m *mockAPI) ListLogs(ctx context.Context, limit int) []api.LogView {
	_ = m.record("ListLogs")
	logs := m.logs
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	views := make([]api.LogView, len(logs))
	for i, l := range logs {
		views[i] = m.view(l)
	}
	return views
}

func (m *mockAPI) view(l domain.LogEntry) api.LogView {
	return api.LogView{LogEntry: l, SubjectName: domain.SubjectName(m.subjects, l.SubjectID), Hours: l.Hours()}
}

func (m *mockAPI) LogHours(ctx context.Context, subjectID int64, hours string) (*api.LogView, error) {
	if err := m.record("LogHours"); err != nil {
		return nil, err
	}
	minutes, err := validation.ParseHoursToMinutes(hours)
	if err != nil {
		return nil, err
	}
	return m.addLog(subjectID, minutes)
}

func (m *mockAPI) LogPreset(ctx context.Context, subjectID int64, minutes int) (*api.LogView, error) {
	if err := m.record("LogPreset"); err != nil {
		return nil, err
	}
	return m.addLog(subjectID, minutes)
}

func (m *mockAPI) addLog(subjectID int64, minutes int) (*api.LogView, error) {
	if subjectID == 0 {
		active := domain.ActiveSubjects(m.subjects)
		if len(active) == 0 {
			return nil, errors.NewValidationError("Choose a subject", nil)
		}
		subjectID = active[0].ID
	}
	entry := domain.NewLogEntry(subjectID, minutes, timeNow(), "2006-01-02 15:04")
	entry.ID = m.id()
	m.logs = append([]domain.LogEntry{entry}, m.logs...)
	v := m.view(entry)
	return &v, nil
}

func (m *mockAPI) EditLog(ctx context.Context, id int64, hours string) (*api.LogView, error) {
	if err := m.record("EditLog"); err != nil {
		return nil, err
	}
	minutes, err := validation.ParseHoursToMinutes(hours)
	if err != nil {
		return nil, err
	}
	for i := range m.logs {
		if m.logs[i].ID == id {
			m.logs[i].DurationMinutes = minutes
			v := m.view(m.logs[i])
			return &v, nil
		}
	}
	return nil, errors.NewNotFoundError("log", strconv.FormatInt(id, 10))
}

func (m *mockAPI) DeleteLog(ctx context.Context, id int64) error {
	if err := m.record("DeleteLog"); err != nil {
		return err
	}
	for i := range m.logs {
		if m.logs[i].ID == id {
			m.logs = append(m.logs[:i], m.logs[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError("log", strconv.FormatInt(id, 10))
}

func (m *mockAPI) DefaultSubject(ctx context.Context) (*domain.Subject, bool) {
	active := domain.ActiveSubjects(m.subjects)
	if len(active) == 0 {
		return nil, false
	}
	return &active[0], true
}

func (m *mockAPI) Status(ctx context.Context) *api.Status {
	_ = m.record("Status")
	status := &api.Status{Mode: "local", Hydrated: true, Subjects: len(m.subjects), Logs: len(m.logs)}
	if m.signedIn {
		expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		status.Mode = "remote"
		status.SignedIn = true
		status.UserID = "8a1c0d5e-0000-4000-8000-000000000001"
		status.Email = "ada@example.com"
		status.ExpiresAt = &expires
	}
	return status
}

func (m *mockAPI) SignIn(ctx context.Context, token string) (*api.Status, error) {
	if err := m.record("SignIn"); err != nil {
		return nil, err
	}
	if token != "good-token" {
		return nil, errors.NewUnauthenticatedError("invalid token", nil)
	}
	m.signedIn = true
	return m.Status(ctx), nil
}

func (m *mockAPI) SignOut(ctx context.Context) (*api.Status, error) {
	if err := m.record("SignOut"); err != nil {
		return nil, err
	}
	m.signedIn = false
	return m.Status(ctx), nil
}
