package api

import (
	"context"
	"testing"
	"time"

	"clockedin/internal/auth"
	"clockedin/internal/cache"
	"clockedin/internal/domain"
	"clockedin/internal/errors"
	"clockedin/internal/repository"
	"clockedin/internal/repository/sqlite"
	"clockedin/internal/state"
	"clockedin/internal/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "api-test-secret"

// remoteLocal stands in for a remote backend with a second local cache.
type remoteLocal struct{ *repository.Local }

func (remoteLocal) Mode() repository.Mode { return repository.ModeRemote }

func openCache(t *testing.T) *cache.Cache {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.MemoryPath, sqlite.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return cache.New(store)
}

func setupTestAPI(t *testing.T, now time.Time) (API, *auth.Manager) {
	t.Helper()
	clock := func() time.Time { return now }

	c := openCache(t)
	local := repository.NewLocal(c, "2006-01-02 15:04", clock)
	remote := remoteLocal{repository.NewLocal(openCache(t), "2006-01-02 15:04", clock)}
	ctrl := state.New(local, c, func(*auth.Session) repository.Repository { return remote }, state.Options{})
	require.NoError(t, ctrl.HandleSession(context.Background(), nil))

	manager := auth.NewManager(testSecret, auth.NewMemoryStore())
	return New(ctrl, manager, nil, Options{HydrateOnSessionChange: true, Now: clock}), manager
}

func TestAPI_Subjects(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestAPI(t, time.Now())

	math, err := a.AddSubject(ctx, "  Math  ", "4,5")
	require.NoError(t, err)
	assert.Equal(t, "Math", math.Name)
	assert.Equal(t, 4.5, math.WeeklyGoal)

	art, err := a.AddSubject(ctx, "Art", "")
	require.NoError(t, err)
	assert.False(t, art.HasGoal())

	edited, err := a.EditSubject(ctx, math.ID, "Mathematics", "6")
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", edited.Name)

	archived, err := a.ArchiveSubject(ctx, art.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.Len(t, a.ListSubjects(ctx, false), 1)
	assert.Len(t, a.ListSubjects(ctx, true), 2)

	restored, err := a.UnarchiveSubject(ctx, art.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsArchived)

	require.NoError(t, a.DeleteSubject(ctx, art.ID))
	assert.Len(t, a.ListSubjects(ctx, true), 1)
}

func TestAPI_SubjectValidation(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestAPI(t, time.Now())

	tests := []struct {
		name string
		in   string
		goal string
	}{
		{name: "empty name", in: "   ", goal: "1"},
		{name: "negative goal", in: "Math", goal: "-1"},
		{name: "goal is not a number", in: "Math", goal: "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.AddSubject(ctx, tt.in, tt.goal)
			require.Error(t, err)
			assert.True(t, validation.IsValidationError(err))
		})
	}
	assert.Empty(t, a.ListSubjects(ctx, true))

	_, err := a.EditSubject(ctx, 0, "Math", "1")
	assert.True(t, validation.IsValidationError(err))
}

func TestAPI_SubjectOrderingAndHistory(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestAPI(t, time.Now())

	for _, in := range []struct{ name, goal string }{
		{"biology", "6"},
		{"Zoology", ""},
		{"Algebra", "13"},
		{"art", "6"},
		{"Chemistry", "10"},
	} {
		_, err := a.AddSubject(ctx, in.name, in.goal)
		require.NoError(t, err)
	}
	chem := a.ListSubjects(ctx, false)[1]
	require.Equal(t, "Chemistry", chem.Name)
	_, err := a.LogHours(ctx, chem.ID, "1")
	require.NoError(t, err)

	zoo := a.ListSubjects(ctx, false)[4]
	require.Equal(t, "Zoology", zoo.Name)
	_, err = a.ArchiveSubject(ctx, zoo.ID)
	require.NoError(t, err)

	names := func(views []SubjectView) []string {
		out := make([]string, len(views))
		for i, v := range views {
			out[i] = v.Name
		}
		return out
	}

	groups := a.GroupSubjects(ctx)
	assert.Equal(t, []string{"Algebra", "Chemistry", "art", "biology"}, names(groups.Active))
	assert.Equal(t, []string{"Zoology"}, names(groups.Archived))
	assert.Equal(t, []string{"Algebra", "Chemistry", "art", "biology", "Zoology"}, names(a.ListSubjects(ctx, true)))

	for _, v := range a.ListSubjects(ctx, true) {
		assert.Equal(t, v.Name == "Chemistry", v.HasLogs, v.Name)
	}

	err = a.DeleteSubject(ctx, chem.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeReferential))
}

func TestAPI_AddSubjectPreset(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestAPI(t, time.Now())

	tests := []struct {
		name    string
		subject string
		hours   float64
		wantErr bool
	}{
		{name: "five credits", subject: "Math", hours: 6},
		{name: "seven and a half credits", subject: "Physics", hours: 10},
		{name: "ten credits", subject: "Thesis", hours: 13},
		{name: "not offered", subject: "Art", hours: 7, wantErr: true},
		{name: "zero", subject: "Music", hours: 0, wantErr: true},
		{name: "valid preset with empty name", subject: "  ", hours: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := a.AddSubjectPreset(ctx, tt.subject, tt.hours)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, validation.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hours, subject.WeeklyGoal)
		})
	}
	assert.Len(t, a.ListSubjects(ctx, true), 3)
}

func TestAPI_Logs(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestAPI(t, time.Now())

	math, err := a.AddSubject(ctx, "Math", "2")
	require.NoError(t, err)

	view, err := a.LogHours(ctx, 0, "1,5")
	require.NoError(t, err)
	assert.Equal(t, math.ID, view.SubjectID, "defaults to the only active subject")
	assert.Equal(t, 90, view.DurationMinutes)
	assert.Equal(t, "Math", view.SubjectName)
	assert.Equal(t, 1.5, view.Hours)

	preset, err := a.LogPreset(ctx, math.ID, 45)
	require.NoError(t, err)
	assert.Equal(t, 45, preset.DurationMinutes)

	_, err = a.LogPreset(ctx, math.ID, 50)
	assert.True(t, validation.IsValidationError(err))

	edited, err := a.EditLog(ctx, view.ID, "2")
	require.NoError(t, err)
	assert.Equal(t, 120, edited.DurationMinutes)

	logs := a.ListLogs(ctx, 0)
	require.Len(t, logs, 2)
	assert.Equal(t, preset.ID, logs[0].ID, "newest first")
	assert.Len(t, a.ListLogs(ctx, 1), 1)

	err = a.DeleteSubject(ctx, math.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeReferential))

	require.NoError(t, a.DeleteLog(ctx, view.ID))
	assert.Len(t, a.ListLogs(ctx, 0), 1)
}

func TestAPI_LogHoursValidation(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestAPI(t, time.Now())

	tests := []struct {
		name  string
		hours string
	}{
		{name: "empty", hours: ""},
		{name: "zero", hours: "0"},
		{name: "negative", hours: "-1"},
		{name: "text", hours: "abc"},
	}

	_, err := a.AddSubject(ctx, "Math", "")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.LogHours(ctx, 0, tt.hours)
			require.Error(t, err)
			assert.True(t, validation.IsValidationError(err))
		})
	}
	assert.Empty(t, a.ListLogs(ctx, 0))
}

func TestAPI_LogWithoutSubjects(t *testing.T) {
	a, _ := setupTestAPI(t, time.Now())
	_, err := a.LogHours(context.Background(), 0, "1")
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))

	_, ok := a.DefaultSubject(context.Background())
	assert.False(t, ok)
}

func TestAPI_Dashboard(t *testing.T) {
	ctx := context.Background()
	// Wednesday
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.Local)
	a, _ := setupTestAPI(t, now)

	math, err := a.AddSubject(ctx, "Math", "2")
	require.NoError(t, err)
	art, err := a.AddSubject(ctx, "Art", "1")
	require.NoError(t, err)
	_, err = a.LogHours(ctx, art.ID, "1")
	require.NoError(t, err)
	_, err = a.LogHours(ctx, math.ID, "0.5")
	require.NoError(t, err)

	d, err := a.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "local", d.Mode)
	assert.Equal(t, 90, d.Summary.TotalMinutes)
	assert.Equal(t, 3.0, d.Summary.TotalWeeklyGoal)
	assert.Equal(t, 50.0, d.Summary.OverallProgressPercent)
	require.NotNil(t, d.Summary.TopSubject)
	assert.Equal(t, "Art", d.Summary.TopSubject.Subject.Name)
	assert.Equal(t, "Art", d.Ranked[0].Subject.Name)
	assert.Equal(t, 1, d.Streak)
	assert.Len(t, d.Week, 7)
	assert.True(t, d.Week[2].Active)
	assert.Equal(t, 90, d.TotalMinutesAllTime)
	assert.Len(t, d.RecentLogs, 2)
}

func TestAPI_LogViewUnknownSubject(t *testing.T) {
	view := newLogView(domain.LogEntry{ID: 1, SubjectID: 99, DurationMinutes: 30}, nil)
	assert.Equal(t, domain.UnknownSubjectName, view.SubjectName)
	assert.Equal(t, 0.5, view.Hours)
}

func TestAPI_Session(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestAPI(t, time.Now())

	status := a.Status(ctx)
	assert.False(t, status.SignedIn)
	assert.Equal(t, "local", status.Mode)

	_, err := a.SignIn(ctx, "bad-token")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeUnauthenticated))

	userID := uuid.New()
	token, err := auth.IssueToken(userID, "ada@example.com", testSecret, time.Hour)
	require.NoError(t, err)

	status, err = a.SignIn(ctx, token)
	require.NoError(t, err)
	assert.True(t, status.SignedIn)
	assert.Equal(t, userID.String(), status.UserID)
	assert.Equal(t, "remote", status.Mode)
	assert.NotNil(t, status.ExpiresAt)

	status, err = a.SignOut(ctx)
	require.NoError(t, err)
	assert.False(t, status.SignedIn)
	assert.Equal(t, "local", status.Mode)
}
