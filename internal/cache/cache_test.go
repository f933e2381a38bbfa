package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"clockedin/internal/domain"
	"clockedin/internal/repository/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	values map[string]string
	getErr error
	putErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryStore) Put(_ context.Context, key, value string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.values[key] = value
	return nil
}

func TestRoundTripOverSqlite(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "cache.db"), sqlite.Options{})
	require.NoError(t, err)
	defer store.Close()

	c := New(store)
	subjects := []domain.Subject{
		{ID: 1, Name: "Math", WeeklyGoal: 5, IsArchived: false},
		{ID: 2, Name: "History", WeeklyGoal: 0, IsArchived: true},
	}
	logs := []domain.LogEntry{
		{ID: 10, SubjectID: 1, DurationMinutes: 90, CreatedAtISO: "2025-01-06T10:00:00.000Z", CreatedAt: "2025-01-06 11:00"},
	}

	require.NoError(t, c.SaveSubjects(ctx, subjects))
	require.NoError(t, c.SaveLogs(ctx, logs))

	assert.Equal(t, subjects, c.LoadSubjects(ctx))
	assert.Equal(t, logs, c.LoadLogs(ctx))
}

func TestLoadDegradesToEmpty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		store *memoryStore
	}{
		{"missing key", newMemoryStore()},
		{"corrupt json", &memoryStore{values: map[string]string{SubjectsKey: "{not json", LogsKey: "42"}}},
		{"null document", &memoryStore{values: map[string]string{SubjectsKey: "null", LogsKey: "null"}}},
		{"storage error", &memoryStore{values: map[string]string{}, getErr: errors.New("disk gone")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.store)
			subjects := c.LoadSubjects(ctx)
			logs := c.LoadLogs(ctx)
			assert.NotNil(t, subjects)
			assert.Empty(t, subjects)
			assert.NotNil(t, logs)
			assert.Empty(t, logs)
		})
	}
}

func TestMissingArchivedFlagDecodesAsActive(t *testing.T) {
	store := &memoryStore{values: map[string]string{SubjectsKey: `[{"id":3,"name":"Art","weeklyGoal":2}]`}}
	subjects := New(store).LoadSubjects(context.Background())
	require.Len(t, subjects, 1)
	assert.False(t, subjects[0].IsArchived)
	assert.Equal(t, 2.0, subjects[0].WeeklyGoal)
}

func TestSaveUsesCacheFieldNames(t *testing.T) {
	store := newMemoryStore()
	c := New(store)

	require.NoError(t, c.SaveLogs(context.Background(), []domain.LogEntry{{ID: 1, SubjectID: 2, DurationMinutes: 30, CreatedAtISO: "x", CreatedAt: "y"}}))
	assert.JSONEq(t, `[{"id":1,"subjectId":2,"durationMinutes":30,"createdAtISO":"x","createdAt":"y"}]`, store.values[LogsKey])

	require.NoError(t, c.SaveSubjects(context.Background(), nil))
	assert.Equal(t, "[]", store.values[SubjectsKey])
}

func TestSaveReturnsStoreError(t *testing.T) {
	store := newMemoryStore()
	store.putErr = errors.New("read-only")
	err := New(store).SaveSubjects(context.Background(), []domain.Subject{{ID: 1, Name: "x"}})
	assert.ErrorIs(t, err, store.putErr)
}

func TestMigratedUsers(t *testing.T) {
	ctx := context.Background()
	c := New(newMemoryStore())

	assert.False(t, c.IsMigrated(ctx, "u1"))
	require.NoError(t, c.MarkMigrated(ctx, "u1"))
	require.NoError(t, c.MarkMigrated(ctx, "u1"))
	require.NoError(t, c.MarkMigrated(ctx, "u2"))
	assert.True(t, c.IsMigrated(ctx, "u1"))
	assert.True(t, c.IsMigrated(ctx, "u2"))
	assert.False(t, c.IsMigrated(ctx, "u3"))
}

func TestCacheOwner(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	c := New(store)

	owner, err := c.Owner(ctx)
	require.NoError(t, err)
	assert.Empty(t, owner, "signed-out data has no owner")

	require.NoError(t, c.SetOwner(ctx, "u1"))
	owner, err = c.Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)

	store.getErr = errors.New("disk gone")
	_, err = c.Owner(ctx)
	assert.ErrorIs(t, err, store.getErr)
}
