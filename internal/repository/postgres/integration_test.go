package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"clockedin/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set CLOCKEDIN_POSTGRES_TEST_URL to run against a real database, e.g.
// postgres://clockedin@localhost:5432/clockedin_test?sslmode=disable
func openIntegrationStore(t *testing.T) *Store {
	t.Helper()
	connStr := os.Getenv("CLOCKEDIN_POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("CLOCKEDIN_POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	store, err := Open(context.Background(), connStr, Options{QueryTimeout: 10 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Integration(t *testing.T) {
	ctx := context.Background()
	store := openIntegrationStore(t)
	user := uuid.New()
	other := uuid.New()

	t.Run("Subjects", func(t *testing.T) {
		math, err := store.InsertSubject(ctx, user, "Math", 5, false)
		require.NoError(t, err)
		assert.Greater(t, math.ID, int64(0))
		assert.False(t, math.IsArchived)

		art, err := store.InsertSubject(ctx, user, "Art", 0, false)
		require.NoError(t, err)

		_, err = store.InsertSubject(ctx, other, "Hidden", 1, false)
		require.NoError(t, err)

		subjects, err := store.ListSubjects(ctx, user)
		require.NoError(t, err)
		require.Len(t, subjects, 2)
		assert.Equal(t, math.ID, subjects[0].ID, "ordered by creation")
		assert.Equal(t, art.ID, subjects[1].ID)

		updated, err := store.UpdateSubject(ctx, user, math.ID, "Mathematics", 6.5)
		require.NoError(t, err)
		assert.Equal(t, "Mathematics", updated.Name)
		assert.Equal(t, 6.5, updated.WeeklyGoal)

		archived, err := store.SetSubjectArchived(ctx, user, art.ID, true)
		require.NoError(t, err)
		assert.True(t, archived.IsArchived)

		_, err = store.UpdateSubject(ctx, other, math.ID, "Stolen", 1)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound), "rows of other users are invisible")

		require.NoError(t, store.DeleteSubject(ctx, user, art.ID))
		err = store.DeleteSubject(ctx, user, art.ID)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	})

	t.Run("Logs", func(t *testing.T) {
		older := time.Now().Add(-48 * time.Hour).UTC().Truncate(time.Millisecond)
		first, err := store.InsertLog(ctx, user, 1, 30, &older)
		require.NoError(t, err)
		assert.True(t, older.Equal(first.CreatedAt))

		second, err := store.InsertLog(ctx, user, 1, 60, nil)
		require.NoError(t, err)

		logs, err := store.ListLogs(ctx, user)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, second.ID, logs[0].ID, "newest first")

		updated, err := store.UpdateLogDuration(ctx, user, first.ID, 45)
		require.NoError(t, err)
		assert.Equal(t, 45, updated.DurationMinutes)

		_, err = store.InsertLog(ctx, user, 1, 0, nil)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeDatabase), "duration check constraint")

		require.NoError(t, store.DeleteLog(ctx, user, first.ID))
		assert.True(t, errors.IsErrorType(store.DeleteLog(ctx, other, second.ID), errors.ErrorTypeNotFound))
	})
}
