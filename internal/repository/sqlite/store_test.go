package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"clockedin/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	store, err := Open(context.Background(), path, Options{QueryTimeout: time.Second, WriteTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestOpenCreatesDirectory(t *testing.T) {
	_, path := setupTestStore(t)
	_, err := os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestStorePutGet(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)

	_, ok, err := store.Get(ctx, "clockedin_subjects_v1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "clockedin_subjects_v1", `[{"id":1}]`))
	value, ok, err := store.Get(ctx, "clockedin_subjects_v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, value)

	require.NoError(t, store.Put(ctx, "clockedin_subjects_v1", `[]`))
	value, _, err = store.Get(ctx, "clockedin_subjects_v1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)
}

func TestStoreEntriesAndDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)
	fixed := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	require.NoError(t, store.Put(ctx, "b", "2"))
	require.NoError(t, store.Put(ctx, "a", "1"))

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, "1", entries[0].Value)
	assert.True(t, fixed.Equal(entries[0].UpdatedAt))

	require.NoError(t, store.Delete(ctx, "a"))
	err = store.Delete(ctx, "a")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := Open(ctx, path, Options{})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "k", "v"))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path, Options{})
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, MemoryPath, Options{})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ctx, "k", "v"))
	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestClosedStoreReturnsDatabaseError(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)
	require.NoError(t, store.Close())

	_, _, err := store.Get(ctx, "k")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeDatabase))
	err = store.Put(ctx, "k", "v")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeDatabase))
}
