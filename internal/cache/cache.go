// Package cache persists the subject and log collections as JSON documents
// in a key-value store. Reads never fail: a missing, unreadable or corrupt
// entry yields an empty collection.
package cache

import (
	"context"
	"encoding/json"

	"clockedin/internal/domain"
	"clockedin/internal/errors"
	"clockedin/internal/logging"
)

const (
	SubjectsKey      = "clockedin_subjects_v1"
	LogsKey          = "clockedin_logs_v1"
	MigratedUsersKey = "clockedin_migrated_users_v1"
	// OwnerKey names the account whose remote data the collections mirror.
	// It is absent while the collections hold signed-out data.
	OwnerKey = "clockedin_cache_owner_v1"
)

// Store is the key-value persistence the cache sits on.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Cache is the local cache of subjects and logs.
type Cache struct {
	store Store
}

func New(store Store) *Cache {
	return &Cache{store: store}
}

func (c *Cache) LoadSubjects(ctx context.Context) []domain.Subject {
	return load[domain.Subject](ctx, c.store, SubjectsKey)
}

func (c *Cache) SaveSubjects(ctx context.Context, subjects []domain.Subject) error {
	return save(ctx, c.store, SubjectsKey, subjects)
}

func (c *Cache) LoadLogs(ctx context.Context) []domain.LogEntry {
	return load[domain.LogEntry](ctx, c.store, LogsKey)
}

func (c *Cache) SaveLogs(ctx context.Context, logs []domain.LogEntry) error {
	return save(ctx, c.store, LogsKey, logs)
}

// IsMigrated reports whether local data was already uploaded for userID.
func (c *Cache) IsMigrated(ctx context.Context, userID string) bool {
	for _, id := range load[string](ctx, c.store, MigratedUsersKey) {
		if id == userID {
			return true
		}
	}
	return false
}

// MarkMigrated records that local data was uploaded for userID.
func (c *Cache) MarkMigrated(ctx context.Context, userID string) error {
	if c.IsMigrated(ctx, userID) {
		return nil
	}
	ids := append(load[string](ctx, c.store, MigratedUsersKey), userID)
	return save(ctx, c.store, MigratedUsersKey, ids)
}

// Owner returns the user id whose remote data the collections currently
// mirror, or "" when they hold data created while signed out.
func (c *Cache) Owner(ctx context.Context) (string, error) {
	raw, ok, err := c.store.Get(ctx, OwnerKey)
	if err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeDatabase, "read cache owner")
	}
	if !ok {
		return "", nil
	}
	return raw, nil
}

// SetOwner records that the collections mirror userID's remote data.
func (c *Cache) SetOwner(ctx context.Context, userID string) error {
	return c.store.Put(ctx, OwnerKey, userID)
}

func load[T any](ctx context.Context, store Store, key string) []T {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		logging.Warn("cache read failed", "key", key, "error", err)
		return []T{}
	}
	if !ok || raw == "" {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logging.Warn("cache entry is corrupt, treating as empty", "key", key, "error", err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func save[T any](ctx context.Context, store Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeDatabase, "encode "+key)
	}
	return store.Put(ctx, key, string(data))
}
