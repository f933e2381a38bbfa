package state

import (
	"context"
	"time"

	"clockedin/internal/errors"
	"clockedin/internal/logging"
	"clockedin/internal/repository"
	"clockedin/internal/stats"
)

// migrate uploads the local cache to repo the first time userID signs in
// on this device. Subject ids are remapped to the ones repo assigns and
// logs keep their original timestamps. Logs pointing at subjects that no
// longer exist locally are skipped.
//
// Only data created while signed out is uploaded. A cache that mirrors an
// account, this one or another, is left alone.
func (c *Controller) migrate(ctx context.Context, gen uint64, repo repository.Repository, userID string) error {
	if c.cache == nil || c.cache.IsMigrated(ctx, userID) {
		return nil
	}

	owner, err := c.cache.Owner(ctx)
	if err != nil {
		logging.Warn("cache owner unknown, not uploading local data", "user", userID, "error", err)
		return nil
	}
	if owner != "" {
		if owner != userID {
			logging.Info("cache mirrors another account, not uploading it", "user", userID)
		}
		return c.cache.MarkMigrated(ctx, userID)
	}

	subjects := c.cache.LoadSubjects(ctx)
	logs := c.cache.LoadLogs(ctx)
	if len(subjects) == 0 && len(logs) == 0 {
		return c.cache.MarkMigrated(ctx, userID)
	}

	logging.Info("uploading local data", "user", userID, "subjects", len(subjects), "logs", len(logs))

	ids := make(map[int64]int64, len(subjects))
	for _, s := range subjects {
		if err := c.checkGeneration(gen, "migrate"); err != nil {
			return err
		}
		created, err := repo.CreateSubject(ctx, s.Name, s.WeeklyGoal)
		if err != nil {
			return err
		}
		if s.IsArchived {
			if _, err := repo.SetSubjectArchived(ctx, created.ID, true); err != nil {
				return err
			}
		}
		ids[s.ID] = created.ID
	}

	// logs are stored newest first; upload oldest first
	skipped := 0
	for i := len(logs) - 1; i >= 0; i-- {
		if err := c.checkGeneration(gen, "migrate"); err != nil {
			return err
		}
		entry := logs[i]
		subjectID, ok := ids[entry.SubjectID]
		if !ok {
			skipped++
			continue
		}
		var createdAt time.Time
		if t, ok := stats.ParseInstant(entry.CreatedAtISO); ok {
			createdAt = t
		}
		if _, err := repo.CreateLog(ctx, subjectID, entry.DurationMinutes, createdAt); err != nil {
			return err
		}
	}
	if skipped > 0 {
		logging.Warn("skipped logs for unknown subjects", "count", skipped)
	}

	if err := c.cache.MarkMigrated(ctx, userID); err != nil {
		return errors.NewDatabaseError("mark migrated", err)
	}
	return nil
}

func (c *Controller) checkGeneration(gen uint64, op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return errors.NewStaleError(op)
	}
	return nil
}
