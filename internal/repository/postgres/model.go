package postgres

import (
	"time"

	"github.com/google/uuid"
)

// SubjectRow mirrors a row of the subjects table
type SubjectRow struct {
	ID         int64
	UserID     uuid.UUID
	Name       string
	WeeklyGoal float64
	IsArchived bool
	CreatedAt  time.Time
}

// LogRow mirrors a row of the logs table
type LogRow struct {
	ID              int64
	UserID          uuid.UUID
	SubjectID       int64
	DurationMinutes int
	CreatedAt       time.Time
}
