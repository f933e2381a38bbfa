package domain

import (
	"time"

	"github.com/google/uuid"

	"clockedin/internal/repository/postgres"
)

// SubjectMapper handles conversion between domain and remote Subject rows.
type SubjectMapper struct{}

// NewSubjectMapper creates a new SubjectMapper instance.
func NewSubjectMapper() *SubjectMapper {
	return &SubjectMapper{}
}

// ToDatabase converts a domain Subject to a row owned by userID.
func (m *SubjectMapper) ToDatabase(subject Subject, userID uuid.UUID) postgres.SubjectRow {
	return postgres.SubjectRow{
		ID:         subject.ID,
		UserID:     userID,
		Name:       subject.Name,
		WeeklyGoal: subject.WeeklyGoal,
		IsArchived: subject.IsArchived,
		CreatedAt:  subject.CreatedAt,
	}
}

// FromDatabase converts a remote row to a domain Subject.
func (m *SubjectMapper) FromDatabase(row postgres.SubjectRow) Subject {
	return Subject{
		ID:         row.ID,
		Name:       row.Name,
		WeeklyGoal: row.WeeklyGoal,
		IsArchived: row.IsArchived,
		CreatedAt:  row.CreatedAt,
	}
}

// FromDatabaseSlice converts remote rows to domain Subjects.
func (m *SubjectMapper) FromDatabaseSlice(rows []*postgres.SubjectRow) []Subject {
	subjects := make([]Subject, len(rows))
	for i, row := range rows {
		subjects[i] = m.FromDatabase(*row)
	}
	return subjects
}

// LogEntryMapper handles conversion between domain and remote log rows.
// Display strings are rendered in loc with the configured layout.
type LogEntryMapper struct {
	displayFormat string
	loc           *time.Location
}

// NewLogEntryMapper creates a new LogEntryMapper instance.
func NewLogEntryMapper(displayFormat string, loc *time.Location) *LogEntryMapper {
	if loc == nil {
		loc = time.Local
	}
	return &LogEntryMapper{displayFormat: displayFormat, loc: loc}
}

// FromDatabase converts a remote row to a domain LogEntry.
func (m *LogEntryMapper) FromDatabase(row postgres.LogRow) LogEntry {
	return LogEntry{
		ID:              row.ID,
		SubjectID:       row.SubjectID,
		DurationMinutes: row.DurationMinutes,
		CreatedAtISO:    FormatInstant(row.CreatedAt),
		CreatedAt:       row.CreatedAt.In(m.loc).Format(m.displayFormat),
	}
}

// FromDatabaseSlice converts remote rows to domain LogEntries.
func (m *LogEntryMapper) FromDatabaseSlice(rows []*postgres.LogRow) []LogEntry {
	logs := make([]LogEntry, len(rows))
	for i, row := range rows {
		logs[i] = m.FromDatabase(*row)
	}
	return logs
}

// Mapper groups the mappers used by the remote repository.
type Mapper struct {
	Subject  *SubjectMapper
	LogEntry *LogEntryMapper
}

// NewMapper creates a new Mapper instance.
func NewMapper(displayFormat string, loc *time.Location) *Mapper {
	return &Mapper{
		Subject:  NewSubjectMapper(),
		LogEntry: NewLogEntryMapper(displayFormat, loc),
	}
}
