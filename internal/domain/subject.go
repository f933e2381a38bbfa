package domain

import (
	"sort"
	"strings"
	"time"
)

// GoalPreset is a quick-pick weekly goal sized to a course's credit load.
type GoalPreset struct {
	Hours float64 `json:"hours"`
	Label string  `json:"label"`
}

// GoalPresets are the quick-pick weekly goals.
var GoalPresets = []GoalPreset{
	{Hours: 6, Label: "5 credits"},
	{Hours: 10, Label: "7.5 credits"},
	{Hours: 13, Label: "10 credits"},
}

// GoalPresetHours returns the hours of every goal preset.
func GoalPresetHours() []float64 {
	hours := make([]float64, len(GoalPresets))
	for i, p := range GoalPresets {
		hours[i] = p.Hours
	}
	return hours
}

// Subject is a named study category with a weekly hour target.
type Subject struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	WeeklyGoal float64   `json:"weeklyGoal"`
	IsArchived bool      `json:"isArchived"`
	CreatedAt  time.Time `json:"-"`
}

// NewSubject creates an active Subject. Name is trimmed.
func NewSubject(name string, weeklyGoal float64) Subject {
	return Subject{
		Name:       strings.TrimSpace(name),
		WeeklyGoal: weeklyGoal,
		IsArchived: false,
	}
}

// IsValid checks if the subject has valid data.
func (s Subject) IsValid() bool {
	return strings.TrimSpace(s.Name) != "" && s.WeeklyGoal >= 0
}

// HasGoal reports whether a weekly target is set. Zero means no goal.
func (s Subject) HasGoal() bool {
	return s.WeeklyGoal > 0
}

// IsActive is the inverse of IsArchived.
func (s Subject) IsActive() bool {
	return !s.IsArchived
}

// String returns the subject name for display purposes.
func (s Subject) String() string {
	return s.Name
}

// FindSubject returns the subject with id, if any.
func FindSubject(subjects []Subject, id int64) (Subject, bool) {
	for _, s := range subjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}

// ActiveSubjects filters out archived subjects, keeping order.
func ActiveSubjects(subjects []Subject) []Subject {
	active := make([]Subject, 0, len(subjects))
	for _, s := range subjects {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	return active
}

// ArchivedSubjects keeps only archived subjects, keeping order.
func ArchivedSubjects(subjects []Subject) []Subject {
	archived := make([]Subject, 0, len(subjects))
	for _, s := range subjects {
		if s.IsArchived {
			archived = append(archived, s)
		}
	}
	return archived
}

// SortByGoal returns a copy ordered by weekly goal, largest first, then by
// name ignoring case.
func SortByGoal(subjects []Subject) []Subject {
	sorted := make([]Subject, len(subjects))
	copy(sorted, subjects)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.WeeklyGoal != b.WeeklyGoal {
			return a.WeeklyGoal > b.WeeklyGoal
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return sorted
}
