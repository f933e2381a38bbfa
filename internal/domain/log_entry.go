package domain

import "time"

// UnknownSubjectName labels a log whose subject no longer exists.
const UnknownSubjectName = "Unknown subject"

// PresetDurations are the quick-pick session lengths, in minutes.
var PresetDurations = []int{30, 45, 60, 90, 120}

// LogEntry records one study session. CreatedAtISO is the authoritative
// instant; CreatedAt is a display string and is never parsed.
type LogEntry struct {
	ID              int64  `json:"id"`
	SubjectID       int64  `json:"subjectId"`
	DurationMinutes int    `json:"durationMinutes"`
	CreatedAtISO    string `json:"createdAtISO"`
	CreatedAt       string `json:"createdAt"`
}

// NewLogEntry stamps a log at the given instant.
func NewLogEntry(subjectID int64, minutes int, at time.Time, displayFormat string) LogEntry {
	return LogEntry{
		SubjectID:       subjectID,
		DurationMinutes: minutes,
		CreatedAtISO:    FormatInstant(at),
		CreatedAt:       at.Format(displayFormat),
	}
}

// IsValid checks if the entry has valid data.
func (l LogEntry) IsValid() bool {
	return l.DurationMinutes > 0 && l.CreatedAtISO != ""
}

// Hours returns the duration in fractional hours.
func (l LogEntry) Hours() float64 {
	return float64(l.DurationMinutes) / 60
}

// FormatInstant renders t the way CreatedAtISO values are stored.
func FormatInstant(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// ReferencesSubject reports whether any log points at subjectID.
func ReferencesSubject(logs []LogEntry, subjectID int64) bool {
	for _, l := range logs {
		if l.SubjectID == subjectID {
			return true
		}
	}
	return false
}

// SubjectName resolves the display name for a log's subject.
func SubjectName(subjects []Subject, subjectID int64) string {
	if s, ok := FindSubject(subjects, subjectID); ok {
		return s.Name
	}
	return UnknownSubjectName
}
