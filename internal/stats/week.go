// Package stats computes the weekly aggregates and the daily streak shown
// on the dashboard. Every function is pure: the reference instant is passed
// in and its location defines "local" days.
package stats

import (
	"time"

	"clockedin/internal/domain"
)

// DayKeyLayout renders a local calendar day.
const DayKeyLayout = "2006-01-02"

// WeekBounds returns local midnight of the Monday of t's week and the
// following Monday. The range is half-open: [start, end).
func WeekBounds(t time.Time) (start, end time.Time) {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	start = time.Date(y, m, d-daysSinceMonday, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 0, 7)
	return start, end
}

// ParseInstant parses an ISO-8601 timestamp. ok is false when it cannot be parsed.
func ParseInstant(iso string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// InWeek reports whether iso falls in the week containing now.
// Unparseable timestamps are never in the week.
func InWeek(iso string, now time.Time) bool {
	t, ok := ParseInstant(iso)
	if !ok {
		return false
	}
	start, end := WeekBounds(now)
	return !t.Before(start) && t.Before(end)
}

// DateKey returns the local day key of t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyLayout)
}

// LogsInWeek keeps the entries that fall in now's week, preserving order.
func LogsInWeek(logs []domain.LogEntry, now time.Time) []domain.LogEntry {
	out := make([]domain.LogEntry, 0, len(logs))
	for _, l := range logs {
		if InWeek(l.CreatedAtISO, now) {
			out = append(out, l)
		}
	}
	return out
}

// DayMark is one cell of the Monday to Sunday activity strip.
type DayMark struct {
	Date   time.Time `json:"date"`
	Label  string    `json:"label"`
	Active bool      `json:"active"`
}

var dayLabels = [7]string{"M", "T", "W", "T", "F", "S", "S"}

// WeekStrip marks which days of now's week have at least one log.
func WeekStrip(logs []domain.LogEntry, now time.Time) []DayMark {
	days := activeDays(logs, now.Location())
	start, _ := WeekBounds(now)

	strip := make([]DayMark, 7)
	for i := range strip {
		day := start.AddDate(0, 0, i)
		strip[i] = DayMark{
			Date:   day,
			Label:  dayLabels[i],
			Active: days[day.Format(DayKeyLayout)],
		}
	}
	return strip
}

func activeDays(logs []domain.LogEntry, loc *time.Location) map[string]bool {
	days := make(map[string]bool, len(logs))
	for _, l := range logs {
		if t, ok := ParseInstant(l.CreatedAtISO); ok {
			days[DateKey(t, loc)] = true
		}
	}
	return days
}

// Streak counts consecutive local days with at least one log, ending
// today. A day without logs today means a streak of zero.
func Streak(logs []domain.LogEntry, now time.Time) int {
	days := activeDays(logs, now.Location())
	if len(days) == 0 {
		return 0
	}

	streak := 0
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	for days[day.Format(DayKeyLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
