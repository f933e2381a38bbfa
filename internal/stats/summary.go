package stats

import (
	"sort"
	"time"

	"clockedin/internal/domain"
)

// SubjectProgress is one subject's share of the current week.
type SubjectProgress struct {
	Subject         domain.Subject `json:"subject"`
	Minutes         int            `json:"minutes"`
	Hours           float64        `json:"hours"`
	ProgressPercent float64        `json:"progressPercent"`
}

// WeeklySummary aggregates the logs of the week containing the reference instant.
type WeeklySummary struct {
	WeekStart              time.Time         `json:"weekStart"`
	WeekEnd                time.Time         `json:"weekEnd"`
	LogsThisWeek           []domain.LogEntry `json:"logsThisWeek"`
	TotalMinutes           int               `json:"totalMinutes"`
	TotalHours             float64           `json:"totalHours"`
	TotalWeeklyGoal        float64           `json:"totalWeeklyGoal"`
	OverallProgressPercent float64           `json:"overallProgressPercent"`
	Subjects               []SubjectProgress `json:"subjects"`
	TopSubject             *SubjectProgress  `json:"topSubject"`
	HasData                bool              `json:"hasData"`
}

// Summarize computes the weekly aggregates. Archived subjects keep their
// per-subject figures but do not count toward the total goal.
func Summarize(subjects []domain.Subject, logs []domain.LogEntry, now time.Time) WeeklySummary {
	start, end := WeekBounds(now)
	week := LogsInWeek(logs, now)

	minutesBySubject := make(map[int64]int, len(subjects))
	total := 0
	for _, l := range week {
		total += l.DurationMinutes
		minutesBySubject[l.SubjectID] += l.DurationMinutes
	}

	var goal float64
	for _, s := range subjects {
		if !s.IsArchived {
			goal += s.WeeklyGoal
		}
	}

	summary := WeeklySummary{
		WeekStart:              start,
		WeekEnd:                end,
		LogsThisWeek:           week,
		TotalMinutes:           total,
		TotalHours:             float64(total) / 60,
		TotalWeeklyGoal:        goal,
		OverallProgressPercent: ProgressPercent(float64(total)/60, goal),
		Subjects:               make([]SubjectProgress, len(subjects)),
		HasData:                total > 0,
	}

	for i, s := range subjects {
		minutes := minutesBySubject[s.ID]
		hours := float64(minutes) / 60
		summary.Subjects[i] = SubjectProgress{
			Subject:         s,
			Minutes:         minutes,
			Hours:           hours,
			ProgressPercent: ProgressPercent(hours, s.WeeklyGoal),
		}
	}

	for i := range summary.Subjects {
		// strict comparison keeps the first subject on ties
		if summary.TopSubject == nil || summary.Subjects[i].Hours > summary.TopSubject.Hours {
			summary.TopSubject = &summary.Subjects[i]
		}
	}

	return summary
}

// ProgressPercent returns hours against goal as a percentage in [0, 100].
// A goal of zero or less means no goal and yields 0.
func ProgressPercent(hours, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	pct := hours / goal * 100
	switch {
	case pct > 100:
		return 100
	case pct < 0:
		return 0
	default:
		return pct
	}
}

// RankByHours orders subjects by hours logged this week, most first.
// Equal hours keep their original order.
func RankByHours(progress []SubjectProgress) []SubjectProgress {
	ranked := make([]SubjectProgress, len(progress))
	copy(ranked, progress)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Hours > ranked[j].Hours
	})
	return ranked
}

// TotalMinutesAllTime sums every log regardless of date.
func TotalMinutesAllTime(logs []domain.LogEntry) int {
	total := 0
	for _, l := range logs {
		total += l.DurationMinutes
	}
	return total
}
