package api

import (
	"context"
	"time"

	"clockedin/internal/auth"
	"clockedin/internal/domain"
	"clockedin/internal/state"
	"clockedin/internal/stats"
)

// Dashboard is everything the weekly overview shows.
type Dashboard struct {
	Mode                string                  `json:"mode"`
	Summary             stats.WeeklySummary     `json:"summary"`
	Streak              int                     `json:"streak"`
	Week                []stats.DayMark         `json:"week"`
	Ranked              []stats.SubjectProgress `json:"ranked"`
	TotalMinutesAllTime int                     `json:"totalMinutesAllTime"`
	RecentLogs          []LogView               `json:"recentLogs"`
}

// LogView is a log entry with its subject name resolved.
type LogView struct {
	domain.LogEntry
	SubjectName string  `json:"subjectName"`
	Hours       float64 `json:"hours"`
}

// SubjectView is a subject plus whether any log still points at it.
// Subjects with history can be archived but not deleted.
type SubjectView struct {
	domain.Subject
	HasLogs bool `json:"hasLogs"`
}

// SubjectGroups splits subjects into the active and archived lists.
type SubjectGroups struct {
	Active   []SubjectView `json:"active"`
	Archived []SubjectView `json:"archived"`
}

// Status describes the current session and data source.
type Status struct {
	Mode      string     `json:"mode"`
	SignedIn  bool       `json:"signedIn"`
	UserID    string     `json:"userId,omitempty"`
	Email     string     `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Hydrated  bool       `json:"hydrated"`
	Subjects  int        `json:"subjects"`
	Logs      int        `json:"logs"`
}

const recentLogCount = 5

func (a *apiImpl) Dashboard(ctx context.Context) (*Dashboard, error) {
	snap := a.controller.Snapshot()
	now := a.opts.Now()

	summary := stats.Summarize(snap.Subjects, snap.Logs, now)

	recent := snap.Logs
	if len(recent) > recentLogCount {
		recent = recent[:recentLogCount]
	}
	recentViews := make([]LogView, len(recent))
	for i, l := range recent {
		recentViews[i] = newLogView(l, snap.Subjects)
	}

	return &Dashboard{
		Mode:                snap.Mode.String(),
		Summary:             summary,
		Streak:              stats.Streak(snap.Logs, now),
		Week:                stats.WeekStrip(snap.Logs, now),
		Ranked:              stats.RankByHours(summary.Subjects),
		TotalMinutesAllTime: stats.TotalMinutesAllTime(snap.Logs),
		RecentLogs:          recentViews,
	}, nil
}

func newLogView(entry domain.LogEntry, subjects []domain.Subject) LogView {
	return LogView{
		LogEntry:    entry,
		SubjectName: domain.SubjectName(subjects, entry.SubjectID),
		Hours:       entry.Hours(),
	}
}

func newSubjectViews(subjects []domain.Subject, logs []domain.LogEntry) []SubjectView {
	views := make([]SubjectView, len(subjects))
	for i, s := range subjects {
		views[i] = SubjectView{Subject: s, HasLogs: domain.ReferencesSubject(logs, s.ID)}
	}
	return views
}

func newStatus(snap state.Snapshot, session *auth.Session) *Status {
	status := &Status{
		Mode:     snap.Mode.String(),
		Hydrated: snap.Hydrated,
		Subjects: len(snap.Subjects),
		Logs:     len(snap.Logs),
	}
	if session != nil {
		status.SignedIn = true
		status.UserID = session.UserID.String()
		status.Email = session.Email
		if !session.ExpiresAt.IsZero() {
			expires := session.ExpiresAt
			status.ExpiresAt = &expires
		}
	}
	return status
}
