package cli

import (
	"context"
	"fmt"

	"clockedin/internal/api"
)

// LogCommand handles the log subcommands
type LogCommand struct {
	app *App
}

// NewLogCommand creates a new log command handler
func NewLogCommand(app *App) *LogCommand {
	return &LogCommand{app: app}
}

// List prints the newest sessions first
func (c *LogCommand) List(ctx context.Context, limit int) error {
	logs := c.app.api.ListLogs(ctx, limit)
	if len(logs) == 0 {
		c.app.println("No sessions logged yet")
		return nil
	}
	for _, l := range logs {
		c.app.println(logLine(l))
	}
	return nil
}

// Add logs a session. With preset > 0 the quick-pick duration is used,
// otherwise hours is parsed. rawSubject may be empty to use the default subject.
func (c *LogCommand) Add(ctx context.Context, rawSubject, hours string, preset int) error {
	var subjectID int64
	if rawSubject != "" {
		id, err := parseID("subject_id", rawSubject)
		if err != nil {
			return c.app.errorHandler.Handle("log session", err)
		}
		subjectID = id
	}

	var (
		view *api.LogView
		err  error
	)
	if preset > 0 {
		view, err = c.app.api.LogPreset(ctx, subjectID, preset)
	} else {
		view, err = c.app.api.LogHours(ctx, subjectID, hours)
	}
	if err != nil {
		return c.app.errorHandler.Handle("log session", err)
	}
	c.app.printf("Logged %s for %s (#%d)\n", formatHours(view.DurationMinutes), view.SubjectName, view.ID)
	return nil
}

// Edit changes the duration of a session
func (c *LogCommand) Edit(ctx context.Context, rawID, hours string) error {
	id, err := parseID("log_id", rawID)
	if err != nil {
		return c.app.errorHandler.Handle("edit session", err)
	}
	view, err := c.app.api.EditLog(ctx, id, hours)
	if err != nil {
		return c.app.errorHandler.Handle("edit session", err)
	}
	c.app.printf("Updated %s\n", logLine(*view))
	return nil
}

// Delete removes a session
func (c *LogCommand) Delete(ctx context.Context, rawID string) error {
	id, err := parseID("log_id", rawID)
	if err != nil {
		return c.app.errorHandler.Handle("delete session", err)
	}
	if err := c.app.api.DeleteLog(ctx, id); err != nil {
		return c.app.errorHandler.Handle("delete session", err)
	}
	c.app.printf("Deleted session #%d\n", id)
	return nil
}

func logLine(l api.LogView) string {
	return fmt.Sprintf("#%d  %s  %-20s %s", l.ID, mutedStyle.Render(l.CreatedAt), l.SubjectName, formatHours(l.DurationMinutes))
}
