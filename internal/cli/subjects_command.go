package cli

import (
	"context"
	"fmt"
	"strings"

	"clockedin/internal/api"
	"clockedin/internal/domain"
	"clockedin/internal/errors"
)

// SubjectsCommand handles the subjects subcommands
type SubjectsCommand struct {
	app *App
}

// NewSubjectsCommand creates a new subjects command handler
func NewSubjectsCommand(app *App) *SubjectsCommand {
	return &SubjectsCommand{app: app}
}

// List prints active subjects, biggest weekly goal first. Archived
// subjects follow in their own section when includeArchived is set.
func (c *SubjectsCommand) List(ctx context.Context, includeArchived bool) error {
	groups := c.app.api.GroupSubjects(ctx)
	if len(groups.Active) == 0 && len(groups.Archived) == 0 {
		c.app.println("No subjects yet. Add one with: clockedin subjects add <name> [weekly goal]")
		return nil
	}

	c.app.println(titleStyle.Render("Active"))
	if len(groups.Active) == 0 {
		c.app.println(mutedStyle.Render("No active subjects"))
	}
	for _, v := range groups.Active {
		c.app.println(subjectViewLine(v))
	}

	if !includeArchived {
		if n := len(groups.Archived); n > 0 {
			c.app.println(mutedStyle.Render(fmt.Sprintf("%d archived, show with --all", n)))
		}
		return nil
	}
	c.app.println()
	c.app.println(titleStyle.Render("Archived"))
	if len(groups.Archived) == 0 {
		c.app.println(mutedStyle.Render("No archived subjects"))
	}
	for _, v := range groups.Archived {
		c.app.println(subjectViewLine(v))
	}
	return nil
}

// Add creates a subject. goal is free text hours per week and may be empty.
// A positive preset picks one of the quick-pick weekly goals instead.
func (c *SubjectsCommand) Add(ctx context.Context, name, goal string, preset float64) error {
	var (
		subject *domain.Subject
		err     error
	)
	switch {
	case preset != 0 && goal != "":
		err = errors.NewValidationError("Give either a weekly goal or --preset, not both", nil)
	case preset != 0:
		subject, err = c.app.api.AddSubjectPreset(ctx, name, preset)
	default:
		subject, err = c.app.api.AddSubject(ctx, name, goal)
	}
	if err != nil {
		return c.app.errorHandler.Handle("add subject", err)
	}
	c.app.printf("Added %s\n", subjectLine(*subject))
	return nil
}

// Edit renames a subject and sets its goal
func (c *SubjectsCommand) Edit(ctx context.Context, rawID, name, goal string) error {
	id, err := parseID("subject_id", rawID)
	if err != nil {
		return c.app.errorHandler.Handle("edit subject", err)
	}
	subject, err := c.app.api.EditSubject(ctx, id, name, goal)
	if err != nil {
		return c.app.errorHandler.Handle("edit subject", err)
	}
	c.app.printf("Updated %s\n", subjectLine(*subject))
	return nil
}

// SetArchived archives or restores a subject
func (c *SubjectsCommand) SetArchived(ctx context.Context, rawID string, archived bool) error {
	op := "archive subject"
	if !archived {
		op = "unarchive subject"
	}
	id, err := parseID("subject_id", rawID)
	if err != nil {
		return c.app.errorHandler.Handle(op, err)
	}

	var subject *domain.Subject
	if archived {
		subject, err = c.app.api.ArchiveSubject(ctx, id)
	} else {
		subject, err = c.app.api.UnarchiveSubject(ctx, id)
	}
	if err != nil {
		return c.app.errorHandler.Handle(op, err)
	}

	if archived {
		c.app.printf("Archived %s\n", subject.Name)
	} else {
		c.app.printf("Restored %s\n", subject.Name)
	}
	return nil
}

// Delete removes a subject that has no logged sessions
func (c *SubjectsCommand) Delete(ctx context.Context, rawID string) error {
	id, err := parseID("subject_id", rawID)
	if err != nil {
		return c.app.errorHandler.Handle("delete subject", err)
	}
	if err := c.app.api.DeleteSubject(ctx, id); err != nil {
		return c.app.errorHandler.Handle("delete subject", err)
	}
	c.app.printf("Deleted subject #%d\n", id)
	return nil
}

func subjectViewLine(v api.SubjectView) string {
	line := subjectLine(v.Subject)
	if v.HasLogs {
		line += "  " + mutedStyle.Render("has history, archive instead of deleting")
	}
	return line
}

// goalPresetsText lists the weekly goal presets for help output.
func goalPresetsText() string {
	parts := make([]string, len(domain.GoalPresets))
	for i, p := range domain.GoalPresets {
		parts[i] = fmt.Sprintf("%s = %s", formatGoal(p.Hours), p.Label)
	}
	return strings.Join(parts, ", ")
}

func subjectLine(s domain.Subject) string {
	line := fmt.Sprintf("#%d  %s  %s", s.ID, s.Name, mutedStyle.Render(formatGoal(s.WeeklyGoal)))
	if s.IsArchived {
		line += "  " + mutedStyle.Render("[archived]")
	}
	return line
}
