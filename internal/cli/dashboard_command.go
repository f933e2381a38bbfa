package cli

import (
	"context"
	"fmt"

	"clockedin/internal/api"
)

// DashboardCommand prints the weekly overview
type DashboardCommand struct {
	app *App
}

// NewDashboardCommand creates a new dashboard command handler
func NewDashboardCommand(app *App) *DashboardCommand {
	return &DashboardCommand{app: app}
}

// Execute runs the dashboard command
func (c *DashboardCommand) Execute(ctx context.Context, args []string) error {
	d, err := c.app.api.Dashboard(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("load dashboard", err)
	}
	c.render(d)
	return nil
}

func (c *DashboardCommand) render(d *api.Dashboard) {
	a := c.app
	width := a.config.Display.BarWidth
	s := d.Summary

	a.printf("%s %s  %s\n",
		titleStyle.Render("This week"),
		mutedStyle.Render(fmt.Sprintf("(%s - %s)", s.WeekStart.Format("Jan 2"), s.WeekEnd.AddDate(0, 0, -1).Format("Jan 2"))),
		mutedStyle.Render("["+d.Mode+"]"))

	if s.TotalWeeklyGoal > 0 {
		a.printf("%s of %gh goal  %s %3.0f%%\n",
			formatHours(s.TotalMinutes), s.TotalWeeklyGoal, progressBar(s.OverallProgressPercent, width), s.OverallProgressPercent)
	} else {
		a.printf("%s logged\n", formatHours(s.TotalMinutes))
	}

	a.printf("Streak: %s   %s\n", pluralDays(d.Streak), weekStrip(d.Week))

	if !s.HasData {
		a.println(mutedStyle.Render("No study time logged this week yet."))
	} else if s.TopSubject != nil {
		a.printf("Top subject: %s (%s)\n", accentStyle.Render(s.TopSubject.Subject.Name), formatHours(s.TopSubject.Minutes))
	}

	if len(d.Ranked) > 0 {
		a.println()
		a.println(titleStyle.Render("Subjects"))
		for _, p := range d.Ranked {
			line := fmt.Sprintf("  %-20s %6s", p.Subject.Name, formatHours(p.Minutes))
			if p.Subject.HasGoal() {
				line += fmt.Sprintf(" / %-10s %s %3.0f%%", formatGoal(p.Subject.WeeklyGoal), progressBar(p.ProgressPercent, width), p.ProgressPercent)
			}
			if p.Subject.IsArchived {
				line += " " + mutedStyle.Render("[archived]")
			}
			a.println(line)
		}
	}

	if len(d.RecentLogs) > 0 {
		a.println()
		a.println(titleStyle.Render("Recent"))
		for _, l := range d.RecentLogs {
			a.printf("  %s  %-20s %s\n", l.CreatedAt, l.SubjectName, formatHours(l.DurationMinutes))
		}
	}

	a.println()
	a.printf("All time: %s\n", formatHours(d.TotalMinutesAllTime))
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
