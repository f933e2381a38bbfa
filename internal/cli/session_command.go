package cli

import (
	"context"

	"clockedin/internal/api"
)

// SessionCommand handles login, logout and status
type SessionCommand struct {
	app *App
}

// NewSessionCommand creates a new session command handler
func NewSessionCommand(app *App) *SessionCommand {
	return &SessionCommand{app: app}
}

// Login signs in with an access token and loads the account's data
func (c *SessionCommand) Login(ctx context.Context, token string) error {
	status, err := c.app.api.SignIn(ctx, token)
	if err != nil {
		return c.app.errorHandler.Handle("sign in", err)
	}
	who := status.Email
	if who == "" {
		who = status.UserID
	}
	c.app.printf("Signed in as %s\n", accentStyle.Render(who))
	c.printStatus(status)
	return nil
}

// Logout signs out and switches back to local data
func (c *SessionCommand) Logout(ctx context.Context) error {
	status, err := c.app.api.SignOut(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("sign out", err)
	}
	c.app.println("Signed out")
	c.printStatus(status)
	return nil
}

// Status prints the current session and data source
func (c *SessionCommand) Status(ctx context.Context) error {
	c.printStatus(c.app.api.Status(ctx))
	return nil
}

func (c *SessionCommand) printStatus(s *api.Status) {
	c.app.printf("Mode:      %s\n", s.Mode)
	if s.SignedIn {
		c.app.printf("Signed in: yes (%s)\n", s.UserID)
		if s.Email != "" {
			c.app.printf("Email:     %s\n", s.Email)
		}
		if s.ExpiresAt != nil {
			c.app.printf("Expires:   %s\n", s.ExpiresAt.Local().Format(c.app.config.Time.DisplayFormat))
		}
	} else {
		c.app.println("Signed in: no")
	}
	c.app.printf("Data:      %d subjects, %d sessions\n", s.Subjects, s.Logs)
}
