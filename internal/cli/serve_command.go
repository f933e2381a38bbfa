package cli

import (
	"context"
	"errors"

	"clockedin/internal/logging"
	"clockedin/internal/server"
)

// ServeCommand runs the HTTP API until the context ends
type ServeCommand struct {
	app     *App
	backend *Backend
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(app *App, backend *Backend) *ServeCommand {
	return &ServeCommand{app: app, backend: backend}
}

// Execute serves until ctx is cancelled
func (c *ServeCommand) Execute(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.backend.Watch != nil {
		go func() {
			if err := c.backend.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error("session watcher stopped", "error", err)
			}
		}()
	}

	srv := server.New(c.app.api, c.app.config.Server)
	c.app.printf("Serving on http://%s\n", c.app.config.Server.Addr)
	return srv.Run(ctx)
}
