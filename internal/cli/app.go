package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"clockedin/internal/api"
	"clockedin/internal/config"
	"clockedin/internal/errors"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// Backend is what commands run against.
type Backend struct {
	API api.API
	// Watch follows session changes. Only long-running commands use it.
	Watch func(ctx context.Context) error
	Close func() error
}

// Bootstrap opens the stores described by cfg. longRunning is set for
// commands that keep running, such as serve.
type Bootstrap func(ctx context.Context, cfg *config.Config, longRunning bool) (*Backend, error)

// App carries what every command handler needs
type App struct {
	api          api.API
	config       *config.Config
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewApp creates a CLI application writing to stdout
func NewApp(a api.API, cfg *config.Config) *App {
	return NewAppWithOutput(a, cfg, os.Stdout)
}

// NewAppWithOutput creates a CLI application writing to out
func NewAppWithOutput(a api.API, cfg *config.Config, out io.Writer) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &App{
		api:          a,
		config:       cfg,
		out:          out,
		errorHandler: NewErrorHandler(),
	}
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...interface{}) {
	fmt.Fprintln(a.out, args...)
}

// parseID parses a positive numeric id argument
func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInputError(field, raw, "must be a positive number")
	}
	return id, nil
}
