package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"clockedin/internal/api"
	"clockedin/internal/auth"
	"clockedin/internal/cache"
	"clockedin/internal/cli"
	"clockedin/internal/config"
	"clockedin/internal/domain"
	"clockedin/internal/logging"
	"clockedin/internal/repository"
	"clockedin/internal/repository/dbutil"
	"clockedin/internal/repository/postgres"
	"clockedin/internal/repository/sqlite"
	"clockedin/internal/state"
)

// BackendFactory wires the stores, session manager and state controller
// for the current environment.
type BackendFactory struct {
	env config.Environment
}

// NewBackendFactory creates a new backend factory for the given environment
func NewBackendFactory(env config.Environment) *BackendFactory {
	return &BackendFactory{env: env}
}

// Open builds a backend. A remote that cannot be reached leaves the app
// usable on the local cache; a cache that cannot be opened is fatal.
func (f *BackendFactory) Open(ctx context.Context, cfg *config.Config, longRunning bool) (*cli.Backend, error) {
	path := cfg.CachePathFor(f.env)
	store, err := sqlite.Open(ctx, path, sqlite.Options{
		QueryTimeout:   cfg.Cache.QueryTimeout,
		WriteTimeout:   cfg.Cache.WriteTimeout,
		DirPermissions: os.FileMode(cfg.Cache.DirPermissions),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %s: %w", path, err)
	}
	logging.Debug("cache opened", "path", path, "env", f.env)

	c := cache.New(store)
	local := repository.NewLocal(c, cfg.Time.DisplayFormat, nil)

	remote, remoteFor := f.openRemote(ctx, cfg)

	manager := auth.NewManager(cfg.Auth.JWTSecret, auth.NewKeyringStore(cfg.Auth.KeyringService))
	controller := state.New(local, c, remoteFor, state.Options{
		MigrateOnSignIn: cfg.Sync.MigrateOnSignIn,
		HydrateTimeout:  cfg.Remote.QueryTimeout,
	})

	// A failed hydration keeps the local data on screen; later commands retry.
	if err := controller.HandleSession(ctx, manager.Restore()); err != nil {
		logging.Warn("initial hydration failed", "error", err)
	}

	a := api.New(controller, manager, cfg, api.Options{HydrateOnSessionChange: !longRunning})

	return &cli.Backend{
		API: a,
		Watch: func(ctx context.Context) error {
			events, unsubscribe := manager.Subscribe()
			defer unsubscribe()
			return controller.Watch(ctx, events)
		},
		Close: func() error {
			var errs []error
			if remote != nil {
				errs = append(errs, remote.Close())
			}
			errs = append(errs, store.Close())
			return errors.Join(errs...)
		},
	}, nil
}

// openRemote connects to the remote database when one is configured. The
// returned factory is nil when there is no usable remote.
func (f *BackendFactory) openRemote(ctx context.Context, cfg *config.Config) (*postgres.Store, state.RemoteFactory) {
	if !cfg.RemoteEnabled() {
		return nil, nil
	}

	ctx, cancel := dbutil.WithTimeout(ctx, cfg.Remote.QueryTimeout)
	defer cancel()

	pg, err := postgres.Open(ctx, cfg.Remote.URL, postgres.Options{
		QueryTimeout: cfg.Remote.QueryTimeout,
		MaxOpenConns: cfg.Remote.MaxOpenConns,
	})
	if err != nil {
		logging.Warn("remote database unavailable, staying local", "error", err)
		return nil, nil
	}

	mapper := domain.NewMapper(cfg.Time.DisplayFormat, time.Local)
	return pg, func(s *auth.Session) repository.Repository {
		return repository.NewRemote(pg, s.UserID, mapper)
	}
}
