// Package server exposes the API over HTTP with fiber.
package server

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"clockedin/internal/api"
	"clockedin/internal/config"
	"clockedin/internal/logging"
)

type Server struct {
	app      *fiber.App
	api      api.API
	validate *validator.Validate
	cfg      config.ServerConfig
}

// New builds the fiber app with middleware and routes registered.
func New(a api.API, cfg config.ServerConfig) *Server {
	s := &Server{
		api:      a,
		validate: validator.New(),
		cfg:      cfg,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "clockedin",
		DisableStartupMessage: true,
		ErrorHandler:          respondError,
	})

	origins := cfg.AllowOrigins
	if strings.TrimSpace(origins) == "" {
		origins = "*"
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	s.app.Use(requestLogger())

	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	r := s.app.Group("/api")

	r.Get("/dashboard", s.getDashboard)

	r.Get("/presets", s.getPresets)

	r.Get("/subjects", s.listSubjects)
	r.Get("/subjects/groups", s.listSubjectGroups)
	r.Post("/subjects", s.createSubject)
	r.Put("/subjects/:id", s.updateSubject)
	r.Delete("/subjects/:id", s.deleteSubject)
	r.Post("/subjects/:id/archive", s.archiveSubject)
	r.Post("/subjects/:id/unarchive", s.unarchiveSubject)

	r.Get("/logs", s.listLogs)
	r.Post("/logs", s.createLog)
	r.Put("/logs/:id", s.updateLog)
	r.Delete("/logs/:id", s.deleteLog)

	r.Get("/session", s.getSession)
	r.Post("/session", s.createSession)
	r.Delete("/session", s.deleteSession)

	s.app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "route not found")
	})
}

// Run serves on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info("http server listening", "addr", s.cfg.Addr)
		errCh <- s.app.Listen(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Info("http server shutting down")
		return s.app.ShutdownWithTimeout(5 * time.Second)
	}
}

// requestLogger logs one line per request.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		logging.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"ip", c.IP(),
			"duration", time.Since(start),
		)
		return err
	}
}
