// Package server exposes the triage engine over HTTP.
package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/mkrasilnikov/minusflow/internal/engine"
	"github.com/mkrasilnikov/minusflow/internal/service"
)

// Server wraps the Fiber app and its collaborators.
type Server struct {
	App     *fiber.App
	engine  *engine.Engine
	history service.HistoryStore
	logger  *slog.Logger
}

// New creates a server with middleware and routes configured. The history
// store is optional; without it analyses are not persisted.
func New(eng *engine.Engine, history service.HistoryStore, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName: "minusflow",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return jsonError(c, code, message)
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{App: app, engine: eng, history: history, logger: log}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.App.Get("/health", s.handleHealth)

	api := s.App.Group("/api/v1")
	api.Post("/analyze", s.handleAnalyze)
	api.Post("/wordfilter", s.handleWordFilter)
	api.Post("/export", s.handleExport)
	api.Get("/analyses", s.handleListAnalyses)
	api.Get("/analyses/:id", s.handleGetAnalysis)
}

// Listen starts the server on addr and blocks until shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("starting HTTP server", "addr", addr)
	return s.App.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
