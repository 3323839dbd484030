// Package api serves the studyhub HTTP API.
package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/studyhub/internal/auth"
	"github.com/p-blackswan/studyhub/internal/calendar"
	"github.com/p-blackswan/studyhub/internal/health"
	"github.com/p-blackswan/studyhub/internal/metrics"
	"github.com/p-blackswan/studyhub/internal/store"
)

const defaultListenAddr = ":8080"

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	ListenAddr  string
	CORSOrigins string
	RateLimit   RateLimitConfig
}

// Deps are the collaborators the handlers need. Checker and Metrics may be
// nil; Location defaults to UTC and Now to time.Now.
type Deps struct {
	Store    *store.Store
	Verifier *auth.Verifier
	Checker  *health.Checker
	Metrics  *metrics.Metrics
	Location *time.Location
	Now      func() time.Time
}

// Server is the API Fiber application.
type Server struct {
	app    *fiber.App
	cancel context.CancelFunc
	logger zerolog.Logger
	config ServerConfig
}

// NewServer creates and configures the API server.
func NewServer(cfg ServerConfig, deps Deps, logger zerolog.Logger) *Server {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadBufferSize:        8192,
		WriteBufferSize:       8192,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		app:    app,
		cancel: cancel,
		logger: logger.With().Str("component", "api_server").Logger(),
		config: cfg,
	}

	s.setupMiddleware(ctx, cfg, deps)
	s.setupRoutes(deps)

	return s
}

func (s *Server) setupMiddleware(ctx context.Context, cfg ServerConfig, deps Deps) {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	s.app.Use(requestIDMiddleware)
	s.app.Use(accessLog(deps.Metrics, s.logger))

	if cfg.CORSOrigins != "" {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
			AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
		}))
	}

	if cfg.RateLimit.RPS > 0 {
		s.app.Use(NewRateLimitMiddleware(ctx, cfg.RateLimit))
	}

	s.app.Use(NewAuthMiddleware(deps.Verifier, s.logger))
}

func (s *Server) setupRoutes(deps Deps) {
	checker := deps.Checker
	if checker == nil {
		checker = health.NewChecker(s.logger)
	}
	s.app.Get("/healthz", adaptor.HTTPHandlerFunc(health.LivenessHandler()))
	s.app.Get("/readyz", adaptor.HTTPHandlerFunc(checker.ReadinessHandler()))
	if deps.Metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	agg := calendar.NewAggregator(calendar.StoreSources(deps.Store), deps.Location, s.logger)
	cal := &CalendarHandlers{agg: agg, metrics: deps.Metrics, now: deps.Now, logger: s.logger}
	events := &EventHandlers{store: deps.Store, loc: deps.Location, now: deps.Now, logger: s.logger}
	projects := &ProjectHandlers{store: deps.Store, logger: s.logger}
	tasks := &TaskHandlers{store: deps.Store, loc: deps.Location, now: deps.Now, logger: s.logger}

	routes := s.app.Group("/api")

	routes.Get("/calendar", cal.Items)
	routes.Get("/calendar/month", cal.Month)
	routes.Get("/calendar.ics", cal.ICS)

	routes.Get("/events", events.ListPersonal)
	routes.Post("/events", events.CreatePersonal)
	routes.Patch("/events/:id", events.UpdatePersonal)
	routes.Delete("/events/:id", events.DeletePersonal)

	routes.Get("/projects", projects.List)
	routes.Post("/projects", projects.Create)
	routes.Post("/projects/join", projects.Join)
	routes.Get("/projects/:id", projects.Get)
	routes.Post("/projects/:id/leave", projects.Leave)
	routes.Delete("/projects/:id/members/:userId", projects.RemoveMember)

	routes.Get("/projects/:id/events", events.ListProject)
	routes.Post("/projects/:id/events", events.CreateProject)
	routes.Patch("/projects/:id/events/:eventId", events.UpdateProject)
	routes.Delete("/projects/:id/events/:eventId", events.DeleteProject)

	routes.Get("/projects/:id/tasks", tasks.List)
	routes.Post("/projects/:id/tasks", tasks.Create)
	routes.Get("/tasks/due", tasks.Due)
	routes.Patch("/tasks/:taskId", tasks.Update)
	routes.Delete("/tasks/:taskId", tasks.Delete)
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start() error {
	addr := s.config.ListenAddr
	if addr == "" {
		addr = defaultListenAddr
	}
	s.logger.Info().Str("addr", addr).Msg("api server starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("api server shutting down")
	s.cancel()
	return s.app.ShutdownWithContext(ctx)
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}
