// Package api provides the HTTP API server and handlers for Cuepoint.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cuepointapp/cuepoint-server/internal/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	services   *Services
	sseManager *sse.Manager
	sseHandler *sse.Handler
	askLimiter askLimiter
	router     *chi.Mux
	api        huma.API
	opts       Options
	logger     *slog.Logger
}

type askLimiter interface {
	Allow(key string) bool
}

// NewServer creates a new HTTP server with all routes configured.
// sseManager may be nil, in which case the events stream is not mounted.
func NewServer(services *Services, sseManager *sse.Manager, opts Options, logger *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		services:   services,
		sseManager: sseManager,
		router:     chi.NewRouter(),
		opts:       opts,
		logger:     logger,
	}
	if opts.AskLimiter != nil {
		s.askLimiter = opts.AskLimiter
	}
	if sseManager != nil {
		s.sseHandler = sse.NewHandler(sseManager, logger)
	}

	s.setupMiddleware()

	RegisterErrorHandler()
	s.api = humachi.New(s.router, huma.DefaultConfig("Cuepoint API", opts.Version))

	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}))
}

// setupRoutes registers every route.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerVideoRoutes()
	s.registerAskRoutes()
	s.registerSessionRoutes()

	// SSE is a raw stream, so it bypasses huma.
	if s.sseHandler != nil {
		s.router.Get(eventsPath, s.sseHandler.ServeHTTP)
	}
}
