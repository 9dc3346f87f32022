package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhibongale/presto/internal/archive"
	"github.com/abhibongale/presto/internal/config"
	"github.com/abhibongale/presto/internal/store"
	"github.com/abhibongale/presto/internal/tracker"
)

// Server is the stage-monitor REST API server. It fronts the in-process
// tracker for live executions and the store for finalized summaries.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	tracker   *tracker.Tracker
	store     store.Store
	archiver  archive.Archiver
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithArchiver sets the archiver that receives finalized summaries.
func WithArchiver(a archive.Archiver) Option {
	return func(s *Server) {
		s.archiver = a
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, tr *tracker.Tracker, st store.Store, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		tracker:   tr,
		store:     st,
		archiver:  archive.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	// API routes (JSON)
	r.Route("/api/v1", func(r chi.Router) {
		// Discovery
		r.Get("/", s.handleDiscovery)

		// Health
		r.Get("/health", s.handleHealth)

		// Live stage executions
		r.Route("/stages", func(r chi.Router) {
			r.Get("/", s.handleListStages)
			r.Post("/", s.handleRegisterStage)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/summary", s.handleGetSummary)
				r.Post("/state", s.handleTransitionState)
				r.Get("/tasks", s.handleListTaskReports)
				r.Post("/tasks", s.handleIngestTaskReport)
				r.Post("/scheduling", s.handleRecordScheduling)
				r.Post("/metrics", s.handleRecordMetric)
			})
		})

		// Finalized summaries
		r.Get("/summaries", s.handleListArchivedSummaries)
	})
}
