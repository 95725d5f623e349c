package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/contentpilot/contentpilot/internal/content"
	"github.com/contentpilot/contentpilot/internal/dashboard"
	"github.com/contentpilot/contentpilot/internal/notify"
	"github.com/contentpilot/contentpilot/internal/safety"
	"github.com/contentpilot/contentpilot/internal/workflow"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server is the contentpilot REST server.
type Server struct {
	cfg        Config
	router     chi.Router
	httpServer *http.Server
}

// Deps are the components the server exposes over HTTP.
type Deps struct {
	Store     *content.Store
	Workflow  *workflow.Workflow
	Safety    *safety.Controller
	Notify    *notify.Store
	Dashboard *dashboard.Dashboard
}

// New creates a server and registers all feature routes.
func New(cfg Config, deps Deps) *Server {
	s := &Server{cfg: cfg}
	s.router = s.buildRouter(deps)
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	content.RegisterRoutes(r, deps.Store)
	workflow.RegisterRoutes(r, deps.Workflow)
	safety.RegisterRoutes(r, deps.Safety)
	notify.RegisterRoutes(r, deps.Notify)
	deps.Dashboard.RegisterRoutes(r)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("contentpilot server listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
