// Package web serves the Data Endpoint: the decoded CSV object as JSON.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/csvtable/internal/config"
	"github.com/JonMunkholm/csvtable/internal/core"
	"github.com/JonMunkholm/csvtable/internal/history"
	"github.com/JonMunkholm/csvtable/internal/web/middleware"
)

// Server is the backend HTTP server.
type Server struct {
	service *core.Service
	history history.Lister
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *middleware.RateLimiter
}

// NewServer creates a Server. A nil hist serves an empty history.
func NewServer(service *core.Service, hist history.Lister, cfg *config.Config) *Server {
	if hist == nil {
		hist = history.Disabled{}
	}
	s := &Server{
		service: service,
		history: hist,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(middleware.SecurityHeaders(middleware.APIContentSecurityPolicy))
	s.router.Use(middleware.CORS(s.cfg.Server.CORSAllowedOrigins))

	if s.cfg.Rate.Enabled {
		s.limiter = middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.limiter.Handler)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security.RequireAPIKey, s.cfg.Security.APIKeys))

		r.Get("/data", s.handleData)
		r.Get("/history", s.handleHistory)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "not found", "REQ404")
	})
}

// Start listens on the configured address and serves until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	err := s.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests, waits for in-flight ones and stops the
// rate limiter sweep.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		defer s.limiter.Stop()
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
