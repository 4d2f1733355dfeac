// Package ui serves the browser table view. Each page load fetches the
// table through the API client and renders the requested view state.
package ui

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/csvtable/internal/apiclient"
	"github.com/JonMunkholm/csvtable/internal/config"
	"github.com/JonMunkholm/csvtable/internal/web/middleware"
)

// ContentSecurityPolicy allows the inline style and width script.
const ContentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline'; " +
	"style-src 'self' 'unsafe-inline'; frame-ancestors 'none'"

// Title is the page heading.
const Title = "CSV Table"

// Fetcher loads the table. *apiclient.Client implements it.
type Fetcher interface {
	FetchTableData(ctx context.Context) apiclient.Result
}

// Server is the browser table view server.
type Server struct {
	client Fetcher
	cfg    *config.ClientConfig
	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server rendering data from client.
func NewServer(client Fetcher, cfg *config.ClientConfig) *Server {
	s := &Server{
		client: client,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:              cfg.UI.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.API.Timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.SecurityHeaders(ContentSecurityPolicy))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleTable)
	s.router.Get("/export.csv", s.handleExport)
	s.router.Get("/health", s.handleHealth)
}

// Start listens on the configured address and serves until Shutdown.
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

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
