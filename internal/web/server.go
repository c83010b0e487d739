// Package web provides the HTTP server and JSON API for the listing
// import service.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/estatehub/listimport/internal/core"
)

// Server is the HTTP server for the import API.
type Server struct {
	service     *core.Service
	router      *chi.Mux
	server      *http.Server
	maxFileSize int64
}

// Options tune server behavior. Zero values fall back to defaults.
type Options struct {
	// MaxFileSize caps the request body for upload endpoints in bytes.
	MaxFileSize int64

	// RequestTimeout bounds each request via chi's Timeout middleware.
	RequestTimeout time.Duration
}

// NewServer creates a Server around the import service.
func NewServer(service *core.Service, opts Options) *Server {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 50 * 1024 * 1024
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Minute
	}

	s := &Server{
		service:     service,
		router:      chi.NewRouter(),
		maxFileSize: opts.MaxFileSize,
	}
	s.setupMiddleware(opts.RequestTimeout)
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware(requestTimeout time.Duration) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(requestTimeout))
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Rule and location lookups
		r.Get("/rules", s.handleRules)
		r.Get("/countries", s.handleCountries)
		r.Get("/cities/search", s.handleCitySearch)
		r.Get("/cities/{country}", s.handleCities)
		r.Get("/postal/{country}/{code}", s.handlePostalLookup)

		// Validation and import
		r.Post("/validate", s.handleValidate)
		r.Post("/imports", s.handleImport)
		r.Get("/imports/{uploadID}", s.handleUploadStatus)
		r.Post("/imports/{uploadID}/rollback", s.handleRollback)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string, readTimeout, writeTimeout, idleTimeout time.Duration) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds hardening headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
