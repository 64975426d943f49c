// Package api exposes the campaign composer over HTTP for the web UI.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Centro-Juridico-Internacional/campanero/internal/backend"
	"github.com/Centro-Juridico-Internacional/campanero/internal/catalog"
	"github.com/Centro-Juridico-Internacional/campanero/internal/config"
	"github.com/Centro-Juridico-Internacional/campanero/internal/history"
	"github.com/Centro-Juridico-Internacional/campanero/internal/metrics"
	"github.com/Centro-Juridico-Internacional/campanero/internal/session"
)

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     *config.Config
	sessions   *session.Store
	backend    *backend.Client
	history    *history.Store
	metrics    *metrics.Metrics
	logger     *slog.Logger

	// The CHECK catalog is fetched from the backend on first use so the
	// composer can start while the backend is still coming up.
	catMu sync.Mutex
	cat   *catalog.Catalog
}

// NewServer creates a new API server. The history store and metrics may be
// nil; the related endpoints and counters are skipped.
func NewServer(cfg *config.Config, sessions *session.Store, bc *backend.Client, hist *history.Store, m *metrics.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		sessions: sessions,
		backend:  bc,
		history:  hist,
		metrics:  m,
		logger:   logger.With("component", "api"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(metrics.HTTPMiddleware(s.metrics))
	}
	s.router.Use(cors.Handler(s.corsOptions()))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/checks", s.handleChecks)
		r.Get("/history", s.handleHistory)

		r.Post("/campaigns", s.handleCreateCampaign)
		r.Route("/campaigns/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetCampaign)
			r.Delete("/", s.handleDeleteCampaign)

			r.Put("/mensajes/count", s.handleSetMessageCount)
			r.Delete("/mensajes/{slot}", s.handleRemoveSlot)
			r.Put("/mensajes/{slot}/campo", s.handleUpdateField)
			r.Post("/mensajes/{slot}/variable", s.handleInsertVariable)
			r.Post("/mensajes/{slot}/upload", s.handleUpload)

			r.Put("/asunto", s.handleSetSubject)
			r.Post("/validar", s.handleValidate)
			r.Post("/preview", s.handlePreview)
			r.Post("/send", s.handleSend)
			r.Post("/edit", s.handleEdit)
			r.Post("/reset", s.handleReset)
		})
	})
}

func (s *Server) corsOptions() cors.Options {
	origins := s.config.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:         s.config.Server.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.Info("starting HTTP API server", "addr", s.config.Server.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// ensureCatalog returns the cached catalog, fetching it from the backend on
// first use.
func (s *Server) ensureCatalog(ctx context.Context) (*catalog.Catalog, error) {
	s.catMu.Lock()
	defer s.catMu.Unlock()
	if s.cat != nil {
		return s.cat, nil
	}
	cat, err := catalog.Load(ctx, s.backend)
	if err != nil {
		return nil, err
	}
	s.cat = cat
	s.logger.Info("catalog loaded", "checks", cat.Len())
	return cat, nil
}
