// Package server exposes sessions over a JSON HTTP API for a browser front end.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dekic648/segmentator/internal/dataset"
	"github.com/Dekic648/segmentator/internal/store"
	"github.com/Dekic648/segmentator/internal/survey"
)

// defaultMaxUpload caps multipart uploads at 32 MiB.
const defaultMaxUpload = 32 << 20

// Options configures a Server.
type Options struct {
	Classifier  survey.ClassifierOptions
	Dataset     dataset.Options
	CORSOrigins []string
	// MaxUploadBytes limits dataset uploads; 0 means defaultMaxUpload.
	MaxUploadBytes int64
}

// Server is the HTTP server for survey sessions.
type Server struct {
	store  store.Store
	opt    Options
	locks  *sessionLocks
	router *chi.Mux
	server *http.Server
}

// New creates a Server backed by st.
func New(st store.Store, opt Options) *Server {
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = defaultMaxUpload
	}
	s := &Server{
		store:  st,
		opt:    opt,
		locks:  newSessionLocks(),
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opt.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)

		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)

			r.Put("/types/{column}", s.handleOverrideType)

			r.Get("/groups/{kind}", s.handleListGroups)
			r.Post("/groups/{kind}", s.handleCreateGroup)
			r.Delete("/groups/{kind}/{group}", s.handleDeleteGroup)

			r.Get("/charts", s.handleCharts)
		})
	})
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	slog.Info("server starting", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
