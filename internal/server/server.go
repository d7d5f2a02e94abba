// Package server exposes the estimation workflow over HTTP for a browser form.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/grass-estimator/internal/config"
	"github.com/sells-group/grass-estimator/internal/estimator"
	"github.com/sells-group/grass-estimator/internal/notify"
	"github.com/sells-group/grass-estimator/internal/pricing"
	"github.com/sells-group/grass-estimator/internal/request"
	"github.com/sells-group/grass-estimator/internal/snapshot"
	"github.com/sells-group/grass-estimator/pkg/places"
)

// Deps are the collaborators the server wires into each session.
type Deps struct {
	Snapshots snapshot.Store
	Pricing   pricing.Loader
	Submitter estimator.Submitter
	Builder   *request.Builder
	Notifier  notify.Notifier
	Places    places.Client
	Formatter *pricing.Formatter
}

// Server routes requests to per-session workflow machines.
type Server struct {
	deps      Deps
	cfg       config.ServerConfig
	sessions  *registry
	limiter   *rate.Limiter
	maxUpload int64
	router    chi.Router
}

// New builds the router. Zero limiter settings fall back to one upload per
// second with a burst of three.
func New(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Builder == nil {
		deps.Builder = request.NewBuilder("")
	}

	rps, burst := cfg.UploadRPS, cfg.UploadBurst
	if rps <= 0 {
		rps = 1
	}
	if burst < 1 {
		burst = 3
	}
	maxUpload := cfg.MaxUploadMB << 20
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}

	s := &Server{
		deps:      deps,
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		maxUpload: maxUpload,
	}
	s.sessions = newRegistry(s.newMachine)
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sweep tears down sessions idle for longer than maxIdle and returns how many
// were removed.
func (s *Server) Sweep(maxIdle time.Duration) int {
	return s.sessions.sweep(maxIdle)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/address/suggest", s.handleSuggest)
	r.Get("/previews/{handle}", s.handlePreview)

	r.Post("/sessions", s.handleCreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(s.sessionID)

		r.Get("/pricing", s.handlePricing)
		r.Post("/quote", s.handleQuote)
		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)
		r.With(s.throttle).Post("/estimate", s.handleEstimate)
		r.Get("/state", s.handleState)
		r.Post("/reset", s.handleReset)
		r.Delete("/", s.handleDeleteSession)
	})

	return r
}
