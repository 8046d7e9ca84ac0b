package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tkingovr/borderguard/internal/batch"
	"github.com/tkingovr/borderguard/internal/metrics"
	"github.com/tkingovr/borderguard/internal/reference"
)

// maxBodyBytes bounds decision request bodies.
const maxBodyBytes = 8 << 20

// Server is the decision API HTTP server.
type Server struct {
	router  chi.Router
	logger  *slog.Logger
	runner  *batch.Runner
	metrics *metrics.Metrics
	addr    string

	// reference is the default reference data for requests that omit it.
	// Nil when serve started without reference files.
	reference *reference.Index
	// indexOpts applies the configured home nation and visa window to
	// reference data supplied in a request.
	indexOpts []reference.Option
	// rules lists rule names for GET /api/v1/rules.
	rules []string
	now   func() time.Time
}

// Options configure a Server.
type Options struct {
	Addr    string
	Runner  *batch.Runner
	Metrics *metrics.Metrics

	// Reference is used by requests that carry no reference data. When nil,
	// such requests are refused.
	Reference *reference.Index
	IndexOpts []reference.Option
	Rules     []string
	Logger    *slog.Logger

	// Now anchors visa validity; nil uses the wall clock.
	Now func() time.Time
}

// New creates a new decision server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger,
		runner:    opts.Runner,
		metrics:   opts.Metrics,
		addr:      opts.Addr,
		reference: opts.Reference,
		indexOpts: opts.IndexOpts,
		rules:     opts.Rules,
		now:       now,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/decide", s.handleDecide)
		r.Post("/check", s.handleCheck)
		r.Get("/rules", s.handleRules)
	})
}

// ListenAndServe starts the HTTP server and stops it when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting decision server", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the HTTP handler for embedding in other servers.
func (s *Server) Handler() http.Handler {
	return s.router
}
