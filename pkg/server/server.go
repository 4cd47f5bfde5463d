// Package server exposes the transfocator pipeline over HTTP.
//
// Routes:
//
//	POST /v1/calculate        beamline JSON in, report JSON out
//	POST /v1/runs             calculate and archive
//	GET  /v1/runs             archived runs, newest first
//	GET  /v1/runs/{id}        one archived run
//	GET  /v1/constants        optical-constants lookup
//	GET  /v1/presets          lens preset catalog
//	GET  /v1/version          build information
//	GET  /healthz, /readyz    probes
//	GET  /metrics             Prometheus
//
// Errors are answered as {"code": ..., "message": ...} with the status
// taken from [errors.HTTPStatus].
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/transfocator/pkg/materials"
	"github.com/matzehuels/transfocator/pkg/pipeline"
	"github.com/matzehuels/transfocator/pkg/store"
)

const (
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes = 1 << 20
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr     = ":8080"
	shutdownTimeout = 10 * time.Second
	requestTimeout  = 60 * time.Second
)

// Server holds the dependencies shared by all handlers.
type Server struct {
	Runner   *pipeline.Runner
	Store    store.Store
	Provider materials.Provider
	Metrics  *Metrics
	Logger   *log.Logger
}

// New creates a server. A nil store disables archiving endpoints
// (they answer UNSUPPORTED); a nil metrics value disables /metrics.
func New(runner *pipeline.Runner, st store.Store, metrics *Metrics, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Runner:   runner,
		Store:    st,
		Provider: runner.Provider,
		Metrics:  metrics,
		Logger:   logger,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/calculate", s.handleCalculate)
		r.Get("/constants", s.handleConstants)
		r.Get("/presets", s.handlePresets)
		r.Get("/version", s.handleVersion)
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", s.handleCreateRun)
			r.Get("/", s.handleListRuns)
			r.Get("/{id}", s.handleGetRun)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
