// Package api exposes the board engine and store over HTTP with JSON bodies.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sheikhrachel/gol-boards/model"
	"github.com/sheikhrachel/gol-boards/store"
	"github.com/sheikhrachel/gol-boards/utils"
)

const shutdownTimeout = 5 * time.Second

// errBusy means a computation could not start or finish within the request deadline
var errBusy = errors.New("computation capacity exhausted")

// Server wires the engine and the store behind the HTTP routes
type Server struct {
	cfg    utils.Config
	engine *model.Engine
	store  store.Store
	logger *slog.Logger
	// sem bounds how many engine computations run at once across all requests
	sem *semaphore.Weighted
}

// NewServer creates a Server. cfg must already be validated.
func NewServer(cfg utils.Config, engine *model.Engine, st store.Store, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		engine: engine,
		store:  st,
		logger: logger,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrentComputations)),
	}
}

// Handler returns the routed handler wrapped with request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/boards", s.handleList)
	mux.HandleFunc("GET /api/boards/{id}", s.handleGet)
	mux.HandleFunc("POST /api/boards/upload", s.handleUpload)
	mux.HandleFunc("POST /api/boards/next-state", s.handleNextState)
	mux.HandleFunc("POST /api/boards/future-state", s.handleFutureState)
	mux.HandleFunc("POST /api/boards/final-state", s.handleFinalState)
	return s.withRequestLogger(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("🧬 Board service starting", "address", s.cfg.ListenAddr)
		// ListenAndServe returns ErrServerClosed on graceful shutdown
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "[ListenAndServe] server failed on %+v", s.cfg.ListenAddr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info("🛑 Shutting down board service...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "[ListenAndServe] shutdown failed")
		}
		s.logger.Debug("Board service shut down gracefully.")
		return nil
	})

	return g.Wait()
}

type computation struct {
	grid        *model.Grid
	generations int
	err         error
}

// compute runs fn off the request goroutine, bounded by the semaphore and the request deadline.
// The engine cannot be interrupted: on timeout the result is dropped once fn returns.
func (s *Server) compute(ctx context.Context, fn func() (*model.Grid, int, error)) (*model.Grid, int, error) {
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, 0, errBusy
	}

	done := make(chan computation, 1)
	go func() {
		defer s.sem.Release(1)
		grid, generations, err := fn()
		done <- computation{grid: grid, generations: generations, err: err}
	}()

	select {
	case c := <-done:
		return c.grid, c.generations, c.err
	case <-ctx.Done():
		return nil, 0, errBusy
	}
}
