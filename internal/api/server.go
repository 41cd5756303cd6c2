// Package api serves the generation engine over HTTP.
//
// Every endpoint takes a JSON Request naming a project and one of its boxes:
//
//	GET  /healthz
//	POST /api/v1/validate     validation report for the box
//	POST /api/v1/layout       layouts, arrangement, spacers and reference labels
//	POST /api/v1/stl/{part}   binary STL of box, lid, assembly or tray-<letter>
//	POST /api/v1/preview      top-down PNG of the arrangement
//
// Solid generation runs on a worker pool; a request overtaken by a newer one
// for the same box answers 409 Conflict.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/worker"
)

const (
	// maxBodyBytes bounds a request body.
	maxBodyBytes = 8 << 20

	shutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Logger   *log.Logger
	Pipeline generate.Options
	Workers  int
}

// Server routes API requests to the generation pipeline.
type Server struct {
	router   chi.Router
	logger   *log.Logger
	pipeline generate.Options
	worker   *worker.Worker
}

// New builds a server and starts its worker pool. Call Close when done.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Pipeline.Logger == nil {
		opts.Pipeline.Logger = opts.Logger
	}
	s := &Server{
		logger:   opts.Logger,
		pipeline: opts.Pipeline,
		worker:   worker.New(worker.Options{Workers: opts.Workers, Pipeline: opts.Pipeline}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/layout", s.handleLayout)
		r.Post("/stl/{part}", s.handleSTL)
		r.Post("/preview", s.handlePreview)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops the worker pool after in-flight generations finish.
func (s *Server) Close() {
	s.worker.Close()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
