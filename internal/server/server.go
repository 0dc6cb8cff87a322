// Package server exposes the compression pipeline over HTTP: an upload form,
// a multipart compress endpoint that streams the result back, and the usual
// health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vidshrink/internal/logging"
	"vidshrink/internal/pipeline"
	"vidshrink/internal/util/deps"
)

// Options configures a Server.
type Options struct {
	Service *pipeline.Service

	// EncoderName and EncoderOverride are used by /api/encoder to locate the
	// encoder the same way the CLI does.
	EncoderName     string
	EncoderOverride string

	Simulated      bool
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	svc             *pipeline.Service
	encoderName     string
	encoderOverride string
	simulated       bool
	maxUpload       int64
	log             *slog.Logger
	started         time.Time
}

// New builds a Server. Service is required.
func New(o Options) *Server {
	s := &Server{
		svc:             o.Service,
		encoderName:     o.EncoderName,
		encoderOverride: o.EncoderOverride,
		simulated:       o.Simulated,
		maxUpload:       o.MaxUploadBytes,
		log:             o.Logger,
		started:         time.Now(),
	}
	if s.svc == nil {
		s.svc = pipeline.NewService()
	}
	if s.encoderName == "" {
		s.encoderName = deps.DefaultEncoder
	}
	if s.maxUpload <= 0 {
		s.maxUpload = pipeline.DefaultMaxUploadBytes
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return requestLogger(s.log)(metricsMiddleware(s.Router()))
}

// Router registers every route.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.Index).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.Health).Methods(http.MethodGet, http.MethodHead)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/compress", s.Compress).Methods(http.MethodPost)
	api.HandleFunc("/plan", s.Plan).Methods(http.MethodGet)
	api.HandleFunc("/presets", s.Presets).Methods(http.MethodGet)
	api.HandleFunc("/encoder", s.Encoder).Methods(http.MethodGet)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // encodes can take minutes
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr, "simulated", s.simulated)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("server shutdown error", "error", err)
		return err
	}
	return nil
}
