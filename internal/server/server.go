// Package server exposes the tutoring pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"codeberg.org/snonux/denglish/internal"
	"codeberg.org/snonux/denglish/internal/job"
)

// Processor runs one job to completion.
type Processor interface {
	Process(ctx context.Context, req job.Request) job.Envelope
}

// Config holds the HTTP server settings.
type Config struct {
	Addr          string
	MaxConcurrent int64         // jobs processed at the same time
	QueueTimeout  time.Duration // longest wait for a free slot
	MaxBodyBytes  int64
	ShutdownGrace time.Duration
	Logger        *slog.Logger

	// Health, when set, is consulted by /healthz; an error reports the
	// worker as degraded.
	Health func() error
}

// DefaultConfig returns the default server settings.
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		MaxConcurrent: 4,
		QueueTimeout:  30 * time.Second,
		MaxBodyBytes:  32 << 20,
		ShutdownGrace: 30 * time.Second,
	}
}

// Server accepts jobs over HTTP and bounds how many run at once.
type Server struct {
	proc     Processor
	config   Config
	slots    *semaphore.Weighted
	draining atomic.Bool
	inFlight atomic.Int64
	logger   *slog.Logger
}

// New creates a server for proc.
func New(proc Processor, config Config) *Server {
	defaults := DefaultConfig()
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = defaults.MaxConcurrent
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if config.ShutdownGrace <= 0 {
		config.ShutdownGrace = defaults.ShutdownGrace
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		proc:   proc,
		config: config,
		slots:  semaphore.NewWeighted(config.MaxConcurrent),
		logger: logger,
	}
}

// Handler returns the HTTP routes of the worker.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /run", s.handleRun)
	mux.HandleFunc("POST /runsync", s.handleRun)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.draining.Load() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "worker is shutting down"})
		return
	}

	var payload job.Payload
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad json: " + err.Error()})
		return
	}

	req := payload.Input
	req.ID = payload.ID
	if req.ID == "" {
		req.ID = internal.GenerateJobID()
	}

	if err := s.acquire(r.Context()); err != nil {
		s.logger.Warn("job rejected", "job_id", req.ID, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
		return
	}
	defer s.release()

	// A client that hangs up does not cancel a job once it has started
	envelope := s.proc.Process(context.WithoutCancel(r.Context()), req)
	w.Header().Set("X-Job-Id", req.ID)
	writeJSON(w, http.StatusOK, envelope)
}

func (s *Server) acquire(ctx context.Context) error {
	if s.config.QueueTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.QueueTimeout)
		defer cancel()
	}
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("worker saturated: %w", err)
	}
	s.inFlight.Add(1)
	return nil
}

func (s *Server) release() {
	s.inFlight.Add(-1)
	s.slots.Release(1)
}

type healthBody struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	InFlight int64  `json:"in_flight"`
	Detail   string `json:"detail,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := healthBody{Status: "ok", Version: internal.Version, InFlight: s.inFlight.Load()}
	code := http.StatusOK

	switch {
	case s.draining.Load():
		body.Status, code = "draining", http.StatusServiceUnavailable
	case s.config.Health != nil:
		if err := s.config.Health(); err != nil {
			body.Status, body.Detail, code = "degraded", err.Error(), http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, body)
}

// ListenAndServe serves until ctx is canceled, then stops accepting jobs
// and waits up to the shutdown grace period for running ones.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String(), "max_concurrent", s.config.MaxConcurrent)
		errc <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.draining.Store(true)
	s.logger.Info("shutting down", "in_flight", s.inFlight.Load())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
