// Package http serves session status: Prometheus metrics, a JSON stats
// snapshot and a health check.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/relay"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Snapshotter reports current session stats.
type Snapshotter interface {
	Snapshot() relay.Stats
}

// Server is the status server.
type Server struct {
	addr    string
	gather  prometheus.Gatherer
	stats   Snapshotter
	running func() bool
	logger  *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHealth sets the liveness probe behind /healthz.
func WithHealth(running func() bool) Option {
	return func(s *Server) { s.running = running }
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, gather prometheus.Gatherer, stats Snapshotter, opts ...Option) *Server {
	s := &Server{
		addr:    addr,
		gather:  gather,
		stats:   stats,
		running: func() bool { return true },
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	r.Get("/stats", s.handleStats)
	r.Get("/healthz", s.handleHealth)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("status server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statsResponse struct {
	SessionID        string         `json:"session_id"`
	MessagesReceived int            `json:"messages_received"`
	MessagesSent     int            `json:"messages_sent"`
	Errors           int            `json:"errors"`
	StartedAt        time.Time      `json:"started_at"`
	DurationSeconds  float64        `json:"duration_seconds"`
	Languages        map[string]int `json:"languages"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	snap := s.stats.Snapshot()
	resp := statsResponse{
		SessionID:        snap.SessionID,
		MessagesReceived: snap.MessagesReceived,
		MessagesSent:     snap.MessagesSent,
		Errors:           snap.Errors,
		StartedAt:        snap.StartedAt,
		DurationSeconds:  snap.Duration.Seconds(),
		Languages:        make(map[string]int, len(snap.Languages)),
	}
	for lang, n := range snap.Languages {
		resp.Languages[string(lang)] = n
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !s.running() {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "stopped"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}
