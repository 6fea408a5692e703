// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stubsvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jeranaias/floodqa-tui/internal/querysvc"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr matches the client's default endpoint.
	DefaultAddr = "127.0.0.1:5000"

	// MaxRequestBodySize caps the request body (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// ErrorAnswer is the answer text of a rejected request.
	ErrorAnswer = "server error"
)

// ============================================================================
// STATS
// ============================================================================

// Stats counts requests served since start.
type Stats struct {
	Requests int64         `json:"requests"`
	Answered int64         `json:"answered"`
	Fallback int64         `json:"fallback"`
	Rejected int64         `json:"rejected"`
	Uptime   time.Duration `json:"uptime_ns"`
}

type counters struct {
	requests atomic.Int64
	answered atomic.Int64
	fallback atomic.Int64
	rejected atomic.Int64
}

// ============================================================================
// SERVER
// ============================================================================

// Options configures a Server.
type Options struct {
	Fixture *Fixture
	Logger  *zap.Logger

	// Delay is added before every answer so the client's pending state is
	// visible.
	Delay time.Duration

	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
}

// Server answers questions from a fixture.
type Server struct {
	fixture *Fixture
	logger  *zap.Logger
	delay   time.Duration
	origins []string
	started time.Time
	stats   counters

	router chi.Router
	server *http.Server
}

// New builds a Server. A nil fixture uses DefaultFixture.
func New(opts Options) *Server {
	s := &Server{
		fixture: opts.Fixture,
		logger:  opts.Logger,
		delay:   opts.Delay,
		origins: opts.AllowedOrigins,
		started: time.Now(),
	}
	if s.fixture == nil {
		s.fixture = DefaultFixture()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(cors(s.origins))

	r.Post("/query", s.handleQuery)
	r.Get("/stats", s.handleStats)

	s.router = r
}

// Handler returns the routed handler, for httptest or embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Stats returns a snapshot of the counters.
func (s *Server) Stats() Stats {
	return Stats{
		Requests: s.stats.requests.Load(),
		Answered: s.stats.answered.Load(),
		Fallback: s.stats.fallback.Load(),
		Rejected: s.stats.rejected.Load(),
		Uptime:   time.Since(s.started),
	}
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	s.stats.requests.Add(1)

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	var req querysvc.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.reject(w, r, "malformed request", err)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		s.reject(w, r, "missing question", nil)
		return
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
	}

	entry := s.fixture.Match(question)
	if len(entry.Keywords) == 0 {
		s.stats.fallback.Add(1)
	}
	s.stats.answered.Add(1)

	contexts := entry.Contexts
	if contexts == nil {
		contexts = []querysvc.ContextPassage{}
	}
	s.logger.Debug("question answered",
		zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
		zap.String("question", question),
		zap.Int("contexts", len(contexts)))

	writeJSON(w, http.StatusOK, querysvc.QueryResponse{
		Status:   querysvc.StatusSuccess,
		Answer:   entry.Answer,
		Contexts: contexts,
	})
}

// reject answers with the service's error shape. The real service reports
// these with HTTP 200, so the stub does too.
func (s *Server) reject(w http.ResponseWriter, r *http.Request, reason string, err error) {
	s.stats.rejected.Add(1)
	fields := []zap.Field{
		zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
		zap.String("reason", reason),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Warn("query rejected", fields...)

	writeJSON(w, http.StatusOK, querysvc.QueryResponse{
		Status:   querysvc.StatusError,
		Answer:   ErrorAnswer,
		Contexts: []querysvc.ContextPassage{},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Stats())
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// ListenAndServe serves on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.delay + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("stub service listening", zap.String("addr", addr))
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	stats := s.Stats()
	s.logger.Info("stub service shutting down",
		zap.Int64("requests", stats.Requests),
		zap.Int64("rejected", stats.Rejected))
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
