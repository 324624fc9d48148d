package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/auth"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/storage"
)

// Server is the read API's HTTP server (spec §6).
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	handlers   *Handlers
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
type ServerConfig struct {
	// DB may be nil: listing, KPI and export handlers degrade to
	// empty-but-200 responses rather than refusing to start (SPEC_FULL.md §2.3).
	DB     *storage.DB
	JWTMgr *auth.JWTManager
	Logger *slog.Logger

	Addr                string
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64
	ExportRowLimit      int
	CORSAllowedOrigins  []string // ["*"] permits any origin.
	AuthDisabled        bool

	// Bootstrap credential hashes for POST /api/auth/token (Argon2id, see
	// internal/auth/hash.go). Either may be empty to disable that role.
	AdminKeyHash string
	ReadOnlyHash string
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		DB:                  cfg.DB,
		Logger:              cfg.Logger,
		Version:             cfg.Version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		ExportRowLimit:      cfg.ExportRowLimit,
	})

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.HandleFunc("GET /api/kpis", h.HandleKPIs)
	mux.HandleFunc("GET /api/meetings", h.HandleListMeetings)
	mux.HandleFunc("GET /api/meetings/{id}", h.HandleGetMeeting)
	mux.HandleFunc("GET /api/runs", h.HandleListRuns)
	mux.HandleFunc("GET /api/runs/monthly", h.HandleMonthlyAggregates)
	mux.HandleFunc("GET /api/alerts", h.HandleListAlerts)
	mux.Handle("POST /api/alerts/{id}/acknowledge", requireAdmin(http.HandlerFunc(h.HandleAcknowledgeAlert)))
	mux.HandleFunc("POST /api/exports", h.HandleExport)
	mux.HandleFunc("POST /api/auth/token", h.HandleIssueToken(AuthDeps{
		JWTMgr:       cfg.JWTMgr,
		AdminKeyHash: cfg.AdminKeyHash,
		ReadOnlyHash: cfg.ReadOnlyHash,
	}))

	// Middleware chain (outermost executes first), per SPEC_FULL.md §10.2:
	// request ID → recovery → security headers → CORS → logging → tracing →
	// auth → role check (per-route) → handler.
	var handler http.Handler = mux
	handler = authMiddleware(cfg.JWTMgr, cfg.AuthDisabled, handler)
	handler = tracingMiddleware(handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = corsMiddleware(cfg.CORSAllowedOrigins, handler)
	handler = securityHeadersMiddleware(handler)
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  2 * cfg.ReadTimeout,
		},
		handler:  handler,
		handlers: h,
		logger:   cfg.Logger,
	}
}

// Handlers returns the underlying Handlers.
func (s *Server) Handlers() *Handlers {
	return s.handlers
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen and serve: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
