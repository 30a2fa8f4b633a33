package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fincoach/internal/middleware/ratelimit"
	"fincoach/internal/middleware/trace"
	"fincoach/internal/services"
)

// Options tunes server limits. Zero values fall back to sane defaults.
type Options struct {
	MaxUploadBytes     int64
	RateLimitPerMinute int
}

const defaultMaxUploadBytes = 10 << 20

// Server hosts the ingestion and analysis API.
type Server struct {
	http.Server

	ingest   *services.IngestService
	analysis *services.AnalysisService

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	maxUploadBytes int64
	shutdownOnce   sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ingest *services.IngestService, analysis *services.AnalysisService, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}

	s := &Server{
		ingest:   ingest,
		analysis: analysis,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		tracer:         trace.NewMiddleware(extractClientIP),
		maxUploadBytes: opts.MaxUploadBytes,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /upload-transactions", s.handleUpload)
	mux.HandleFunc("GET /files", s.handleListFiles)
	mux.HandleFunc("GET /files/{id}", s.handleGetFile)
	mux.HandleFunc("DELETE /files/{id}", s.handleDeleteFile)

	mux.HandleFunc("GET /files/{id}/analysis", s.handleAnalysis)
	mux.HandleFunc("GET /files/{id}/subscriptions", s.handleSubscriptions)
	mux.HandleFunc("GET /files/{id}/discretionary-income", s.handleDiscretionaryIncome)
	mux.HandleFunc("POST /files/{id}/financial-priorities", s.handlePriorities)

	mux.HandleFunc("POST /savings/analyze", s.handleSavingsAnalyze)
	mux.HandleFunc("POST /wealth/projections", s.handleProjections)
	mux.HandleFunc("POST /wealth/optimized-projections", s.handleOptimizedProjections)

	rateLimited := s.limiter.Middleware(extractClientIP, nil)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(rateLimited(securityHeaders(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Handler exposes the middleware-wrapped handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
