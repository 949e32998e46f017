package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/config"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/logger"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/pipeline"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/server/middleware"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/server/ratelimit"
)

// maxBodyBytes caps request bodies; HTML uploads are the largest.
const maxBodyBytes = 2 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	service     *pipeline.Service
	jwtService  *JWTService
	keys        *config.KeyHasher
	rateLimiter *ratelimit.Limiter
	ping        func(ctx context.Context) error
	origins     map[string]bool
	log         *logger.Logger
	handler     http.Handler
}

// Config holds server configuration
type Config struct {
	Addr           string
	AllowedOrigins []string
	// WriteTimeout must cover a full fan-out of generation calls.
	WriteTimeout time.Duration
}

// Deps are the collaborators of a Server. Service, JWT and Keys are required.
type Deps struct {
	Service *pipeline.Service
	JWT     *JWTService
	Keys    *config.KeyHasher
	// Limiter is optional; nil disables rate limiting.
	Limiter *ratelimit.Limiter
	// Ping reports store health for /health; nil always reports ok.
	Ping func(ctx context.Context) error
	Log  *logger.Logger
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Service == nil || deps.JWT == nil || deps.Keys == nil {
		return nil, fmt.Errorf("server requires a service, a JWT service and a key hasher")
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Minute
	}

	s := &Server{
		service:     deps.Service,
		jwtService:  deps.JWT,
		keys:        deps.Keys,
		rateLimiter: deps.Limiter,
		ping:        deps.Ping,
		origins:     make(map[string]bool, len(cfg.AllowedOrigins)),
		log:         deps.Log,
	}
	for _, origin := range cfg.AllowedOrigins {
		s.origins[strings.TrimSpace(origin)] = true
	}

	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	authed := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Credentials
	mux.HandleFunc("POST /readers", s.handleCreateReader)
	mux.HandleFunc("POST /auth/token", s.handleToken)

	// Profile
	mux.Handle("GET /profile", authed(s.handleGetProfile))
	mux.Handle("PATCH /profile", authed(s.handleUpdateProfile))
	mux.Handle("POST /profile/assessment", authed(s.handleAssessment))

	// Documents
	mux.Handle("POST /documents", authed(s.handleCreateDocument))
	mux.Handle("GET /documents", authed(s.handleListDocuments))
	mux.Handle("GET /documents/{id}", authed(s.handleGetDocument))
	mux.Handle("POST /documents/{id}/transformations", authed(s.handleTransformations))
	mux.Handle("POST /documents/{id}/collapse", authed(s.handleCollapse))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the full middleware chain, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers. With no configured origins any origin is allowed.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(s.origins) == 0 || s.origins["*"]:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && s.origins[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit limits each client per endpoint. Requests carrying a valid
// token are limited per reader, everything else per IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			s.log.Warn("health check failed", "error", err)
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("failed to encode JSON response", "error", err)
	}
}

// errorResponse maps err to a status and writes the error body.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.errorResponseWithDetail(w, r, err, nil)
}

func (s *Server) errorResponseWithDetail(w http.ResponseWriter, r *http.Request, err error, detail any) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	body := NewErrorBody(err)
	body.Detail = detail
	s.jsonResponse(w, status, body)
}

// extractClientID identifies the caller for rate limiting: the reader when
// the request carries a valid token, otherwise the remote IP.
func (s *Server) extractClientID(r *http.Request) string {
	if token, ok := middleware.BearerToken(r); ok {
		if claims, err := s.jwtService.ValidateToken(token); err == nil {
			return "reader:" + claims.ReaderID.String()
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.log.Warn("rate limit exceeded", "path", r.URL.Path, "limit", info.Limit)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
