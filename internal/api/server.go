// Package api provides the Juniper Search REST API server.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
	"github.com/FocuswithJustin/JuniperSearch/internal/server"
	"github.com/FocuswithJustin/JuniperSearch/internal/service"
)

// Server serves the search service over HTTP.
type Server struct {
	cfg     Config
	svc     *service.Service
	hub     *Hub
	jobs    *JobStore
	limiter *ClientLimiter
	handler http.Handler

	unsubscribe func()
}

// New validates cfg and assembles the handler chain. Call Close when done.
func New(svc *service.Service, cfg Config) (*Server, error) {
	if err := cfg.Auth.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auth config: %w", err)
	}
	if cfg.WebSocket.MaxMessageRate <= 0 || cfg.WebSocket.MaxMessageSize <= 0 {
		ws := DefaultWebSocketSecurityConfig()
		cfg.WebSocket.MaxMessageRate, cfg.WebSocket.MaxMessageSize = ws.MaxMessageRate, ws.MaxMessageSize
	}
	if cfg.WebSocket.AllowedOrigins == nil {
		cfg.WebSocket.AllowedOrigins = cfg.AllowedOrigins
	}
	cfg.WebSocket.Auth = cfg.Auth
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}

	s := &Server{
		cfg:  cfg,
		svc:  svc,
		hub:  NewHub(),
		jobs: NewJobStore(),
	}
	go s.hub.Run()
	s.unsubscribe = svc.Subscribe(s.hub.BroadcastEvent)

	mux := s.routes()
	var handler http.Handler = server.SecurityHeaders(server.APIContentSecurityPolicy, mux)

	if cfg.Auth.Enabled {
		handler = requireKey(cfg.Auth, handler)
		logging.SecurityEvent("authentication_configured", "api",
			"enabled", true,
			"note", "API key required for POST and DELETE")
	}

	if cfg.RateLimitRequests > 0 {
		s.limiter = NewClientLimiter(cfg.RateLimitRequests, cfg.RateLimitBurst)
		handler = s.limiter.Middleware(handler)
		logging.Info("rate limiting enabled",
			"requests_per_minute", cfg.RateLimitRequests,
			"burst_size", s.limiter.burst)
	}

	handler = server.CORS{Origins: cfg.AllowedOrigins}.Wrap(handler)
	if len(cfg.AllowedOrigins) > 0 {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "restricted",
			"allowed_origins_count", len(cfg.AllowedOrigins))
	} else {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "permissive",
			"note", "allowing all origins (*)")
	}

	handler = server.TimingMiddleware(handler)
	s.handler = logging.CombinedMiddleware(handler)
	return s, nil
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close stops the hub, the rate limiter cleanup and all running jobs.
func (s *Server) Close() {
	s.unsubscribe()
	s.jobs.CancelAll()
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.hub.Stop()
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logging.ServerStartup("rest_api", "http", s.cfg.Port,
		"addr", ln.Addr().String(),
		"websocket_path", "/ws")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	logging.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/references", s.handleReferences)
	mux.HandleFunc("/verses", s.handleVerses)
	mux.HandleFunc("/books", s.handleBooks)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/index", s.handleIndex)
	mux.HandleFunc("/index/rebuild", s.handleRebuild)
	mux.HandleFunc("/jobs", s.handleJobs)
	mux.HandleFunc("/jobs/", s.handleJobByID)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return mux
}
