package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"makerkit_backend/logging"

	"go.uber.org/zap"
)

// Server is the HTTP server organism for the generation API.
// It wires together:
//   - API for the JSON endpoints
//   - LoggingMiddleware for request logging
//   - a health endpoint for liveness checks
//
// Methods:
//   - NewServer() creates a configured server instance
//   - Start() begins listening on the configured port
//   - Shutdown() gracefully shuts down the server
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	config     ServerConfig
	api        *API
	loggingMw  *LoggingMiddleware
	logger     *logging.Logger
}

// ServerConfig configures the Server.
type ServerConfig struct {
	// Port to listen on (default: 3000)
	Port int

	// Host to bind to (default: "" - all interfaces)
	Host string

	// ReadTimeout for HTTP requests (default: 30s)
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses. Generation requests can legitimately
	// run for minutes while the cascade waits out model warmups, so this
	// must exceed the cascade deadline (default: 10m)
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s)
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration

	// LogSkipPaths are paths excluded from request logging
	LogSkipPaths []string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            3000,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    10 * time.Minute,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		LogSkipPaths:    []string{"/health"},
	}
}

// NewServer creates a Server serving the given API.
func NewServer(config ServerConfig, api *API, logger *logging.Logger) *Server {
	if config.Port == 0 {
		config.Port = 3000
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 10 * time.Minute
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	mux := http.NewServeMux()
	server := &Server{
		mux:       mux,
		config:    config,
		api:       api,
		loggingMw: NewLoggingMiddleware(logger, config.LogSkipPaths),
		logger:    logger.Named("server"),
	}

	server.setupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server.httpServer = &http.Server{
		Addr:         addr,
		Handler:      server.loggingMw.Handler(mux),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	server.logger.Info("API server created", zap.String("addr", addr))

	return server
}

// setupRoutes configures all the HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.api.RegisterRoutes(s.mux)
}

// Handler returns the fully wired root handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handleHealth handles liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// Start begins listening for HTTP requests. It blocks until the server
// is shut down.
func (s *Server) Start() error {
	s.logger.Info("API server starting", zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
