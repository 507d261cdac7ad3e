package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hsdfat8/gridops/internal/observability"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ServerConfig holds the listener and protocol settings of the API server
type ServerConfig struct {
	ListenAddr      string // host:port; port 0 picks a free port
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	EnableTLS       bool // HTTP/2 over TLS, takes precedence over EnableH2C
	TLSCertFile     string
	TLSKeyFile      string
	EnableH2C       bool // HTTP/2 cleartext alongside HTTP/1.1
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

// Server serves the API router over HTTP/1.1, H2C or TLS
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	listener   net.Listener
	router     http.Handler
	errs       chan error
	logger     observability.Logger
}

// NewServer creates a server for router
func NewServer(config ServerConfig, router http.Handler) *Server {
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 30 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 30 * time.Second
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = 120 * time.Second
	}
	if config.MaxHeaderBytes == 0 {
		config.MaxHeaderBytes = 1 << 20
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	return &Server{
		config: config,
		router: router,
		errs:   make(chan error, 1),
		logger: observability.New("http-server", ""),
	}
}

// http2Settings are shared by the TLS and H2C modes
func http2Settings() *http2.Server {
	return &http2.Server{
		MaxConcurrentStreams: 250,
		MaxReadFrameSize:     1 << 20,
	}
}

// Start binds the listener and serves in the background. Bind and protocol
// setup errors are returned; later serve failures arrive on Errors.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener
	s.config.ListenAddr = listener.Addr().String()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddr,
		Handler:        s.router,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	var (
		mode  string
		serve func() error
	)
	switch {
	case s.config.EnableTLS:
		s.httpServer.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			NextProtos: []string{"h2", "http/1.1"},
		}
		if err := http2.ConfigureServer(s.httpServer, http2Settings()); err != nil {
			_ = listener.Close()
			return fmt.Errorf("failed to configure HTTP/2: %w", err)
		}
		mode = "HTTP/2 TLS"
		serve = func() error {
			return s.httpServer.ServeTLS(listener, s.config.TLSCertFile, s.config.TLSKeyFile)
		}
	case s.config.EnableH2C:
		s.httpServer.Handler = h2c.NewHandler(s.router, http2Settings())
		mode = "HTTP/2 H2C"
		serve = func() error { return s.httpServer.Serve(listener) }
	default:
		mode = "HTTP/1.1"
		serve = func() error { return s.httpServer.Serve(listener) }
	}

	s.logger.Infow("Starting server", "mode", mode, "address", s.config.ListenAddr)
	go func() {
		if err := serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorw("Server stopped unexpectedly", "mode", mode, "error", err)
			s.errs <- err
		}
	}()
	return nil
}

// Errors reports a serve failure after Start returned
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Stop drains in-flight requests for at most ShutdownTimeout
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Infow("Stopping HTTP server", "address", s.config.ListenAddr)

	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// GetAddr returns the bound address once started
func (s *Server) GetAddr() string {
	return s.config.ListenAddr
}

// IsRunning reports whether Start has bound a listener
func (s *Server) IsRunning() bool {
	return s.httpServer != nil && s.listener != nil
}
