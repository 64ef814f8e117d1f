// Package server runs the HTTP listener.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Config is the configuration for the http server.
type Config struct {
	Port            string        `mapstructure:"port"`
	Address         string        `mapstructure:"address"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	MaxUploadMB     int           `mapstructure:"max_upload_mb"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is the listen address, e.g. ":8080".
func (c Config) Addr() string {
	port := c.Port
	if port == "" {
		port = "8080"
	}
	return net.JoinHostPort(c.Address, port)
}

// Server is the http server.
type Server struct {
	hs     *http.Server
	c      Config
	logger *slog.Logger
}

// New creates a server for handler.
func New(c Config, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		c:      c,
		logger: logger,
		hs: &http.Server{
			Addr:              c.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       2 * time.Minute,
			WriteTimeout:      2 * time.Minute,
			IdleTimeout:       2 * time.Minute,
			MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
		},
	}
}

// ListenAndServe serves until Shutdown is called. It returns nil after a
// graceful shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.hs.Addr)
	if err := s.hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting at most the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.c.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	return s.hs.Shutdown(ctx)
}
