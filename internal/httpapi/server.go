// Package httpapi mirrors the voice catalogs as a small JSON REST API.
// file: internal/httpapi/server.go
package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/catalog"
	"github.com/dkoosis/voicestyle/internal/logging"
	"github.com/dkoosis/voicestyle/internal/metrics"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

// Info identifies the service in descriptors. The HTTP service name carries a "-mcp" suffix.
type Info struct {
	Name    string
	Version string
}

// ServiceName is the name reported by /health and /mcp/capabilities.
func (i Info) ServiceName() string {
	return i.Name + "-mcp"
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logging.OrNoop(logger).WithField("component", "http_server") }
}

// WithMetrics records catalog requests in c and exposes it on /metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// Server serves the REST routes.
type Server struct {
	info            Info
	catalogs        *catalog.Set
	logger          logging.Logger
	metrics         *metrics.Collector
	shutdownTimeout time.Duration
	handler         http.Handler
	now             func() time.Time
}

// NewServer builds the route table and middleware chain.
func NewServer(catalogs *catalog.Set, info Info, opts ...Option) (*Server, error) {
	if catalogs == nil {
		return nil, errors.New("httpapi: catalogs are required")
	}
	s := &Server{
		info:            info,
		catalogs:        catalogs,
		logger:          logging.GetNoopLogger().WithField("component", "http_server"),
		shutdownTimeout: 5 * time.Second,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	s.handler = chain(mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware,
		logMiddleware(s.logger),
		corsMiddleware,
	)
	return s, nil
}

// Handler returns the full handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on addr and serves until ctx is cancelled. A listen failure is
// returned immediately.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "httpapi: failed to listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("HTTP server listening.", "addr", ln.Addr().String())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "httpapi: server failed")
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server.", "timeout", s.shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "httpapi: graceful shutdown failed")
	}
	<-errCh
	s.logger.Info("HTTP server stopped.")
	return nil
}
