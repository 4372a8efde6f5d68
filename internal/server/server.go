// Package server serves the generated documentation site locally. The
// server starts at most once per process; rebuilds update files underneath
// it in place.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Options configures the static server.
type Options struct {
	// Root is the output directory to serve.
	Root string
	Port int
	// Metrics, when non-nil, is mounted at /metrics.
	Metrics http.Handler
}

// Server is a static file server over the output directory.
type Server struct {
	httpServer *http.Server
	addr       string
}

// New builds the server without binding the port.
func New(opts Options) *Server {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(opts.Root)))
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics)
	}
	addr := fmt.Sprintf("127.0.0.1:%d", opts.Port)
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: addr,
	}
}

// Start binds the listener and serves in the background until Stop.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	s.addr = ln.Addr().String()
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Documentation server stopped unexpectedly", "error", err)
		}
	}()
	slog.Info("Serving documentation", "url", fmt.Sprintf("http://%s", s.addr))
	return nil
}

// Addr returns the bound address, useful with port 0 in tests.
func (s *Server) Addr() string { return s.addr }

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
