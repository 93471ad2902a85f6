// Package httpapi serves the ingestion endpoint through which external
// tools post study sessions with an API key instead of an access token.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/logging"
	"github.com/dmitrijs2005/lifesync/internal/server/ratelimit"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address string
	keys    KeyAuthenticator
	limiter ratelimit.Limiter
	ingest  ActivityRecorder
	logger  logging.Logger
}

func NewServer(a string, l logging.Logger, keys KeyAuthenticator, limiter ratelimit.Limiter, ingest ActivityRecorder) *Server {
	return &Server{
		address: a,
		keys:    keys,
		limiter: limiter,
		ingest:  ingest,
		logger:  l.With("module", "http_server"),
	}
}

// Handler returns the routes of the ingestion API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/japanese", s.handleJapanese)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
