// Package server exposes the README service over HTTP.
//
// Routes (also mounted under /api):
//   - GET  /                  liveness text
//   - POST /generate          generate and store a README
//   - GET  /generate/history  most recent stored READMEs
//   - POST /chat              one follow-up answer about a code blob
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wonder-codes/echo-repo/internal/services"
)

// DefaultMaxBodyBytes caps request bodies when Options leaves it unset.
const DefaultMaxBodyBytes = 10 << 20

const shutdownTimeout = 30 * time.Second

type Options struct {
	MaxBodyBytes int64
	Logger       zerolog.Logger
}

type Server struct {
	readmes services.ReadmeService
	maxBody int64
	log     zerolog.Logger
	mux     *http.ServeMux
}

func New(readmes services.ReadmeService, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		readmes: readmes,
		maxBody: opts.MaxBodyBytes,
		log:     opts.Logger.With().Str("component", "http").Logger(),
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	for _, prefix := range []string{"", "/api"} {
		s.mux.HandleFunc("GET "+prefix+"/{$}", s.handleIndex)
		s.mux.HandleFunc("POST "+prefix+"/generate", s.handleGenerate)
		s.mux.HandleFunc("GET "+prefix+"/generate/history", s.handleHistory)
		s.mux.HandleFunc("POST "+prefix+"/chat", s.handleChat)
	}
}

// Handler returns the routes wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return requestLogger(s.log, recoverer(s.mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		s.log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	return eg.Wait()
}
