package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"stockhook/internal/auth"
	"stockhook/internal/hookstore"
	"stockhook/internal/render"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second

	defaultListLimit      = 50
	defaultRenderMaxBytes = 2 << 20
)

// RecordStore is the subset of the hook store the HTTP layer uses.
type RecordStore interface {
	Put(ctx context.Context, in hookstore.PutInput) (hookstore.Record, error)
	List(ctx context.Context, limit int) ([]hookstore.RecordSummary, error)
	Get(ctx context.Context, id string) (hookstore.Record, error)
	OpenBlob(ctx context.Context, id string) (hookstore.Blob, error)
	Delete(ctx context.Context, id string) error
}

// Options configures the HTTP surface.
type Options struct {
	Addr string
	// RenderMaxBytes is the largest body the view page renders in full.
	RenderMaxBytes int64
	ListLimit      int
	Verifier       auth.Verifier
	// ProtectReads extends token checks to the read routes.
	ProtectReads   bool
	AllowedOrigins []string
}

// Server wraps HTTP handlers for the stockhook API and views.
type Server struct {
	addr           string
	store          RecordStore
	renderer       *render.Renderer
	logger         *slog.Logger
	verifier       auth.Verifier
	protectReads   bool
	renderMaxBytes int64
	listLimit      int
	cors           corsPolicy
}

// New creates a new server instance.
func New(st RecordStore, renderer *render.Renderer, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if renderer == nil {
		renderer = render.NewRenderer(time.UTC)
	}
	if opts.RenderMaxBytes <= 0 {
		opts.RenderMaxBytes = defaultRenderMaxBytes
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = defaultListLimit
	}

	return &Server{
		addr:           opts.Addr,
		store:          st,
		renderer:       renderer,
		logger:         logger,
		verifier:       opts.Verifier,
		protectReads:   opts.ProtectReads,
		renderMaxBytes: opts.RenderMaxBytes,
		listLimit:      opts.ListLimit,
		cors:           newCORSPolicy(opts.AllowedOrigins),
	}
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.withStandardHeaders(s.withCORS(s.routes())))
}

// ListenAndServe serves until ctx is canceled, then drains in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log().Info("starting server", "addr", ln.Addr().String(), "token_configured", s.verifier.Configured(), "protect_reads", s.protectReads)
	if !s.verifier.Configured() {
		s.log().Warn("no token configured; ingest requests will be refused")
	}

	// No read or write timeout: bodies are bounded by the store ceiling and
	// raw downloads may be slow.
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.log().Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
