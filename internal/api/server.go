// Package api serves the tracker over a local JSON HTTP API.
//
// The API lets a browser front end use the same repository, validation and
// storage as the CLI instead of keeping its own copy in browser storage.
// All routes live under /api.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fetrias/techtrack/internal/tech"
)

// Repository is the record store the handlers operate on.
type Repository interface {
	List() []tech.Record
	Len() int
	Get(id tech.ID) (tech.Record, bool)
	Has(id tech.ID) bool
	Add(ctx context.Context, d tech.Draft) (tech.Record, error)
	Update(ctx context.Context, id tech.ID, p tech.Patch) (bool, error)
	BulkUpdate(ctx context.Context, ids []tech.ID, p tech.Patch) (int, error)
	Delete(ctx context.Context, id tech.ID) (bool, error)
}

// TraceIDGenerator produces request correlation ids.
type TraceIDGenerator interface {
	Generate() string
}

// Server wires the handlers into a gin engine.
type Server struct {
	repo     Repository
	clock    tech.Clock
	logger   *slog.Logger
	traceIDs TraceIDGenerator
	origins  []string
	maxBody  int64

	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used for export file names and upcoming deadlines.
func WithClock(c tech.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithTraceIDs sets the trace id generator.
func WithTraceIDs(g TraceIDGenerator) Option {
	return func(s *Server) { s.traceIDs = g }
}

// WithCORSOrigins sets the browser origins allowed to call the API.
// No origins disables CORS handling.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithMaxImportSize caps the import request body in bytes.
func WithMaxImportSize(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// New creates a Server over repo.
func New(repo Repository, opts ...Option) *Server {
	s := &Server{
		repo:     repo,
		clock:    tech.SystemClock{},
		logger:   slog.Default(),
		traceIDs: uuidV7{},
		maxBody:  10 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.trace(), s.requestLog())
	_ = engine.SetTrustedProxies(nil)

	if len(s.origins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:  s.origins,
			AllowMethods:  []string{"OPTIONS", "GET", "POST", "PATCH", "DELETE"},
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Length", "Content-Disposition", traceHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	engine.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, codeNotFound, "no such route")
	})

	s.registerRoutes(engine.Group("/api"))
	s.engine = engine
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("api stopped")
	return nil
}
