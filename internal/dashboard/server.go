// Package dashboard serves the consolidated table over HTTP.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"GradeConsolidator/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

// Refresher re-runs ingestion on demand.
type Refresher interface {
	Run(ctx context.Context) (usecase.Result, error)
}

// Options wires the dashboard collaborators. Refresher and Metrics are optional.
type Options struct {
	Cache     *TableCache
	Refresher Refresher
	Metrics   http.Handler
	Logger    *slog.Logger
}

// Server renders the dashboard pages and the JSON/CSV endpoints.
type Server struct {
	router    *chi.Mux
	cache     *TableCache
	refresher Refresher
	metrics   http.Handler
	templates *template.Template
	logger    *slog.Logger
}

// New parses the embedded templates and builds the router.
func New(opts Options) (*Server, error) {
	if opts.Cache == nil {
		return nil, fmt.Errorf("dashboard: table cache is required")
	}

	funcs := template.FuncMap{
		"score": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}
	templates, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		router:    chi.NewRouter(),
		cache:     opts.Cache,
		refresher: opts.Refresher,
		metrics:   opts.Metrics,
		templates: templates,
		logger:    logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/download.csv", s.handleDownload)
	s.router.Post("/refresh", s.handleRefresh)
	s.router.Get("/api/summary", s.handleSummary)
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics)
	}
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Invalidate drops the cached table so the next request reloads it.
func (s *Server) Invalidate() {
	s.cache.Invalidate()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dashboard: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	s.logger.Info("dashboard stopped")
	return nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.DebugContext(r.Context(), "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()),
				"duration", time.Since(start),
			)
		})
	}
}
