package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbio16/ln-community-graph/internal/graph"
	"github.com/mbio16/ln-community-graph/internal/model"
)

//go:embed static/index.html
var staticFS embed.FS

var indexTemplate = template.Must(template.ParseFS(staticFS, "static/index.html"))

// ShutdownTimeout bounds how long Run waits for open requests on shutdown.
const ShutdownTimeout = 5 * time.Second

// ErrNoGraph is returned by NewServer when the report has no graph.
var ErrNoGraph = errors.New("report has no community graph")

// Server serves the graph page for one community report.
type Server struct {
	report    *model.CommunityReport
	threshold int64
	addr      string
	logger    *slog.Logger

	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAddress sets the listen address used by Run.
func WithAddress(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithHighlightCapacity sets the default capacity at or above which a
// channel is drawn as top. A threshold query parameter overrides it.
func WithHighlightCapacity(sats int64) Option {
	return func(s *Server) {
		s.threshold = sats
	}
}

// NewServer creates a Server for report.
func NewServer(report *model.CommunityReport, opts ...Option) (*Server, error) {
	if report == nil || report.Graph == nil {
		return nil, ErrNoGraph
	}
	s := &Server{
		report: report,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/elements", s.handleElements)
	mux.HandleFunc("GET /api/stylesheet", s.handleStylesheet)
	mux.HandleFunc("GET /api/layout", s.handleLayout)
	mux.HandleFunc("GET /api/community", s.handleCommunity)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Recovery is outermost so it also catches panics in logging.
	var handler http.Handler = mux
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	s.handler = handler

	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving community graph", "address", ln.Addr().String(), "community", s.report.CommunityID)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct{ Name string }{Name: s.report.DisplayName()}
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("failed to render index", "error", err)
	}
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	threshold := s.threshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "threshold must be a non-negative integer")
			return
		}
		threshold = n
	}
	s.writeJSON(w, graph.Elements(s.report.Graph, threshold))
}

func (s *Server) handleStylesheet(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, graph.Stylesheet(s.report.Graph))
}

func (s *Server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, graph.CoseLayout())
}

func (s *Server) handleCommunity(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.report)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
