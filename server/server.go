// Package server exposes a report over HTTP: Prometheus metrics, the ledger
// source files and a stream of reload events carrying the report version.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
// File access is restricted to the ledger's source files.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robinvdvleuten/beanreport/report"
	"github.com/robinvdvleuten/beanreport/telemetry"
)

// Server serves one report.
type Server struct {
	Host         string
	Port         int
	ReadOnly     bool
	PollInterval time.Duration

	report   *report.Report
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	// SSE clients for broadcasting reload events
	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithGatherer sets the metrics served on /metrics. The default is
// prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithReadOnly rejects writes to the source files.
func WithReadOnly() Option {
	return func(s *Server) { s.ReadOnly = true }
}

// WithPollInterval sets how often the ledger files are checked for changes.
func WithPollInterval(d time.Duration) Option {
	return func(s *Server) { s.PollInterval = d }
}

// New creates a server for r listening on 127.0.0.1:port.
func New(r *report.Report, port int, opts ...Option) *Server {
	s := &Server{
		Host:         "127.0.0.1",
		Port:         port,
		PollInterval: time.Second,
		report:       r,
		gatherer:     prometheus.DefaultGatherer,
		logger:       slog.Default(),
		sseClients:   make(map[chan string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("server.start %s:%d", s.Host, s.Port))
	setupTimer := timer.Child("server.setup_router")
	handler := s.Handler()
	setupTimer.End()
	timer.End()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.Host, s.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.watch(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /api/version", s.handleGetVersion)
	mux.HandleFunc("GET /api/source", s.handleGetSource)
	mux.HandleFunc("PUT /api/source", s.requireWritable(s.handlePutSource))
	mux.HandleFunc("GET /api/events", s.handleSSE)

	return mux
}

// requireWritable is middleware that rejects write requests in read-only mode.
func (s *Server) requireWritable(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.ReadOnly {
			http.Error(w, "Server is in read-only mode", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleGetVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, map[string]uint64{"version": s.report.Version()})
}

// watch reloads the report whenever its files change.
func (s *Server) watch(ctx context.Context) {
	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// poll reloads the report if it changed on disk and tells the SSE clients.
func (s *Server) poll(ctx context.Context) bool {
	changed, err := s.report.Changed(ctx)
	if err != nil {
		s.logger.Warn("failed to reload ledger", "error", err)
		return false
	}
	if changed {
		s.broadcastReload()
	}
	return changed
}

func (s *Server) broadcastReload() {
	s.broadcast("reload " + strconv.FormatUint(s.report.Version(), 10))
}

// handleSSE handles Server-Sent Events connections for real-time updates.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := s.subscribe()
	defer s.unsubscribe(events)

	_, _ = fmt.Fprintf(w, "data: connected %d\n\n", s.report.Version())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-events:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

func (s *Server) subscribe() chan string {
	events := make(chan string, 10)
	s.sseMu.Lock()
	s.sseClients[events] = struct{}{}
	s.sseMu.Unlock()
	return events
}

func (s *Server) unsubscribe(events chan string) {
	s.sseMu.Lock()
	delete(s.sseClients, events)
	s.sseMu.Unlock()
}

// broadcast sends an event to all connected SSE clients.
func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for events := range s.sseClients {
		select {
		case events <- event:
		default:
			// Client buffer full, skip
		}
	}
}
