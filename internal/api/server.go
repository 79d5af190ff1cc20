package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/steward/internal/aggregate"
	"github.com/MikeSquared-Agency/steward/internal/feedback"
)

// FeedbackProcessor runs one piece of feedback through the pipeline.
type FeedbackProcessor interface {
	Process(ctx context.Context, text string) (*feedback.Record, error)
}

// Summarizer produces a narrative summary for a date range.
type Summarizer interface {
	Summarize(ctx context.Context, r aggregate.Range) (string, error)
}

// Publisher emits bus events.
type Publisher interface {
	Publish(subject string, data any) error
}

// Options configures a Server. Events may be nil.
type Options struct {
	Port       int
	APIToken   string
	MaxSamples int
	Seed       uint64
	Events     Publisher
}

type Server struct {
	router     *chi.Mux
	port       int
	processor  FeedbackProcessor
	summarizer Summarizer
	agg        *aggregate.Aggregator
	events     Publisher
	maxSamples int
	seed       uint64
	logger     *slog.Logger
	httpServer *http.Server
}

func NewServer(proc FeedbackProcessor, sum Summarizer, agg *aggregate.Aggregator, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if opts.MaxSamples <= 0 {
		opts.MaxSamples = aggregate.DefaultMaxSamples
	}

	s := &Server{
		router:     router,
		port:       opts.Port,
		processor:  proc,
		summarizer: sum,
		agg:        agg,
		events:     opts.Events,
		maxSamples: opts.MaxSamples,
		seed:       opts.Seed,
		logger:     logger,
	}

	router.Get("/health", s.health)
	router.Post("/analyze_feedback", s.analyzeFeedback)
	router.Post("/generate_summary", s.generateSummary)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(opts.APIToken))
		r.Get("/feedback/trend", s.trend)
		r.Get("/feedback/totals", s.totals)
		r.Get("/feedback/samples", s.samples)
		r.Get("/dashboard", s.dashboard)
	})

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, feedback.ErrValidation), errors.Is(err, feedback.ErrRange):
		status = http.StatusBadRequest
	case errors.Is(err, feedback.ErrLogNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
