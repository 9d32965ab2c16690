// Package server exposes the assistant over HTTP: a chat surface, workout
// and analysis endpoints, health, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkallio/liftwise/internal/assistant"
	"github.com/mkallio/liftwise/internal/config"
	"github.com/mkallio/liftwise/internal/data"
	"github.com/mkallio/liftwise/internal/hevy"
	"github.com/mkallio/liftwise/internal/logging"
	"github.com/mkallio/liftwise/internal/metrics"
)

// sessionHeader names the HTTP header carrying the conversation id. When it
// is absent the server mints a fresh id and returns it in the response.
const sessionHeader = "X-Session-ID"

// WorkoutSource is the slice of the Hevy client the HTTP surface uses
// directly, outside the orchestrator.
type WorkoutSource interface {
	GetRecentWorkouts(ctx context.Context, n int) ([]hevy.Workout, error)
	GetWorkoutCount(ctx context.Context) (int, error)
	GetCurrentProgram(ctx context.Context) (*hevy.Program, error)
}

// Server hosts the HTTP API.
type Server struct {
	cfg   config.ServerConfig
	orch  *assistant.Orchestrator
	api   WorkoutSource
	store *data.Store // nil when history persistence is off
	log   *logging.Logger

	httpServer *http.Server
}

// New builds a Server. store may be nil, which disables the save/load
// endpoints.
func New(cfg config.ServerConfig, orch *assistant.Orchestrator, api WorkoutSource, store *data.Store) *Server {
	s := &Server{
		cfg:   cfg,
		orch:  orch,
		api:   api,
		store: store,
		log:   logging.Global().WithComponent("server"),
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, exposed separately for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/chat/history", s.handleGetHistory)
	mux.HandleFunc("DELETE /api/chat/history", s.handleClearHistory)
	mux.HandleFunc("POST /api/chat/save", s.handleSaveHistory)
	mux.HandleFunc("POST /api/chat/load", s.handleLoadHistory)
	mux.HandleFunc("GET /api/chat/ws", s.handleChatWS)
	mux.HandleFunc("GET /api/workouts", s.handleWorkouts)
	mux.HandleFunc("GET /api/workouts/count", s.handleWorkoutCount)
	mux.HandleFunc("GET /api/analysis/stats", s.handleAnalysisStats)
	mux.HandleFunc("GET /api/analysis/program", s.handleAnalysisProgram)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return s.instrument(mux)
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// instrument wraps the mux with request logging and Prometheus counters.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.log.Request(r.Method, r.URL.Path)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		d := time.Since(start)
		metrics.RequestCount.WithLabelValues(r.Method, r.URL.Path, fmt.Sprint(rec.status)).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(d.Seconds())
		s.log.Response(r.Method, r.URL.Path, rec.status, d)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// sessionID returns the caller's session id, minting one when absent.
func sessionID(r *http.Request) string {
	if id := r.Header.Get(sessionHeader); id != "" {
		return id
	}
	if id := r.URL.Query().Get("session_id"); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
