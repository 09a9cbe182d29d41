// Package api exposes the HTTP interface for the scraper service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/npblake/sponavi-crawler/internal/baseball"
	"github.com/npblake/sponavi-crawler/internal/metrics"
	"github.com/npblake/sponavi-crawler/internal/orchestrator"
	"github.com/npblake/sponavi-crawler/internal/store"
)

// Trigger starts scrape runs.
type Trigger interface {
	Run(ctx context.Context, start, end time.Time) (orchestrator.Report, error)
	RunPlayers(ctx context.Context) (orchestrator.Report, error)
}

// Server wires HTTP handlers to the run trigger and the run ledger.
type Server struct {
	router  chi.Router
	trigger Trigger
	logger  *zap.Logger
}

const readTimeout = 30 * time.Second

// NewServer constructs a Server with middleware and routes. runs may be nil,
// in which case the ledger routes answer 503.
func NewServer(trigger Trigger, runs store.RunRepository, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("api")
	s := &Server{trigger: trigger, logger: logger}
	runHandler := NewRunHandler(runs, logger)

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Post("/pubsub/push", s.push)

	r.Group(func(r chi.Router) {
		r.Use(timeoutMiddleware(readTimeout))
		r.Get("/runs", runHandler.ListRuns)
		r.Get("/runs/{flow_id}", runHandler.GetRun)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pushEnvelope is the body Pub/Sub push subscriptions deliver.
type pushEnvelope struct {
	Message struct {
		Data       []byte            `json:"data"`
		Attributes map[string]string `json:"attributes"`
		MessageID  string            `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// RunRequest is the decoded message payload of a push trigger.
type RunRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Players   bool   `json:"players"`
}

// push runs the requested scrape synchronously. Pub/Sub retries on any non-2xx
// answer, so payload errors return 400 and run errors 500.
func (s *Server) push(w http.ResponseWriter, r *http.Request) {
	if s.trigger == nil {
		writeError(w, http.StatusServiceUnavailable, "runner unavailable")
		return
	}
	var env pushEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeError(w, http.StatusBadRequest, "invalid push envelope")
		return
	}
	var req RunRequest
	if err := json.Unmarshal(env.Message.Data, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid message data")
		return
	}
	logger := s.logger.With(zap.String("message_id", env.Message.MessageID))

	if req.StartDate != "" || req.EndDate != "" {
		start, end, err := parseRange(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		report, err := s.trigger.Run(r.Context(), start, end)
		if err != nil {
			logger.Error("push run failed", zap.String("flow_id", report.FlowID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "run failed")
			return
		}
		logger.Info("push run finished", zap.String("flow_id", report.FlowID), zap.Int("games", report.Games))
	} else if !req.Players {
		writeError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}

	if req.Players {
		report, err := s.trigger.RunPlayers(r.Context())
		if err != nil {
			logger.Error("push player run failed", zap.String("flow_id", report.FlowID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "player run failed")
			return
		}
		logger.Info("push player run finished", zap.String("flow_id", report.FlowID), zap.Int("players", report.Players))
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseRange(req RunRequest) (time.Time, time.Time, error) {
	endDate := req.EndDate
	if endDate == "" {
		endDate = req.StartDate
	}
	start, err := time.Parse(baseball.DateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start_date")
	}
	end, err := time.Parse(baseball.DateLayout, strings.TrimSpace(endDate))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end_date")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end_date is before start_date")
	}
	return start, end, nil
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestIDKey struct{}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			reqID, _ := r.Context().Value(requestIDKey{}).(string)
			logger.Info("request completed",
				zap.String("request_id", reqID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
