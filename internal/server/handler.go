package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"yieldRecon/internal/model"
	"yieldRecon/internal/reconcile"
)

const internalError = "internal error"

// HTTPMetrics records served requests.
type HTTPMetrics interface {
	ObserveRequest(handler, method string, code int, started time.Time)
}

// HandlerConfig configures the HTTP surface.
type HandlerConfig struct {
	// AuthToken is the shared bearer secret. An empty token rejects every trigger.
	AuthToken string
	// SchedulerHeader, when present on a request, labels it as a scheduler trigger.
	SchedulerHeader string
}

type results struct {
	Processed int `json:"processed"`
	Applied   int `json:"applied"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

type response struct {
	Success    bool     `json:"success"`
	Stream     string   `json:"stream"`
	FromBlock  uint64   `json:"fromBlock"`
	ToBlock    uint64   `json:"toBlock"`
	Results    *results `json:"results,omitempty"`
	DurationMs int64    `json:"durationMs"`
	Skipped    bool     `json:"skipped,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	cfg     HandlerConfig
	trigger *Trigger
	metrics HTTPMetrics
	logger  *zap.Logger
}

// NewHandler returns the HTTP routes: the authenticated trigger endpoints,
// health probes and Prometheus metrics.
func NewHandler(cfg HandlerConfig, trigger *Trigger, health *HealthChecker, metrics HTTPMetrics, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if health == nil {
		health = NewHealthChecker()
		health.SetReady(true)
	}
	h := &handler{cfg: cfg, trigger: trigger, metrics: metrics, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /reconcile/{stream}", h.instrument("reconcile", h.authenticated(h.run)))
	mux.HandleFunc("POST /reconcile/{stream}", h.instrument("reconcile", h.authenticated(h.run)))
	mux.HandleFunc("POST /reconcile/{stream}/replay", h.instrument("replay", h.authenticated(h.replay)))
	mux.HandleFunc("POST /reconcile/{stream}/retry-failed", h.instrument("retry_failed", h.authenticated(h.retryFailed)))
	mux.HandleFunc("GET /healthz", health.LivenessHandler)
	mux.HandleFunc("GET /readyz", health.ReadinessHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (h *handler) run(w http.ResponseWriter, r *http.Request) {
	stream := r.PathValue("stream")
	outcome, err := h.trigger.Run(passContext(r), stream, h.source(r))
	h.respond(w, stream, outcome, err)
}

func (h *handler) replay(w http.ResponseWriter, r *http.Request) {
	stream := r.PathValue("stream")
	from, errFrom := strconv.ParseUint(r.URL.Query().Get("from"), 10, 64)
	to, errTo := strconv.ParseUint(r.URL.Query().Get("to"), 10, 64)
	if errFrom != nil || errTo != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "from and to must be block numbers"})
		return
	}
	outcome, err := h.trigger.Replay(passContext(r), stream, h.source(r), from, to)
	h.respond(w, stream, outcome, err)
}

func (h *handler) retryFailed(w http.ResponseWriter, r *http.Request) {
	stream := r.PathValue("stream")
	outcome, err := h.trigger.RetryFailed(passContext(r), stream, h.source(r))
	h.respond(w, stream, outcome, err)
}

func (h *handler) respond(w http.ResponseWriter, stream string, outcome Outcome, err error) {
	switch {
	case errors.Is(err, reconcile.ErrUnknownStream):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown stream"})
		return
	case errors.Is(err, reconcile.ErrInvalidRange):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid block range"})
		return
	case err != nil:
		h.logger.Error("reconciliation failed",
			zap.String("stream", stream),
			zap.String("phase", string(outcome.Summary.Phase)),
			zap.Uint64("from", outcome.Summary.FromBlock),
			zap.Uint64("to", outcome.Summary.ToBlock),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: internalError})
		return
	}

	s := outcome.Summary
	resp := response{
		Success:    true,
		Stream:     stream,
		FromBlock:  s.FromBlock,
		ToBlock:    s.ToBlock,
		DurationMs: s.DurationMs,
	}
	switch {
	case outcome.Disabled:
		resp.Skipped, resp.Reason = true, "disabled"
	case errors.Is(outcome.Skip, model.ErrLockUnavailable):
		resp.Skipped, resp.Reason = true, "lock held by another instance"
	default:
		resp.Results = &results{
			Processed: s.Processed,
			Applied:   s.Applied,
			Failed:    s.Failed,
			Skipped:   s.Skipped,
		}
		if s.Phase == model.PhaseIdle && s.Idle {
			resp.Reason = "up to date"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret := strings.TrimSpace(h.cfg.AuthToken)
		if secret == "" {
			h.logger.Error("trigger rejected: auth token not configured", zap.String("path", r.URL.Path))
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		token, ok := bearerToken(r)
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			h.logger.Warn("trigger rejected: bad credentials", zap.String("path", r.URL.Path), zap.String("remote", r.RemoteAddr))
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		next(w, r)
	}
}

func (h *handler) instrument(name string, next http.HandlerFunc) http.HandlerFunc {
	if h.metrics == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(wrapped, r)
		h.metrics.ObserveRequest(name, r.Method, wrapped.statusCode, started)
	}
}

// source labels the trigger. The header never replaces the bearer check.
func (h *handler) source(r *http.Request) string {
	if h.cfg.SchedulerHeader != "" && r.Header.Get(h.cfg.SchedulerHeader) != "" {
		return SourceScheduler
	}
	return SourceManual
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// passContext detaches the pass from the client connection. A scheduler that
// gives up waiting must not cancel a pass midway; the lease bounds it instead.
func passContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
