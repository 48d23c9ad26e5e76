package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ledgerview/internal/core"
	"ledgerview/internal/dashboard"
	"ledgerview/internal/log"
	"ledgerview/internal/middleware/trace"
	"ledgerview/internal/render"
)

// MsgRateLimited is shown when a client exceeds the /ui rate limit.
const MsgRateLimited = "Too many requests. Please wait a moment."

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.uptime).String(),
	})
}

// handleReady checks the templates and the upstream ledger.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	// A template that cannot render the empty view would fail every request.
	if err := s.renderer.Ledger(&bytes.Buffer{}, nil); err != nil {
		checks["templates"] = fmt.Sprintf("failed: %v", err)
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.ledger == nil:
		checks["ledger"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.ledger.Ping(ctx); err != nil {
			checks["ledger"] = fmt.Sprintf("failed: %v", err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["ledger"] = "ok"
		}
	}

	checks["sessions"] = map[string]any{"active": s.sessions.Len(), "status": "ok"}
	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.GetMetrics().ClientCount, "status": "ok"}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	rateLimitMetrics := s.limiter.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}

	w.WriteHeader(http.StatusOK)
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_requests_in_flight", "gauge", "Requests currently being served", traceMetrics.InFlight)
	metric("http_client_errors_total", "counter", "Responses with a 4xx status", traceMetrics.ClientErrors)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("http_response_time_avg_microseconds", "gauge", "Average response time", traceMetrics.AverageResponseTime)
	metric("ledger_loads_total", "counter", "Ledger loads attempted", s.metrics.loads.Load())
	metric("ledger_load_failures_total", "counter", "Ledger loads that failed", s.metrics.failures.Load())
	metric("ledger_not_found_total", "counter", "Ledger loads answered with 404", s.metrics.notFound.Load())
	metric("ledger_stale_results_total", "counter", "Load results discarded as stale", s.metrics.staleDrops.Load())
	metric("commands_rejected_total", "counter", "Commands rejected by validation", s.metrics.rejected.Load())
	metric("render_errors_total", "counter", "Template render failures", s.metrics.renderError.Load())
	metric("sessions_active", "gauge", "Live sessions", s.sessions.Len())
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.metrics.uptime).Seconds()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// Issue the session cookie with the page so the initial load reuses it.
	s.sessions.Resolve(w, r)

	var buf bytes.Buffer
	if err := s.renderer.Page(&buf, s.page); err != nil {
		s.renderFailed(r.Context(), render.PageTemplate, err)
		internalError(w, r, "page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, dashboard.ChipCommand{Endpoint: r.URL.Query().Get("endpoint")})
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.dispatch(w, r, dashboard.RangeCommand{Start: q.Get("start"), End: q.Get("end")})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.dispatch(w, r, dashboard.UserCommand{
		Input:    sanitizeInput(q.Get("user_id")),
		Endpoint: q.Get("endpoint"),
	})
}

// dispatch runs cmd against the caller's session and writes the outcome:
// a rejected or failed command answers 204 so htmx leaves the view alone,
// anything else swaps in the current ledger fragment.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, cmd dashboard.Command) {
	ctx := r.Context()
	id, state := s.sessions.Resolve(w, r)
	logger := log.FromContext(ctx).With(log.FieldSessionID, id)
	ctx = log.IntoContext(ctx, logger)

	out := s.controller.Dispatch(ctx, state, cmd)
	s.record(out)

	resp := NewHTMXResponse().Notify(out.Notice)
	if out.Failed() {
		resp.Status(http.StatusNoContent).Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Ledger(&buf, out.Records); err != nil {
		s.renderFailed(ctx, render.LedgerTemplate, err)
		NewHTMXResponse().
			Status(http.StatusNoContent).
			TriggerErrorNotification("Render failed").
			Write(w)
		return
	}
	resp.BodyHTML(&buf).Write(w)
}

func (s *Server) renderFailed(ctx context.Context, template string, err error) {
	s.metrics.renderError.Add(1)
	log.FromContext(ctx).WithComponent(log.ComponentTemplate).ErrorContext(ctx, "Template render failed",
		log.FieldOperation, log.OpRender,
		log.FieldTemplate, template,
		log.FieldErrorType, log.ErrorTypeInternal,
		log.FieldError, err)
}

func (s *Server) record(out dashboard.Outcome) {
	switch {
	case core.IsValidation(out.Err):
		s.metrics.rejected.Add(1)
		return
	case out.Stale:
		s.metrics.staleDrops.Add(1)
	case core.IsNotFound(out.Err):
		s.metrics.notFound.Add(1)
	case out.Failed():
		s.metrics.failures.Add(1)
	}
	s.metrics.loads.Add(1)
}

func (s *Server) handleExportText(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "text/plain; charset=utf-8", "transactions.txt", render.WriteText)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "text/csv; charset=utf-8", "transactions.csv", render.WriteCSV)
}

// export writes the session's current view state as a download. A request
// without a live session exports nothing.
func (s *Server) export(w http.ResponseWriter, r *http.Request, contentType, filename string,
	write func(io.Writer, []core.Transaction) error) {
	var records []core.Transaction
	id, state, ok := s.sessions.Peek(r)
	if ok {
		records = state.Snapshot()
	}

	var buf bytes.Buffer
	if err := write(&buf, records); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Export failed",
			log.FieldOperation, log.OpExport,
			log.FieldSessionID, id,
			log.FieldError, err)
		internalError(w, r, "export failed")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, extractClientIP(r),
		log.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		TriggerErrorNotification(MsgRateLimited).
		Write(w)
}

// internalError answers 500 quoting the request ID, which ties a user's
// report to the logs.
func internalError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Error(w, fmt.Sprintf("%s (request %s)", msg, trace.GetRequestID(r.Context())), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
