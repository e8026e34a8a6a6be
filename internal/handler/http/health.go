// Package http provides the HTTP middleware, health probes and metrics
// plumbing shared by the news API handlers.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"news-api/internal/handler/http/respond"
)

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// PoolChecker is the view of the connection pool the probes need.
type PoolChecker interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
	BreakerState() string
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"` // RFC 3339, UTC
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler reports database connectivity, pool utilization and the
// circuit breaker state.
type HealthHandler struct {
	Pool    PoolChecker
	Version string
	Now     func() time.Time
}

// ServeHTTP returns 200 while the database answers (even when degraded),
// 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var dbCheck CheckStatus
	if h.Pool == nil {
		dbCheck = CheckStatus{Status: StatusUnhealthy, Message: "not configured"}
	} else {
		dbCheck = h.checkDatabase(ctx)
	}

	status, code := StatusHealthy, http.StatusOK
	switch dbCheck.Status {
	case StatusUnhealthy:
		status, code = StatusUnhealthy, http.StatusServiceUnavailable
	case StatusDegraded:
		status = StatusDegraded
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: now().UTC().Format(time.RFC3339),
		Checks:    map[string]CheckStatus{"database": dbCheck},
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	breaker := h.Pool.BreakerState()
	if err := h.Pool.PingContext(ctx); err != nil {
		slog.Warn("health check: database ping failed", slog.String("error", respond.SanitizeError(err)))
		return CheckStatus{
			Status:  StatusUnhealthy,
			Message: "database unreachable",
			Details: map[string]any{"circuit_breaker": breaker},
		}
	}

	stats := h.Pool.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"circuit_breaker":      breaker,
	}

	if breaker == "open" || breaker == "half-open" {
		return CheckStatus{Status: StatusDegraded, Message: "circuit breaker " + breaker, Details: details}
	}

	// MaxOpenConnections 0 means unlimited; utilization is undefined.
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{Status: StatusDegraded, Message: "connection pool max connections not configured", Details: details}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80.0 {
		return CheckStatus{Status: StatusDegraded, Message: "connection pool utilization above 80%", Details: details}
	}

	return CheckStatus{Status: StatusHealthy, Details: details}
}

// ReadyHandler answers readiness probes: 200 "ready" once the database responds.
type ReadyHandler struct {
	Pool PoolChecker
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Pool == nil {
		respond.Message(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	if err := h.Pool.PingContext(ctx); err != nil {
		slog.Warn("readiness check failed", slog.String("error", respond.SanitizeError(err)))
		respond.Message(w, http.StatusServiceUnavailable, "database not ready")
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler answers liveness probes and always returns 200 "alive".
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
