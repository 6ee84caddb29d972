package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	deps    map[string]Pinger
	timeout time.Duration
}

// NewHealthHandler creates a health handler. deps are checked by /ready only.
func NewHealthHandler(deps map[string]Pinger, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{deps: deps, timeout: timeout}
}

// Health reports liveness. It never depends on collaborators.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready returns the status of each dependency.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := map[string]interface{}{
		"status": "ready",
		"checks": checks,
	}
	statusCode := http.StatusOK

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			slog.Error("Readiness check failed", "dependency", name, "error", err)
			checks[name] = "unreachable"
			status["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check routes.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
}
