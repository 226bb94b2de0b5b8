// Package health exposes the aggregate dependency health endpoint.
package health

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/imagevault/service/internal/response"
)

// probeTimeout bounds each individual dependency check.
const probeTimeout = 3 * time.Second

// Pinger is the reachability probe each backend exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to the Pinger interface.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Status is the aggregate health report.
type Status struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Handler checks every registered dependency and reports the aggregate.
type Handler struct {
	log      *zap.Logger
	backends map[string]Pinger
}

// NewHandler creates a health Handler over the named backend probes.
func NewHandler(log *zap.Logger, database, kv, objectStore Pinger) *Handler {
	return &Handler{
		log: log,
		backends: map[string]Pinger{
			"database":     database,
			"cache":        kv,
			"object_store": objectStore,
		},
	}
}

// Check godoc
//
//	@Summary		Health check
//	@Description	Reports per-dependency health. Any degraded dependency yields 503.
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	Status
//	@Failure		503	{object}	Status
//	@Router			/health [get]
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	status := Status{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  make(map[string]string, len(h.backends)),
	}

	for name, backend := range h.backends {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := backend.Ping(ctx)
		cancel()
		if err != nil {
			status.Services[name] = "unhealthy"
			status.Status = "degraded"
			h.log.Error("health check failed",
				zap.String("backend", name),
				zap.Error(err))
			continue
		}
		status.Services[name] = "healthy"
	}

	if status.Status != "healthy" {
		response.ServiceUnavailable(w, status)
		return
	}
	response.OK(w, status)
}
