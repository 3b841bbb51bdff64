package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"LinkGuard-Backend/internal/repository"
)

// QueueInfo exposes queue occupancy for the metrics endpoint.
type QueueInfo interface {
	Len() int
	Cap() int
}

// HealthHandler serves health checks and basic process metrics.
type HealthHandler struct {
	storage repository.Storage
	queues  map[string]QueueInfo
	log     *zap.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(storage repository.Storage, queues map[string]QueueInfo, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		queues:  queues,
		log:     log,
	}
}

// HealthResponse is the health check response body.
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	DatabaseStatus string    `json:"database_status"`
	Uptime         string    `json:"uptime,omitempty"`
}

var startTime = time.Now()

// Health is the main health check endpoint.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"

	// A lookup for a hash that cannot exist exercises the full storage
	// path; anything other than not-found means storage trouble.
	_, err := h.storage.FindShortURLByHash(ctx, "00000000")
	if err != nil && !errors.Is(err, repository.ErrHashNotFound) {
		dbStatus = "unhealthy"
		h.log.Error("database health check failed", zap.Error(err))
	}

	status := "healthy"
	statusCode := http.StatusOK
	if dbStatus == "unhealthy" {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.log, statusCode, HealthResponse{
		Status:         status,
		Timestamp:      time.Now(),
		DatabaseStatus: dbStatus,
		Uptime:         time.Since(startTime).String(),
	})
}

// Ready is the readiness probe endpoint.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// Metrics reports process uptime and queue occupancy.
func (h *HealthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	queues := make(map[string]interface{}, len(h.queues))
	for name, q := range h.queues {
		queues[name] = map[string]int{
			"length":   q.Len(),
			"capacity": q.Cap(),
		}
	}

	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"uptime_seconds": time.Since(startTime).Seconds(),
		"timestamp":      time.Now(),
		"queues":         queues,
	})
}
