package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/signalboard/pkg/database"
	"github.com/wonny/signalboard/pkg/logger"
)

// HealthChecker reports database health
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// HealthHandler answers load balancer health checks
type HealthHandler struct {
	db      HealthChecker
	service string
	log     *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db HealthChecker, service string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, service: service, log: log}
}

// Health returns 200 when the database answers, 503 otherwise
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, err := h.db.HealthCheck(ctx)
	if err != nil {
		h.log.WithError(err).Warn("Health check failed")
		respondJSON(w, http.StatusServiceUnavailable, CacheNone, map[string]interface{}{
			"status":   "degraded",
			"service":  h.service,
			"database": status,
		})
		return
	}

	respondJSON(w, http.StatusOK, CacheNone, map[string]interface{}{
		"status":   "ok",
		"service":  h.service,
		"database": status,
	})
}
