package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/pkg/logger"
	"github.com/wonny/signalboard/pkg/metrics"
	"github.com/wonny/signalboard/pkg/redis"
)

// PerformanceHandler serves the precomputed strategy vs benchmark payload
type PerformanceHandler struct {
	repo contracts.PerformanceRepository
	rt   readThrough
	log  *logger.Logger
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(repo contracts.PerformanceRepository, cache *redis.Cache, rec *metrics.Recorder, log *logger.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		repo: repo,
		rt:   readThrough{cache: cache, metrics: rec},
		log:  log,
	}
}

// GetPerformance returns the newest payload
// GET /api/performance
func (h *PerformanceHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	payload, err := cached(r.Context(), h.rt, redis.KeyPerformance, redis.PerformanceKey(), redis.TTLSnapshot,
		func(ctx context.Context) (*contracts.PerformancePayload, error) {
			return h.repo.Latest(ctx)
		})
	if err != nil {
		respondLookupError(w, h.log, err, "No performance data available")
		return
	}

	respondJSON(w, http.StatusOK, CacheSnapshot, payload)
}
