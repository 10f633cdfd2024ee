package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/pkg/logger"
	"github.com/wonny/signalboard/pkg/metrics"
	"github.com/wonny/signalboard/pkg/redis"
)

// RecommendationHandler serves the latest daily and weekly lists
// ⭐ SSOT: 추천 목록 API 핸들러는 이 구조체에서만
type RecommendationHandler struct {
	repo contracts.RecommendationRepository
	rt   readThrough
	log  *logger.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(repo contracts.RecommendationRepository, cache *redis.Cache, rec *metrics.Recorder, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		repo: repo,
		rt:   readThrough{cache: cache, metrics: rec},
		log:  log,
	}
}

// GetLatest returns the newest batch of a period
// GET /api/recommendations/{period}
func (h *RecommendationHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	period, err := contracts.ParsePeriod(mux.Vars(r)["period"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := cached(r.Context(), h.rt, redis.KeyRecommendations, redis.RecommendationsKey(string(period)), redis.TTLSnapshot,
		func(ctx context.Context) (*contracts.RecommendationList, error) {
			return h.repo.Latest(ctx, period)
		})
	if err != nil {
		respondLookupError(w, h.log.WithField("period", period), err, "No "+string(period)+" recommendations available")
		return
	}

	respondJSON(w, http.StatusOK, CacheSnapshot, list)
}
