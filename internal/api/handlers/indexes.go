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

// IndexHandler serves index membership
type IndexHandler struct {
	repo contracts.IndexRepository
	rt   readThrough
	log  *logger.Logger
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(repo contracts.IndexRepository, cache *redis.Cache, rec *metrics.Recorder, log *logger.Logger) *IndexHandler {
	return &IndexHandler{
		repo: repo,
		rt:   readThrough{cache: cache, metrics: rec},
		log:  log,
	}
}

// GetMembers returns the members of the newest snapshot of an index
// GET /api/indexes/{index}/members, GET /api/indexes/members (SP500)
func (h *IndexHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	code, err := contracts.NormalizeIndexCode(mux.Vars(r)["index"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	membership, err := cached(r.Context(), h.rt, redis.KeyIndexes, redis.IndexMembersKey(code), redis.TTLSnapshot,
		func(ctx context.Context) (*contracts.IndexMembership, error) {
			snapshot, err := h.repo.LatestSnapshot(ctx, code)
			if err != nil {
				return nil, err
			}
			members, err := h.repo.Members(ctx, snapshot.ID)
			if err != nil {
				return nil, err
			}
			return contracts.NewIndexMembership(snapshot, members), nil
		})
	if err != nil {
		respondLookupError(w, h.log.WithField("index", code), err, "No snapshot for index "+code)
		return
	}

	respondJSON(w, http.StatusOK, CacheSnapshot, membership)
}
