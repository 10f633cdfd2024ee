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

// PriceHandler serves single ticker quotes
type PriceHandler struct {
	repo contracts.PriceRepository
	rt   readThrough
	log  *logger.Logger
}

// NewPriceHandler creates a new price handler
func NewPriceHandler(repo contracts.PriceRepository, cache *redis.Cache, rec *metrics.Recorder, log *logger.Logger) *PriceHandler {
	return &PriceHandler{
		repo: repo,
		rt:   readThrough{cache: cache, metrics: rec},
		log:  log,
	}
}

// GetPrice returns the latest stored price of a ticker
// GET /api/prices/{ticker}
func (h *PriceHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	ticker, err := contracts.NormalizeTicker(mux.Vars(r)["ticker"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	price, err := cached(r.Context(), h.rt, redis.KeyPrices, redis.PriceKey(ticker), redis.TTLPrice,
		func(ctx context.Context) (*contracts.Price, error) {
			return h.repo.Latest(ctx, ticker)
		})
	if err != nil {
		respondLookupError(w, h.log.WithField("ticker", ticker), err, "No price for "+ticker)
		return
	}

	respondJSON(w, http.StatusOK, CachePrice, price)
}
