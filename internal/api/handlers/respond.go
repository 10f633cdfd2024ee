package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/pkg/logger"
)

// Cache-Control values of the JSON API. Static per route, never derived from data age.
const (
	CacheSnapshot = "public, s-maxage=300, stale-while-revalidate=600"
	CachePrice    = "public, s-maxage=60, stale-while-revalidate=120"
	CacheNone     = "no-store"
)

func respondJSON(w http.ResponseWriter, status int, cacheControl string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if cacheControl != "" {
		w.Header().Set("Cache-Control", cacheControl)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes {"error": message}. Errors are never cached.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, CacheNone, map[string]string{
		"error": message,
	})
}

// respondLookupError maps repository errors: not found → 404, bad input → 400, else 500
func respondLookupError(w http.ResponseWriter, log *logger.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		respondError(w, http.StatusNotFound, notFound)
	case errors.Is(err, contracts.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).Error("Lookup failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// NotFound answers unknown API routes
func NotFound(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusNotFound, "Not found")
}
