package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/wonny/signalboard/internal/digest"
	"github.com/wonny/signalboard/pkg/logger"
)

// DailyPath is the route of the daily cron endpoint
const DailyPath = "/api/cron/daily"

// DailyRunner runs the daily job once
type DailyRunner interface {
	Run(ctx context.Context, trigger string) (*digest.Result, error)
}

// CronHandler exposes the daily job to the external cron caller
type CronHandler struct {
	job    DailyRunner
	secret string
	log    *logger.Logger
}

// NewCronHandler creates a new cron handler. An empty secret disables the endpoint.
func NewCronHandler(job DailyRunner, secret string, log *logger.Logger) *CronHandler {
	return &CronHandler{
		job:    job,
		secret: secret,
		log:    log,
	}
}

// Daily runs the daily job
// GET /api/cron/daily
func (h *CronHandler) Daily(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		respondError(w, http.StatusServiceUnavailable, "Cron endpoint is not configured")
		return
	}
	if !h.authorized(r) {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.job.Run(r.Context(), "http")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Daily job failed")
		return
	}

	respondJSON(w, http.StatusOK, CacheNone, result)
}

// Weekly is a shim kept for existing cron configurations; it forwards to the daily job
// GET /api/cron/weekly
func (h *CronHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	target := DailyPath
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	w.Header().Set("Cache-Control", CacheNone)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (h *CronHandler) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}
