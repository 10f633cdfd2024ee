package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/wonny/signalboard/internal/contracts"
	"github.com/wonny/signalboard/pkg/logger"
)

// NewsletterService is the subscription logic behind the popup form
type NewsletterService interface {
	Subscribe(ctx context.Context, email, source string) (*contracts.SubscribeResult, error)
	Unsubscribe(ctx context.Context, email string) (bool, error)
}

// NewsletterHandler handles the popup, footer and unsubscribe forms
type NewsletterHandler struct {
	service NewsletterService
	limiter Limiter
	log     *logger.Logger
}

// NewNewsletterHandler creates a new newsletter handler
func NewNewsletterHandler(service NewsletterService, limiter Limiter, log *logger.Logger) *NewsletterHandler {
	return &NewsletterHandler{
		service: service,
		limiter: limiter,
		log:     log,
	}
}

// SubscribeRequest is the popup form body
type SubscribeRequest struct {
	Email  string `json:"email" validate:"required,email,max=254"`
	Source string `json:"source" default:"popup" validate:"oneof=popup footer pricing platform"`
}

// Normalize trims pasted whitespace; an empty source falls back to its default
func (r *SubscribeRequest) Normalize() {
	r.Email = contracts.NormalizeEmail(r.Email)
	r.Source = strings.ToLower(strings.TrimSpace(r.Source))
}

// UnsubscribeRequest is the unsubscribe form body
type UnsubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// Normalize trims pasted whitespace
func (r *UnsubscribeRequest) Normalize() {
	r.Email = contracts.NormalizeEmail(r.Email)
}

// Subscribe stores an address
// POST /api/newsletter/subscribe
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	allowed, err := h.limiter.Allow(r.Context(), ip)
	if err != nil {
		// limiter outage must not block signups
		h.log.WithError(err).Warn("Rate limiter unavailable")
		allowed = true
	}
	if !allowed {
		w.Header().Set("Retry-After", "60")
		respondError(w, http.StatusTooManyRequests, "Too many requests, try again in a minute")
		return
	}

	var req SubscribeRequest
	if err := bindAndValidate(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Subscribe(r.Context(), req.Email, req.Source)
	if err != nil {
		h.log.WithError(err).WithField("source", req.Source).Error("Subscribe failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, CacheNone, map[string]interface{}{
		"ok":                true,
		"alreadySubscribed": !result.Created && !result.Reactivated,
	})
}

// Unsubscribe deactivates an address; unknown addresses still succeed
// POST /api/newsletter/unsubscribe
func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req UnsubscribeRequest
	if err := bindAndValidate(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.service.Unsubscribe(r.Context(), req.Email); err != nil {
		h.log.WithError(err).Error("Unsubscribe failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, CacheNone, map[string]bool{"ok": true})
}
