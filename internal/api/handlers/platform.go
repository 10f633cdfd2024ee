package handlers

import (
	"net/http"

	"github.com/wonny/signalboard/internal/platform"
)

// PlatformHandler serves the signed-in dashboard API
type PlatformHandler struct{}

// NewPlatformHandler creates a new platform handler
func NewPlatformHandler() *PlatformHandler {
	return &PlatformHandler{}
}

// Me returns the current user; the auth middleware guarantees a session
// GET /api/platform/me
func (h *PlatformHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := platform.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	respondJSON(w, http.StatusOK, CacheNone, map[string]string{
		"userId": s.UserID,
		"email":  s.Email,
		"plan":   s.Plan,
	})
}
