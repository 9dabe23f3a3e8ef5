package handlers

import (
	"net/http"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/application/services"
)

// HealthHandler reports process liveness and research cache stats.
type HealthHandler struct {
	cache *services.ResearchCache
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cache *services.ResearchCache) *HealthHandler {
	return &HealthHandler{cache: cache}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"status": "ok",
	}
	if h.cache != nil {
		hits, misses := h.cache.Stats()
		payload["cache"] = map[string]interface{}{
			"entries": h.cache.Len(),
			"hits":    hits,
			"misses":  misses,
		}
	}
	respondWithJSON(w, http.StatusOK, payload)
}
