package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// ModerationEvents serves GET /api/moderation/events?limit=N.
func ModerationEvents(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := int64(defaultEventLimit)
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
				limit = min(n, maxEventLimit)
			}
		}

		events, err := d.Catalog.ModerationEvents(r.Context(), limit, credential(r, ""))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}
