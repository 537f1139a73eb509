package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

const readyzTimeout = 2 * time.Second

type componentStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz checks the database and, when configured, Redis. The database is
// required; a Redis failure only disables the moderation log, so it is
// reported without failing readiness.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		resp := readyzResponse{Ready: true, Components: map[string]componentStatus{}}

		if err := d.Catalog.Ping(ctx); err != nil {
			d.Logger.Warn("database not ready", logger.Error(err))
			resp.Ready = false
			resp.Components["database"] = componentStatus{Error: "unreachable"}
		} else {
			resp.Components["database"] = componentStatus{OK: true}
		}

		if d.RedisClient != nil {
			if err := d.RedisClient.Ping(ctx).Err(); err != nil {
				d.Logger.Warn("redis not ready", logger.Error(err))
				resp.Components["redis"] = componentStatus{Error: "unreachable"}
			} else {
				resp.Components["redis"] = componentStatus{OK: true}
			}
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
