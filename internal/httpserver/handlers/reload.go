package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
	"github.com/MrSnakeDoc/cardshelf/internal/utils"
)

// Reload triggers a seed import without waiting for it.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := utils.ClientIP(r, d.TrustProxy)

		if d.SeedTrigger == nil {
			writeJSON(w, http.StatusNotFound, ackResponse{Message: "no seed file configured"})
			return
		}

		select {
		case d.SeedTrigger <- struct{}{}:
			d.Logger.Info("manual seed import triggered via endpoint", logger.String("remote_ip", ip))
			writeJSON(w, http.StatusAccepted, ackResponse{Success: true, Message: "✅ seed import triggered"})
		default:
			d.Logger.Warn("seed import already pending", logger.String("remote_ip", ip))
			writeJSON(w, http.StatusTooManyRequests, ackResponse{Message: "⏳ seed import already pending, please wait"})
		}
	}
}
