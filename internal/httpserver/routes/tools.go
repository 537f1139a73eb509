package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/handlers"
)

func init() { Register(registerTools) }

func registerTools(r chi.Router, d deps.Deps) {
	api := r.With(host(d))

	api.With(rateLimit(d)).Post("/api/duplicate-check", handlers.CheckDuplicates(d))
	api.Post("/api/export", handlers.Export(d))
	api.With(cidr(d)).Get("/api/moderation/events", handlers.ModerationEvents(d))
}
