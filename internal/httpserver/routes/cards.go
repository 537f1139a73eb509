package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/handlers"
)

func init() { Register(registerCards) }

func registerCards(r chi.Router, d deps.Deps) {
	api := r.With(host(d))

	api.Get("/api/cards", handlers.ListCards(d))
	api.With(rateLimit(d)).Post("/api/cards", handlers.CreateCard(d))
	api.Post("/api/cards/reorder", handlers.ReorderCards(d))
	api.Get("/api/cards/{id}", handlers.GetCard(d))
	api.Put("/api/cards/{id}", handlers.UpdateCard(d))
	api.Delete("/api/cards/{id}", handlers.HideCard(d))
	api.With(cidr(d)).Delete("/api/cards/{id}/purge", handlers.PurgeCard(d))
}
