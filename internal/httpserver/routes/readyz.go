package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/handlers"
)

func init() { Register(registerReadyz) }

func registerReadyz(r chi.Router, d deps.Deps) {
	r.With(cidr(d)).Get("/readyz", handlers.Readyz(d))
}
