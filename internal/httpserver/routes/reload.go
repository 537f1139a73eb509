package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/handlers"
)

func init() { Register(registerReload) }

func registerReload(r chi.Router, d deps.Deps) {
	r.With(cidr(d), host(d)).Post("/reload", handlers.Reload(d))
}
