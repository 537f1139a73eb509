package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/cardshelf/internal/catalog"
	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
)

type reorderRequest struct {
	CardOrders []catalog.ReorderEntry `json:"card_orders"`
	Password   string                 `json:"password"`
}

// ReorderCards serves POST /api/cards/reorder. A partly applied batch is
// answered with 207 and the full result.
func ReorderCards(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := decodeJSON(w, r, d, &req, false); err != nil {
			writeError(w, r, d, err)
			return
		}

		res, err := d.Catalog.ReorderCards(r.Context(), req.CardOrders, credential(r, req.Password))
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		status := http.StatusOK
		if res.Partial {
			status = http.StatusMultiStatus
		}
		writeJSON(w, status, res)
	}
}
