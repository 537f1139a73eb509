package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
)

type duplicateRequest struct {
	URL string `json:"url"`
}

type duplicateHint struct {
	ID          uint   `json:"id"`
	WebpageName string `json:"webpage_name"`
	URL         string `json:"url"`
}

type duplicateResponse struct {
	Duplicates []duplicateHint `json:"duplicates"`
}

// CheckDuplicates serves POST /api/duplicate-check.
func CheckDuplicates(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req duplicateRequest
		if err := decodeJSON(w, r, d, &req, false); err != nil {
			writeError(w, r, d, err)
			return
		}

		cards, err := d.Catalog.CheckDuplicates(r.Context(), req.URL)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		resp := duplicateResponse{Duplicates: make([]duplicateHint, 0, len(cards))}
		for _, c := range cards {
			resp.Duplicates = append(resp.Duplicates, duplicateHint{ID: c.ID, WebpageName: c.WebpageName, URL: c.URL})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
