package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/cardshelf/internal/catalog"
	"github.com/MrSnakeDoc/cardshelf/internal/domain"
	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
)

type cardRequest struct {
	URL                string            `json:"url"`
	WebpageName        string            `json:"webpage_name"`
	UserSummary        string            `json:"user_summary"`
	UsefulSubjects     domain.StringList `json:"useful_subjects"`
	Keyword            domain.StringList `json:"keyword"`
	EducationalMeaning string            `json:"educational_meaning"`
	ThumbnailURL       *string           `json:"thumbnail_url"`
	Category           string            `json:"ai_category"`
	View               *domain.View      `json:"view"`
	Password           string            `json:"password"`
}

func (c cardRequest) fields() domain.CardFields {
	return domain.CardFields{
		URL:                c.URL,
		WebpageName:        c.WebpageName,
		UserSummary:        c.UserSummary,
		UsefulSubjects:     c.UsefulSubjects,
		Keyword:            c.Keyword,
		EducationalMeaning: c.EducationalMeaning,
		ThumbnailURL:       c.ThumbnailURL,
		Category:           c.Category,
		View:               c.View,
	}
}

type credentialRequest struct {
	Password string `json:"password"`
}

// ListCards serves GET /api/cards?search=&category=&subject=&admin=true.
func ListCards(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		cards, err := d.Catalog.ListCards(r.Context(), catalog.ListParams{
			Search:        q.Get("search"),
			Category:      q.Get("category"),
			Subject:       q.Get("subject"),
			IncludeHidden: queryBool(r, "admin"),
			Credential:    credential(r, ""),
		})
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, cards)
	}
}

// GetCard serves GET /api/cards/{id}. With admin=true hidden cards are
// returned to an admin caller.
func GetCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := cardID(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		var card *domain.Card
		if queryBool(r, "admin") {
			card, err = d.Catalog.GetCardForModeration(r.Context(), id, credential(r, ""))
		} else {
			card, err = d.Catalog.GetCard(r.Context(), id)
		}
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

// CreateCard serves POST /api/cards.
func CreateCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cardRequest
		if err := decodeJSON(w, r, d, &req, false); err != nil {
			writeError(w, r, d, err)
			return
		}

		card, err := d.Catalog.CreateCard(r.Context(), req.fields())
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, card)
	}
}

// UpdateCard serves PUT /api/cards/{id}.
func UpdateCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := cardID(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var req cardRequest
		if err := decodeJSON(w, r, d, &req, false); err != nil {
			writeError(w, r, d, err)
			return
		}

		card, err := d.Catalog.UpdateCard(r.Context(), id, req.fields(), credential(r, req.Password))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

// HideCard serves DELETE /api/cards/{id}. The card is hidden, not deleted.
func HideCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := cardID(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var req credentialRequest
		if err := decodeJSON(w, r, d, &req, true); err != nil {
			writeError(w, r, d, err)
			return
		}

		if err := d.Catalog.HideCard(r.Context(), id, credential(r, req.Password)); err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, ackResponse{Success: true, Message: "card hidden"})
	}
}

// PurgeCard serves DELETE /api/cards/{id}/purge.
func PurgeCard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := cardID(r)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		var req credentialRequest
		if err := decodeJSON(w, r, d, &req, true); err != nil {
			writeError(w, r, d, err)
			return
		}

		if err := d.Catalog.PurgeCard(r.Context(), id, credential(r, req.Password)); err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, ackResponse{Success: true, Message: "card purged"})
	}
}
