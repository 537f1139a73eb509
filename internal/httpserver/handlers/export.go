package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/cardshelf/internal/export"
	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

// Export serves POST /api/export as a CSV attachment. An empty catalog is
// answered with 404.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialRequest
		if err := decodeJSON(w, r, d, &req, true); err != nil {
			writeError(w, r, d, err)
			return
		}

		table, err := d.Catalog.ExportVisibleCards(r.Context(), credential(r, req.Password))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if table.Empty() {
			writeJSON(w, http.StatusNotFound, errorResponse{
				Error:   http.StatusText(http.StatusNotFound),
				Message: "no cards to export",
			})
			return
		}

		var buf bytes.Buffer
		if err := table.WriteCSV(&buf); err != nil {
			writeError(w, r, d, err)
			return
		}

		filename := export.Filename(d.Now())
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			d.Logger.Debug("failed to write export", logger.Error(err))
		}
	}
}
