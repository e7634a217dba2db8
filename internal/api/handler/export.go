package handler

import (
	"fmt"
	"net/http"

	"github.com/gridline/fantasy-data/internal/api/respond"
)

// ExportCSV streams the season's players as a CSV attachment.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	season, ok := seasonParam(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="players_%d.csv"`, season))

	if err := h.store.WriteCSV(w, season); err != nil {
		// Headers may already be on the wire; log-and-abort is all
		// that is left.
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "EXPORT_ERROR", "failed to export CSV", err.Error())
	}
}
