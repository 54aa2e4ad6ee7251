package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/services/search"
)

// Search runs a ranked full-text query scoped to the caller's
// organizations. ?type=documents collapses to one hit per document.
func Search(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			respondError(w, http.StatusBadRequest, "q required")
			return
		}
		orgIDs, err := auth.OrgIDsForEmail(db, auth.Email(r.Context()))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		hits, err := search.Query(db, q, orgIDs)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if r.URL.Query().Get("type") == "documents" {
			hits = search.CollapseByDocument(hits)
		}
		respondData(w, hits)
	}
}
