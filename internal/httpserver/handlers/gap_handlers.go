package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"accredia/internal/services/gap"
)

// RunGap computes coverage for ?standardId= (optionally scoped by ?orgId=)
// and persists a new immutable run.
func RunGap(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standardID := r.URL.Query().Get("standardId")
		if standardID == "" {
			respondError(w, http.StatusBadRequest, "standardId required")
			return
		}
		var orgID *string
		if v := r.URL.Query().Get("orgId"); v != "" {
			orgID = &v
		}
		summary, err := gap.Run(db, standardID, orgID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		lg.Infow("gap run", "standard", standardID, "coverage", summary.CoveragePct)
		respondData(w, summary)
	}
}

// GetGapRun fetches a prior run snapshot by id.
func GetGapRun(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := gap.Get(db, chi.URLParam(r, "runId"))
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondData(w, run)
	}
}
