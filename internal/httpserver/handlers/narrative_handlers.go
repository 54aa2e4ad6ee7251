package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"accredia/internal/models"
	"accredia/internal/objstore"
	"accredia/internal/services/narrative"
)

// CreateNarrative generates a report synchronously and returns the
// completed run with its artifact keys.
func CreateNarrative(db *gorm.DB, store objstore.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StandardsID     string `json:"standardsId"`
			Scope           string `json:"scope"`
			IncludeEvidence bool   `json:"includeEvidence"`
			Tone            string `json:"tone"`
			Audience        string `json:"audience"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.StandardsID == "" {
			respondError(w, http.StatusBadRequest, "standardsId required")
			return
		}
		run, err := narrative.Generate(r.Context(), db, store, req.StandardsID, narrative.Options{
			Scope:           req.Scope,
			IncludeEvidence: req.IncludeEvidence,
			Tone:            req.Tone,
			Audience:        req.Audience,
		})
		if err != nil {
			respondServiceError(w, err)
			return
		}
		lg.Infow("narrative generated", "standard", req.StandardsID, "run", run.ID)
		respondData(w, run)
	}
}

// GetNarrative fetches a run's lifecycle record.
func GetNarrative(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var run models.NarrativeRun
		if err := db.First(&run, "id = ?", chi.URLParam(r, "runId")).Error; err != nil {
			respondError(w, http.StatusNotFound, "narrative run not found")
			return
		}
		respondData(w, run)
	}
}
