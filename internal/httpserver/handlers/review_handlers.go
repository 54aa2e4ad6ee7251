package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/models"
	"accredia/internal/services/mapping"
	"accredia/internal/services/review"
)

// MapReview confirms and rejects evidence links in bulk.
func MapReview(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Confirm []int64 `json:"confirm"`
			Reject  []int64 `json:"reject"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := review.Review(db, auth.Email(r.Context()), req.Confirm, req.Reject)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		if len(updated) > 0 {
			lg.Infow("evidence reviewed", "confirmed", len(req.Confirm), "rejected", len(req.Reject))
		}
		respondData(w, updated)
	}
}

// AutoMap proposes AUTO evidence links by keyword-matching a document's
// extracted text against a standard's items.
func AutoMap(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StandardID string `json:"standardId"`
			DocumentID string `json:"documentId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.StandardID == "" || req.DocumentID == "" {
			respondError(w, http.StatusBadRequest, "standardId and documentId required")
			return
		}
		var doc models.Document
		if err := db.First(&doc, "id = ? AND is_deleted = false", req.DocumentID).Error; err != nil {
			respondError(w, http.StatusNotFound, "document not found")
			return
		}
		if _, err := auth.RequireOrgRole(db, auth.Email(r.Context()), doc.OrgID, models.RoleContributor); err != nil {
			respondServiceError(w, err)
			return
		}
		links, err := mapping.AutoMap(db, req.StandardID, req.DocumentID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		lg.Infow("auto map", "standard", req.StandardID, "document", req.DocumentID, "links", len(links))
		respondData(w, links)
	}
}
