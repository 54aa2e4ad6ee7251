package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/models"
)

// ListDocuments lists an organization's live documents, newest first.
func ListDocuments(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := r.URL.Query().Get("orgId")
		if orgID == "" {
			respondError(w, http.StatusBadRequest, "orgId required")
			return
		}
		if _, err := auth.RequireOrgRole(db, auth.Email(r.Context()), orgID, models.RoleViewer); err != nil {
			respondServiceError(w, err)
			return
		}
		var docs []models.Document
		_ = db.Where("org_id = ? AND is_deleted = false", orgID).Order("created_at desc").Find(&docs).Error
		respondData(w, docs)
	}
}

// GetDocument returns one document with its version history.
func GetDocument(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var doc models.Document
		if err := db.First(&doc, "id = ? AND is_deleted = false", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "document not found")
			return
		}
		if _, err := auth.RequireOrgRole(db, auth.Email(r.Context()), doc.OrgID, models.RoleViewer); err != nil {
			respondServiceError(w, err)
			return
		}
		var versions []models.DocumentVersion
		_ = db.Where("document_id = ?", id).Order("version asc").Find(&versions).Error
		respondData(w, map[string]any{"document": doc, "versions": versions})
	}
}
