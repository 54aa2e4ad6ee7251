package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/models"
)

// CreateStandard registers a standard with its item tree. CONTRIBUTOR.
func CreateStandard(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OrgID   string `json:"orgId"`
			Name    string `json:"name"`
			Version string `json:"version"`
			Items   []struct {
				Code  string `json:"code"`
				Title string `json:"title"`
				Path  string `json:"path"`
			} `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.OrgID == "" || strings.TrimSpace(req.Name) == "" {
			respondError(w, http.StatusBadRequest, "orgId and name required")
			return
		}
		if _, err := auth.RequireOrgRole(db, auth.Email(r.Context()), req.OrgID, models.RoleContributor); err != nil {
			respondServiceError(w, err)
			return
		}
		std := models.Standard{OrgID: req.OrgID, Name: strings.TrimSpace(req.Name), Version: req.Version}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&std).Error; err != nil {
				return err
			}
			for _, it := range req.Items {
				item := models.StandardItem{StandardID: std.ID, Code: it.Code, Title: it.Title, Path: it.Path}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		lg.Infow("standard created", "standard", std.ID, "items", len(req.Items))
		respondData(w, std)
	}
}

// ListStandards lists an organization's standards, newest first.
func ListStandards(db *gorm.DB) http.HandlerFunc {
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
		var stds []models.Standard
		_ = db.Where("org_id = ?", orgID).Order("created_at desc").Find(&stds).Error
		respondData(w, stds)
	}
}

// GetStandard returns one standard with items in path order.
func GetStandard(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var std models.Standard
		if err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("path asc")
		}).First(&std, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "standard not found")
			return
		}
		if _, err := auth.RequireOrgRole(db, auth.Email(r.Context()), std.OrgID, models.RoleViewer); err != nil {
			respondServiceError(w, err)
			return
		}
		respondData(w, std)
	}
}
