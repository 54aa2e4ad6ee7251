package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/models"
)

// PrivacyExport bundles an organization's data as JSON. OWNER only.
func PrivacyExport(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := r.URL.Query().Get("orgId")
		if orgID == "" {
			respondError(w, http.StatusBadRequest, "orgId required")
			return
		}
		if _, err := auth.RequireOrgRole(db, auth.Email(r.Context()), orgID, models.RoleOwner); err != nil {
			respondServiceError(w, err)
			return
		}
		var org models.Organization
		if err := db.First(&org, "id = ?", orgID).Error; err != nil {
			respondError(w, http.StatusNotFound, "organization not found")
			return
		}
		var memberships []models.Membership
		_ = db.Where("org_id = ?", orgID).Find(&memberships).Error
		var docs []models.Document
		_ = db.Where("org_id = ?", orgID).Order("created_at desc").Find(&docs).Error
		var versions []models.DocumentVersion
		_ = db.Joins("JOIN documents ON documents.id = document_versions.document_id").
			Where("documents.org_id = ?", orgID).Find(&versions).Error
		var gapRuns []models.GapRun
		_ = db.Where("org_id = ?", orgID).Order("created_at desc").Find(&gapRuns).Error
		var auditCount int64
		_ = db.Model(&models.AuditLog{}).Where("org_id = ?", orgID).Count(&auditCount).Error

		lg.Infow("privacy export", "org", orgID)
		respondData(w, map[string]any{
			"organization": org,
			"memberships":  memberships,
			"documents":    docs,
			"versions":     versions,
			"gap_runs":     gapRuns,
			"audit_count":  auditCount,
		})
	}
}

// PrivacyDelete soft-deletes all of an organization's documents and records
// one audit entry, atomically. OWNER only.
func PrivacyDelete(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OrgID string `json:"orgId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.OrgID == "" {
			respondError(w, http.StatusBadRequest, "orgId required")
			return
		}
		member, err := auth.RequireOrgRole(db, auth.Email(r.Context()), req.OrgID, models.RoleOwner)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		var affected int64
		err = db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Document{}).
				Where("org_id = ? AND is_deleted = false", req.OrgID).
				Update("is_deleted", true)
			if res.Error != nil {
				return res.Error
			}
			affected = res.RowsAffected
			meta, _ := json.Marshal(map[string]any{"documents": affected})
			return tx.Create(&models.AuditLog{
				OrgID:       req.OrgID,
				ActorUserID: &member.UserID,
				Action:      "PRIVACY_DELETE",
				Target:      "documents",
				Meta:        datatypes.JSON(meta),
			}).Error
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		lg.Infow("privacy delete", "org", req.OrgID, "documents", affected)
		respondData(w, map[string]any{"deleted": affected})
	}
}
