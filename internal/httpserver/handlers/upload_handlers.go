package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/models"
	"accredia/internal/objstore"
	"accredia/internal/services/ingest"
)

// maxUploadBytes caps a single multipart upload at 32 MiB.
const maxUploadBytes = 32 << 20

// Upload ingests one multipart file: {file, orgId, title?, documentId?}.
// Requires CONTRIBUTOR in the target organization.
func Upload(db *gorm.DB, store objstore.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		orgID := r.FormValue("orgId")
		if orgID == "" {
			respondError(w, http.StatusBadRequest, "orgId required")
			return
		}
		member, err := auth.RequireOrgRole(db, auth.Email(r.Context()), orgID, models.RoleContributor)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "file required")
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			respondError(w, http.StatusBadRequest, "unreadable file")
			return
		}
		mime := header.Header.Get("Content-Type")
		if mime == "" {
			mime = "application/octet-stream"
		}
		out, err := ingest.Ingest(r.Context(), db, store, ingest.Input{
			OrgID:       orgID,
			DocumentID:  r.FormValue("documentId"),
			Title:       r.FormValue("title"),
			Filename:    header.Filename,
			Mime:        mime,
			Data:        data,
			ActorUserID: member.UserID,
		})
		if err != nil {
			respondServiceError(w, err)
			return
		}
		lg.Infow("document ingested", "org", orgID, "document", out.DocumentID, "version", out.Version)
		respondData(w, out)
	}
}
