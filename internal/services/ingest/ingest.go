package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/extract"
	"accredia/internal/models"
	"accredia/internal/objstore"
)

// Checksum is the integrity tag stored with every version: hex SHA-256
// prefixed with the algorithm name. Identical bytes always produce the same
// string.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// NextVersion numbers the upload that follows count stored versions.
// Versions start at 1 and increase by one per upload.
func NextVersion(count int64) int {
	return int(count) + 1
}

// Input describes one multipart upload after the handler has authorized it.
type Input struct {
	OrgID       string
	DocumentID  string // empty on first upload
	Title       string // required when DocumentID is empty
	Filename    string
	Mime        string
	Data        []byte
	ActorUserID string
}

// Output is returned to the uploader.
type Output struct {
	DocumentID string `json:"document_id"`
	Version    int    `json:"version"`
	StorageKey string `json:"storage_key"`
	Checksum   string `json:"checksum"`
}

// Ingest stores one uploaded file: resolves or creates the Document row,
// numbers the next version, writes the bytes to object storage, records the
// version with its checksum, extracts and indexes text for PDFs, and emits
// an audit entry.
func Ingest(ctx context.Context, db *gorm.DB, store objstore.Store, in Input) (Output, error) {
	var doc models.Document
	if in.DocumentID != "" {
		if err := db.First(&doc, "id = ? AND org_id = ? AND is_deleted = false", in.DocumentID, in.OrgID).Error; err != nil {
			return Output{}, fmt.Errorf("document %s: %w", in.DocumentID, auth.ErrNotFound)
		}
	} else {
		if strings.TrimSpace(in.Title) == "" {
			return Output{}, fmt.Errorf("%w: title is required for a new document", auth.ErrInvalidInput)
		}
		doc = models.Document{OrgID: in.OrgID, Title: strings.TrimSpace(in.Title), Mime: in.Mime, Size: int64(len(in.Data))}
		if err := db.Create(&doc).Error; err != nil {
			return Output{}, err
		}
	}

	var count int64
	if err := db.Model(&models.DocumentVersion{}).Where("document_id = ?", doc.ID).Count(&count).Error; err != nil {
		return Output{}, err
	}
	version := NextVersion(count)

	key := fmt.Sprintf("docs/%s/v%d/%s", doc.ID, version, in.Filename)
	if err := store.Put(ctx, key, in.Data, in.Mime); err != nil {
		return Output{}, err
	}

	ver := models.DocumentVersion{
		DocumentID:  doc.ID,
		Version:     version,
		StorageKey:  key,
		Checksum:    Checksum(in.Data),
		CreatedByID: in.ActorUserID,
	}
	if err := db.Create(&ver).Error; err != nil {
		return Output{}, err
	}

	if text, err := extract.Text(in.Mime, in.Data); err == nil && strings.TrimSpace(text) != "" {
		dt := models.DocumentText{DocumentID: doc.ID, Version: version, Content: text}
		if err := db.Create(&dt).Error; err != nil {
			return Output{}, err
		}
		if err := db.Exec(
			"UPDATE document_texts SET search_vector = to_tsvector('english', content) WHERE id = ?",
			dt.ID).Error; err != nil {
			return Output{}, err
		}
	}

	meta, _ := json.Marshal(map[string]any{
		"title":    doc.Title,
		"size":     len(in.Data),
		"mime":     in.Mime,
		"version":  version,
		"filename": in.Filename,
	})
	if err := db.Create(&models.AuditLog{
		OrgID:       in.OrgID,
		ActorUserID: &in.ActorUserID,
		Action:      "DOCUMENT_UPLOAD",
		Target:      "documents/" + doc.ID,
		Meta:        datatypes.JSON(meta),
	}).Error; err != nil {
		return Output{}, err
	}

	return Output{DocumentID: doc.ID, Version: version, StorageKey: key, Checksum: ver.Checksum}, nil
}
