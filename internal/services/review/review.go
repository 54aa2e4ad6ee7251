package review

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/models"
)

// Updated reports the post-review state of one evidence link.
type Updated struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type linkOrg struct {
	ID    int64
	OrgID string
}

// Review confirms and rejects evidence links in bulk. Every referenced link
// must belong to a single organization and the actor needs CONTRIBUTOR
// there; mixed-org batches fail before anything is written. Empty batches
// return an empty result without touching the database.
func Review(db *gorm.DB, actorEmail string, confirmIDs, rejectIDs []int64) ([]Updated, error) {
	if len(confirmIDs) == 0 && len(rejectIDs) == 0 {
		return []Updated{}, nil
	}

	// Duplicates within a batch would overstate the audit count, so each
	// batch is deduplicated before anything is queried or written.
	confirmIDs = dedupe(confirmIDs)
	rejectIDs = dedupe(rejectIDs)
	all := make([]int64, 0, len(confirmIDs)+len(rejectIDs))
	all = append(all, confirmIDs...)
	all = append(all, rejectIDs...)
	all = dedupe(all)

	var rows []linkOrg
	err := db.Model(&models.EvidenceLink{}).
		Select("evidence_links.id, documents.org_id").
		Joins("JOIN documents ON documents.id = evidence_links.document_id").
		Where("evidence_links.id IN ?", all).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) != len(all) {
		return nil, fmt.Errorf("one or more evidence links do not exist: %w", auth.ErrNotFound)
	}
	orgID := rows[0].OrgID
	for _, r := range rows {
		if r.OrgID != orgID {
			return nil, fmt.Errorf("%w: evidence links span multiple organizations", auth.ErrInvalidInput)
		}
	}

	member, err := auth.RequireOrgRole(db, actorEmail, orgID, models.RoleContributor)
	if err != nil {
		return nil, err
	}

	updated := make([]Updated, 0, len(all))
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := applyBatch(tx, member, orgID, confirmIDs, models.EvidenceConfirmed, "EVIDENCE_CONFIRM"); err != nil {
			return err
		}
		if err := applyBatch(tx, member, orgID, rejectIDs, models.EvidenceRejected, "EVIDENCE_REJECT"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, id := range confirmIDs {
		updated = append(updated, Updated{ID: id, Status: models.EvidenceConfirmed})
	}
	for _, id := range rejectIDs {
		updated = append(updated, Updated{ID: id, Status: models.EvidenceRejected})
	}
	return updated, nil
}

// applyBatch bulk-updates one batch and writes exactly one audit entry per
// non-empty batch recording the count affected.
func applyBatch(tx *gorm.DB, member models.Membership, orgID string, ids []int64, status, action string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Model(&models.EvidenceLink{}).Where("id IN ?", ids).Update("status", status).Error; err != nil {
		return err
	}
	meta, _ := json.Marshal(map[string]any{"count": len(ids)})
	return tx.Create(&models.AuditLog{
		OrgID:       orgID,
		ActorUserID: &member.UserID,
		Action:      action,
		Target:      "evidence_links",
		Meta:        datatypes.JSON(meta),
	}).Error
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
