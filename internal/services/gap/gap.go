package gap

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/models"
)

// ItemRef is the slice of a standard item the coverage computation needs.
type ItemRef struct {
	ID   int64
	Path string
}

// Result is a pure coverage computation outcome. MissingIDs preserves the
// item input order, which callers supply sorted by path.
type Result struct {
	CoveragePct float64
	TotalCount  int
	MissingIDs  []int64
}

// Compute derives coverage from the item list and the set of item ids that
// hold at least one accepted evidence link. Coverage of an empty standard
// is 0, never a division by zero.
func Compute(items []ItemRef, covered map[int64]bool) Result {
	res := Result{TotalCount: len(items), MissingIDs: []int64{}}
	for _, it := range items {
		if !covered[it.ID] {
			res.MissingIDs = append(res.MissingIDs, it.ID)
		}
	}
	if res.TotalCount == 0 {
		return res
	}
	hit := res.TotalCount - len(res.MissingIDs)
	res.CoveragePct = float64(hit) / float64(res.TotalCount) * 100
	return res
}

// Summary is what a gap run returns to the caller.
type Summary struct {
	RunID        string  `json:"run_id"`
	StandardID   string  `json:"standard_id"`
	CoveragePct  float64 `json:"coverage_pct"`
	MissingCount int     `json:"missing_count"`
	TotalCount   int     `json:"total_count"`
}

// Run computes coverage for a standard and persists one immutable GapRun
// row. Runs are append-only; every invocation adds to the audit trail.
func Run(db *gorm.DB, standardID string, orgID *string) (Summary, error) {
	var std models.Standard
	if err := db.First(&std, "id = ?", standardID).Error; err != nil {
		return Summary{}, fmt.Errorf("standard %s: %w", standardID, auth.ErrNotFound)
	}
	var items []models.StandardItem
	if err := db.Where("standard_id = ?", standardID).Order("path asc").Find(&items).Error; err != nil {
		return Summary{}, err
	}
	var coveredIDs []int64
	err := db.Model(&models.EvidenceLink{}).
		Joins("JOIN standard_items ON standard_items.id = evidence_links.standard_item_id").
		Where("standard_items.standard_id = ? AND evidence_links.status IN ?",
			standardID, []string{models.EvidenceAuto, models.EvidenceConfirmed}).
		Distinct().Pluck("evidence_links.standard_item_id", &coveredIDs).Error
	if err != nil {
		return Summary{}, err
	}
	covered := make(map[int64]bool, len(coveredIDs))
	for _, id := range coveredIDs {
		covered[id] = true
	}
	refs := make([]ItemRef, len(items))
	for i, it := range items {
		refs[i] = ItemRef{ID: it.ID, Path: it.Path}
	}
	res := Compute(refs, covered)

	payload, _ := json.Marshal(map[string]any{"missing_item_ids": res.MissingIDs})
	run := models.GapRun{
		StandardID:   standardID,
		OrgID:        orgID,
		CoveragePct:  res.CoveragePct,
		MissingCount: len(res.MissingIDs),
		TotalCount:   res.TotalCount,
		Result:       datatypes.JSON(payload),
	}
	if err := db.Create(&run).Error; err != nil {
		return Summary{}, err
	}
	return Summary{
		RunID:        run.ID,
		StandardID:   standardID,
		CoveragePct:  res.CoveragePct,
		MissingCount: len(res.MissingIDs),
		TotalCount:   res.TotalCount,
	}, nil
}

// Get fetches a prior run snapshot.
func Get(db *gorm.DB, runID string) (models.GapRun, error) {
	var run models.GapRun
	if err := db.First(&run, "id = ?", runID).Error; err != nil {
		return models.GapRun{}, fmt.Errorf("gap run %s: %w", runID, auth.ErrNotFound)
	}
	return run, nil
}
