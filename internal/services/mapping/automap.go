package mapping

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/models"
)

// Match is one proposed evidence span for a standard item.
type Match struct {
	Start      int
	End        int
	Confidence float64
}

// MatchItem scans extracted text for the item's title terms. The span runs
// from the first to the last matched term and confidence is the ratio of
// matched terms. Terms shorter than four characters are skipped as noise.
func MatchItem(content, title string) (Match, bool) {
	lower := strings.ToLower(content)
	var terms []string
	for _, t := range strings.Fields(strings.ToLower(title)) {
		t = strings.Trim(t, ".,;:()[]\"'")
		if len(t) >= 4 {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return Match{}, false
	}
	first, last, matched := -1, -1, 0
	for _, t := range terms {
		idx := strings.Index(lower, t)
		if idx < 0 {
			continue
		}
		matched++
		if first < 0 || idx < first {
			first = idx
		}
		if end := idx + len(t); end > last {
			last = end
		}
	}
	if matched == 0 {
		return Match{}, false
	}
	return Match{Start: first, End: last, Confidence: float64(matched) / float64(len(terms))}, true
}

// AutoMap proposes AUTO evidence links for every item of the standard that
// matches the latest extracted text of the document. Existing links are not
// touched; the output of this pass is the input to map review.
func AutoMap(db *gorm.DB, standardID, documentID string) ([]models.EvidenceLink, error) {
	var items []models.StandardItem
	if err := db.Where("standard_id = ?", standardID).Order("path asc").Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("standard %s has no items: %w", standardID, auth.ErrNotFound)
	}
	var text models.DocumentText
	if err := db.Where("document_id = ?", documentID).Order("version desc").First(&text).Error; err != nil {
		return nil, fmt.Errorf("document %s has no extracted text: %w", documentID, auth.ErrNotFound)
	}

	created := []models.EvidenceLink{}
	for _, it := range items {
		m, ok := MatchItem(text.Content, it.Title)
		if !ok {
			continue
		}
		link := models.EvidenceLink{
			StandardItemID: it.ID,
			DocumentID:     documentID,
			Version:        text.Version,
			StartOffset:    m.Start,
			EndOffset:      m.End,
			Confidence:     m.Confidence,
			Status:         models.EvidenceAuto,
		}
		if err := db.Create(&link).Error; err != nil {
			return nil, err
		}
		created = append(created, link)
	}
	return created, nil
}
