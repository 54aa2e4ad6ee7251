package search

import (
	"strings"

	"gorm.io/gorm"
)

// maxHits bounds every search response.
const maxHits = 50

// Hit is one ranked text-chunk match.
type Hit struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Version    int     `json:"version"`
	Rank       float64 `json:"rank"`
	Snippet    string  `json:"snippet"`
}

// Query runs a ranked full-text search over extracted document text,
// restricted to the caller's organizations and non-deleted documents.
func Query(db *gorm.DB, q string, orgIDs []string) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" || len(orgIDs) == 0 {
		return []Hit{}, nil
	}
	var hits []Hit
	err := db.Raw(`
		SELECT d.id AS document_id,
		       d.title,
		       dt.version,
		       ts_rank(dt.search_vector, plainto_tsquery('english', @q)) AS rank,
		       ts_headline('english', dt.content, plainto_tsquery('english', @q)) AS snippet
		FROM document_texts dt
		JOIN documents d ON d.id = dt.document_id
		WHERE d.org_id IN @orgs
		  AND d.is_deleted = false
		  AND dt.search_vector @@ plainto_tsquery('english', @q)
		ORDER BY rank DESC
		LIMIT @limit`,
		map[string]any{"q": q, "orgs": orgIDs, "limit": maxHits},
	).Scan(&hits).Error
	if err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []Hit{}
	}
	return hits, nil
}

// CollapseByDocument keeps the best-ranked hit per document. Input must be
// pre-ordered by rank descending; the first occurrence wins.
func CollapseByDocument(hits []Hit) []Hit {
	seen := make(map[string]bool, len(hits))
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if seen[h.DocumentID] {
			continue
		}
		seen[h.DocumentID] = true
		out = append(out, h)
	}
	return out
}
