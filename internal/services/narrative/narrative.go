package narrative

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/models"
	"accredia/internal/objstore"
)

// maxCitations caps how many evidence links are cited per item.
const maxCitations = 5

// Options shape the assembled report.
type Options struct {
	Scope           string
	IncludeEvidence bool
	Tone            string
	Audience        string
}

// Assemble builds the Markdown report. It is deterministic: items arrive in
// path order, links per item are sorted by descending confidence (id breaks
// ties) and at most five are cited.
func Assemble(std models.Standard, items []models.StandardItem, linksByItem map[int64][]models.EvidenceLink, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (v%s)\n\n", std.Name, std.Version)
	if opts.Audience != "" {
		fmt.Fprintf(&b, "Prepared for: %s\n\n", opts.Audience)
	}
	for _, it := range items {
		fmt.Fprintf(&b, "## %s %s\n\n", it.Code, it.Title)
		links := linksByItem[it.ID]
		if len(links) == 0 {
			b.WriteString("_no mapped evidence yet._\n\n")
			continue
		}
		if !opts.IncludeEvidence {
			fmt.Fprintf(&b, "%d evidence item(s) on file.\n\n", len(links))
			continue
		}
		sorted := make([]models.EvidenceLink, len(links))
		copy(sorted, links)
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Confidence != sorted[j].Confidence {
				return sorted[i].Confidence > sorted[j].Confidence
			}
			return sorted[i].ID < sorted[j].ID
		})
		if len(sorted) > maxCitations {
			sorted = sorted[:maxCitations]
		}
		for _, l := range sorted {
			fmt.Fprintf(&b, "- confidence %.2f: document %s v%d, chars %d-%d\n",
				l.Confidence, l.DocumentID, l.Version, l.StartOffset, l.EndOffset)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Generate assembles the report and persists the three export artifacts.
// The PDF and DOCX objects are byte-identical to the markdown: real format
// conversion is a stubbed product decision, only the content types differ.
// A run moves GENERATING -> COMPLETE; object writes are not rolled back on
// failure since re-running with a fresh run id regenerates everything.
func Generate(ctx context.Context, db *gorm.DB, store objstore.Store, standardID string, opts Options) (models.NarrativeRun, error) {
	var std models.Standard
	if err := db.First(&std, "id = ?", standardID).Error; err != nil {
		return models.NarrativeRun{}, fmt.Errorf("standard %s: %w", standardID, auth.ErrNotFound)
	}
	var items []models.StandardItem
	if err := db.Where("standard_id = ?", standardID).Order("path asc").Find(&items).Error; err != nil {
		return models.NarrativeRun{}, err
	}
	var links []models.EvidenceLink
	err := db.Joins("JOIN standard_items ON standard_items.id = evidence_links.standard_item_id").
		Where("standard_items.standard_id = ? AND evidence_links.status IN ?",
			standardID, []string{models.EvidenceAuto, models.EvidenceConfirmed}).
		Find(&links).Error
	if err != nil {
		return models.NarrativeRun{}, err
	}
	linksByItem := make(map[int64][]models.EvidenceLink)
	for _, l := range links {
		linksByItem[l.StandardItemID] = append(linksByItem[l.StandardItemID], l)
	}

	run := models.NarrativeRun{
		ID:         uuid.NewString(),
		StandardID: standardID,
		Status:     models.NarrativeGenerating,
	}
	if err := db.Create(&run).Error; err != nil {
		return models.NarrativeRun{}, err
	}

	md := []byte(Assemble(std, items, linksByItem, opts))
	prefix := "narratives/" + run.ID
	mdKey := prefix + "/report.md"
	pdfKey := prefix + "/report.pdf"
	docxKey := prefix + "/report.docx"
	if err := store.Put(ctx, mdKey, md, "text/markdown"); err != nil {
		return models.NarrativeRun{}, err
	}
	if err := store.Put(ctx, pdfKey, md, "application/pdf"); err != nil {
		return models.NarrativeRun{}, err
	}
	if err := store.Put(ctx, docxKey, md,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document"); err != nil {
		return models.NarrativeRun{}, err
	}

	updates := map[string]any{
		"status":       models.NarrativeComplete,
		"progress":     100,
		"markdown_key": mdKey,
		"pdf_key":      pdfKey,
		"docx_key":     docxKey,
		"updated_at":   time.Now(),
	}
	if err := db.Model(&run).Updates(updates).Error; err != nil {
		return models.NarrativeRun{}, err
	}
	run.Status = models.NarrativeComplete
	run.Progress = 100
	run.MarkdownKey = mdKey
	run.PDFKey = pdfKey
	run.DocxKey = docxKey
	return run, nil
}
