package narrative

import (
	"context"
	"strings"
	"testing"

	"accredia/internal/models"
	"accredia/internal/objstore"
)

func testStandard() (models.Standard, []models.StandardItem) {
	std := models.Standard{ID: "std-1", Name: "Safety Framework", Version: "2.1"}
	items := []models.StandardItem{
		{ID: 1, StandardID: "std-1", Code: "1.1", Title: "Governance", Path: "01.01"},
		{ID: 2, StandardID: "std-1", Code: "1.2", Title: "Training", Path: "01.02"},
	}
	return std, items
}

func TestAssembleDeterministic(t *testing.T) {
	std, items := testStandard()
	links := map[int64][]models.EvidenceLink{
		1: {{ID: 10, DocumentID: "doc-a", Version: 2, StartOffset: 5, EndOffset: 40, Confidence: 0.92}},
	}
	opts := Options{IncludeEvidence: true}
	first := Assemble(std, items, links, opts)
	second := Assemble(std, items, links, opts)
	if first != second {
		t.Fatal("assembly is not deterministic")
	}
	if !strings.Contains(first, "# Safety Framework (v2.1)") {
		t.Fatalf("missing title heading:\n%s", first)
	}
	if !strings.Contains(first, "## 1.1 Governance") {
		t.Fatalf("missing item heading:\n%s", first)
	}
	if !strings.Contains(first, "- confidence 0.92: document doc-a v2, chars 5-40") {
		t.Fatalf("missing citation:\n%s", first)
	}
	if !strings.Contains(first, "_no mapped evidence yet._") {
		t.Fatalf("missing no-evidence marker:\n%s", first)
	}
}

func TestAssembleCapsCitationsAtFive(t *testing.T) {
	std, items := testStandard()
	var ls []models.EvidenceLink
	for i := 0; i < 8; i++ {
		ls = append(ls, models.EvidenceLink{
			ID: int64(i + 1), DocumentID: "doc-a", Version: 1,
			Confidence: float64(i) / 10,
		})
	}
	out := Assemble(std, items, map[int64][]models.EvidenceLink{1: ls}, Options{IncludeEvidence: true})
	if n := strings.Count(out, "- confidence"); n != 5 {
		t.Fatalf("citations = %d, want 5", n)
	}
	// highest confidence cited first
	if !strings.Contains(out, "- confidence 0.70") {
		t.Fatalf("best link not cited:\n%s", out)
	}
	if strings.Contains(out, "- confidence 0.10") {
		t.Fatalf("sixth-best link should be dropped:\n%s", out)
	}
}

func TestAssembleWithoutEvidenceDetail(t *testing.T) {
	std, items := testStandard()
	links := map[int64][]models.EvidenceLink{
		1: {{ID: 10, DocumentID: "doc-a", Version: 1, Confidence: 0.5}},
	}
	out := Assemble(std, items, links, Options{IncludeEvidence: false})
	if strings.Contains(out, "- confidence") {
		t.Fatalf("citations present despite includeEvidence=false:\n%s", out)
	}
	if !strings.Contains(out, "1 evidence item(s) on file.") {
		t.Fatalf("missing evidence count line:\n%s", out)
	}
}

// Placeholder exports are byte-identical to the markdown under all three
// keys of a run-scoped prefix.
func TestPlaceholderArtifactsShareBytes(t *testing.T) {
	store := objstore.NewMemory()
	ctx := context.Background()
	content := []byte("# report\n")
	for _, k := range []string{"narratives/r1/report.md", "narratives/r1/report.pdf", "narratives/r1/report.docx"} {
		if err := store.Put(ctx, k, content, ""); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}
	md, _ := store.Get(ctx, "narratives/r1/report.md")
	pdf, _ := store.Get(ctx, "narratives/r1/report.pdf")
	if string(md) != string(pdf) {
		t.Fatal("placeholder artifacts must be byte-identical")
	}
	if store.Len() != 3 {
		t.Fatalf("objects = %d, want 3", store.Len())
	}
}
