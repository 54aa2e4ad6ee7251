package search

import "testing"

func TestCollapseByDocumentFirstWins(t *testing.T) {
	hits := []Hit{
		{DocumentID: "a", Version: 3, Rank: 0.9},
		{DocumentID: "b", Version: 1, Rank: 0.8},
		{DocumentID: "a", Version: 1, Rank: 0.5},
		{DocumentID: "c", Version: 2, Rank: 0.4},
		{DocumentID: "b", Version: 2, Rank: 0.1},
	}
	out := CollapseByDocument(hits)
	if len(out) != 3 {
		t.Fatalf("collapsed = %d hits, want 3", len(out))
	}
	if out[0].DocumentID != "a" || out[0].Rank != 0.9 {
		t.Fatalf("best hit for a lost: %+v", out[0])
	}
	if out[1].DocumentID != "b" || out[1].Rank != 0.8 {
		t.Fatalf("best hit for b lost: %+v", out[1])
	}
	if out[2].DocumentID != "c" {
		t.Fatalf("hit for c lost: %+v", out[2])
	}
}

func TestCollapseByDocumentEmpty(t *testing.T) {
	if out := CollapseByDocument(nil); len(out) != 0 {
		t.Fatalf("expected empty, got %v", out)
	}
}
