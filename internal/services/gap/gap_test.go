package gap

import "testing"

func items(n int) []ItemRef {
	out := make([]ItemRef, n)
	for i := range out {
		out[i] = ItemRef{ID: int64(i + 1)}
	}
	return out
}

func TestComputeCoverage(t *testing.T) {
	covered := map[int64]bool{}
	for id := int64(1); id <= 7; id++ {
		covered[id] = true
	}
	res := Compute(items(10), covered)
	if res.CoveragePct != 70 {
		t.Fatalf("coverage = %v, want 70", res.CoveragePct)
	}
	if len(res.MissingIDs) != 3 {
		t.Fatalf("missing = %d, want 3", len(res.MissingIDs))
	}
	if res.TotalCount != 10 {
		t.Fatalf("total = %d, want 10", res.TotalCount)
	}
}

func TestComputeEmptyStandard(t *testing.T) {
	res := Compute(nil, map[int64]bool{})
	if res.CoveragePct != 0 {
		t.Fatalf("coverage of empty standard = %v, want 0", res.CoveragePct)
	}
	if res.TotalCount != 0 || len(res.MissingIDs) != 0 {
		t.Fatalf("unexpected counts: %+v", res)
	}
}

func TestComputeNothingCovered(t *testing.T) {
	res := Compute(items(4), nil)
	if res.CoveragePct != 0 {
		t.Fatalf("coverage = %v, want 0", res.CoveragePct)
	}
	if len(res.MissingIDs) != 4 {
		t.Fatalf("missing = %d, want 4", len(res.MissingIDs))
	}
}

func TestComputeMissingPreservesOrder(t *testing.T) {
	res := Compute(items(5), map[int64]bool{2: true, 4: true})
	want := []int64{1, 3, 5}
	if len(res.MissingIDs) != len(want) {
		t.Fatalf("missing = %v, want %v", res.MissingIDs, want)
	}
	for i, id := range want {
		if res.MissingIDs[i] != id {
			t.Fatalf("missing = %v, want %v", res.MissingIDs, want)
		}
	}
}

func TestComputeFullCoverage(t *testing.T) {
	covered := map[int64]bool{1: true, 2: true}
	res := Compute(items(2), covered)
	if res.CoveragePct != 100 {
		t.Fatalf("coverage = %v, want 100", res.CoveragePct)
	}
	if len(res.MissingIDs) != 0 {
		t.Fatalf("missing = %v, want none", res.MissingIDs)
	}
}
