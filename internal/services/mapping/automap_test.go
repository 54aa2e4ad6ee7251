package mapping

import "testing"

func TestMatchItemFullMatch(t *testing.T) {
	content := "Our incident response plan covers escalation and recovery."
	m, ok := MatchItem(content, "Incident Response Plan")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Confidence != 1 {
		t.Fatalf("confidence = %v, want 1", m.Confidence)
	}
	if m.Start != 4 {
		t.Fatalf("start = %d, want 4", m.Start)
	}
	if m.End <= m.Start {
		t.Fatalf("degenerate span: %d-%d", m.Start, m.End)
	}
}

func TestMatchItemPartialMatch(t *testing.T) {
	m, ok := MatchItem("training records are maintained", "Training and Awareness Program")
	if !ok {
		t.Fatal("expected a match")
	}
	// "training" matches; "awareness" and "program" do not
	if m.Confidence <= 0 || m.Confidence >= 1 {
		t.Fatalf("confidence = %v, want partial ratio", m.Confidence)
	}
}

func TestMatchItemNoMatch(t *testing.T) {
	if _, ok := MatchItem("completely unrelated text", "Cryptographic Controls"); ok {
		t.Fatal("expected no match")
	}
}

func TestMatchItemSkipsShortTerms(t *testing.T) {
	// every title term is under four characters, so nothing to match on
	if _, ok := MatchItem("a b c of the top", "a b c"); ok {
		t.Fatal("short terms must be ignored")
	}
}
