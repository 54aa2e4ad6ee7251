package tier

import "testing"

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemory()
	defer s.Clear()

	if err := s.Upsert("a@example.com", "pro"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, ok := s.Get("a@example.com")
	if !ok || got != "pro" {
		t.Fatalf("Get = %q, %v; want pro, true", got, ok)
	}

	// upsert replaces, it does not duplicate
	if err := s.Upsert("a@example.com", "team"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, _ = s.Get("a@example.com")
	if got != "team" {
		t.Fatalf("Get after upsert = %q, want team", got)
	}
}

func TestMemoryStoreListCountsDistinctEmails(t *testing.T) {
	s := NewMemory()
	defer s.Clear()

	emails := []string{"a@example.com", "b@example.com", "c@example.com", "a@example.com"}
	for _, e := range emails {
		if err := s.Upsert(e, "pro"); err != nil {
			t.Fatalf("Upsert(%s): %v", e, err)
		}
	}
	rows, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("List = %d rows, want 3 distinct emails", len(rows))
	}
}

func TestMemoryStoreClear(t *testing.T) {
	s := NewMemory()
	_ = s.Upsert("a@example.com", "pro")
	s.Clear()
	if _, ok := s.Get("a@example.com"); ok {
		t.Fatal("Clear must empty the store")
	}
	rows, _ := s.List()
	if len(rows) != 0 {
		t.Fatalf("List after Clear = %d rows, want 0", len(rows))
	}
}

func TestMemoryStoreMissingEmail(t *testing.T) {
	s := NewMemory()
	if _, ok := s.Get("nobody@example.com"); ok {
		t.Fatal("expected miss for unknown email")
	}
}
