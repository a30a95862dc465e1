package service

import "testing"

func TestNewExamID(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 200; i++ {
		id, err := NewExamID()
		if err != nil {
			t.Fatalf("NewExamID: %v", err)
		}
		if len(id) != 6 {
			t.Fatalf("len(%q) = %d, want 6", id, len(id))
		}
		for _, r := range id {
			if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
				t.Fatalf("%q contains invalid rune %q", id, r)
			}
		}
		seen[id] = struct{}{}
	}

	// 200 draws from a 36^6 space should not all collide.
	if len(seen) < 2 {
		t.Errorf("generator produced %d distinct IDs out of 200", len(seen))
	}
}
