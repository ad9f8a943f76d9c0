package domain

import "testing"

func TestMergeAlternatives(t *testing.T) {
	existing := []AlternativeRef{
		{ExternalID: "B000000001", Title: "Original A", Rating: 4.5},
		{ExternalID: "B000000002", Title: "Original B"},
	}
	found := []AlternativeRef{
		{ExternalID: "B000000002", Title: "Refetched B", Rating: 3.0}, // duplicate, must not overwrite
		{ExternalID: "B000000003", Title: "New C"},
		{ExternalID: "B000000003", Title: "New C again"}, // duplicate within the batch
	}

	merged := MergeAlternatives(existing, found)

	if len(merged) != 3 {
		t.Fatalf("merged length = %d, want 3", len(merged))
	}
	if merged[1].Title != "Original B" {
		t.Errorf("existing entry overwritten: %q", merged[1].Title)
	}
	if merged[2].ExternalID != "B000000003" {
		t.Errorf("new entry missing, got %q", merged[2].ExternalID)
	}

	seen := map[string]bool{}
	for _, alt := range merged {
		if seen[alt.ExternalID] {
			t.Errorf("duplicate external id %q in merged set", alt.ExternalID)
		}
		seen[alt.ExternalID] = true
	}
}

func TestHasAlternative(t *testing.T) {
	item := &TrackedItem{Alternatives: []AlternativeRef{{ExternalID: "B000000001"}}}

	if !item.HasAlternative("B000000001") {
		t.Error("HasAlternative() = false for present id")
	}
	if item.HasAlternative("B000000099") {
		t.Error("HasAlternative() = true for absent id")
	}
}
