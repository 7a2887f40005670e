package catalog

import (
	"strings"
	"testing"
)

func TestReadAllowList_SkipsBlanksAndBOM(t *testing.T) {
	input := "\uFEFFNR1\n\n  LED priekšējie lukturi  \n\nNR4\n"
	entries, err := ReadAllowList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []string{"NR1", "LED priekšējie lukturi", "NR4"}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(entries))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("Entry %d: expected %q, got %q", i, want[i], entries[i])
		}
	}
}

func TestResolveAllowList_OrderDedupUnusable(t *testing.T) {
	r := NewResolver(testCatalog(t), nil)
	entries := []string{"NR4", "Apsildāms stūres rats", "nr4", "svešs ieraksts"}

	allow := ResolveAllowList(entries, r)

	codes := allow.Codes()
	if len(codes) != 2 || codes[0] != "NR4" || codes[1] != "NR1" {
		t.Errorf("Expected [NR4 NR1] in file order, got %v", codes)
	}
	if !allow.Contains("NR1") || allow.Contains("NR2") {
		t.Error("Expected membership to follow resolved entries only")
	}
	unusable := allow.Unusable()
	if len(unusable) != 1 || unusable[0] != "svešs ieraksts" {
		t.Errorf("Expected one unusable entry, got %v", unusable)
	}
	if allow.Len() != 2 {
		t.Errorf("Expected Len 2, got %d", allow.Len())
	}
}
