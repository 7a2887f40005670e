package segment

import (
	"strings"
	"testing"

	"github.com/rvanags/featmerge/internal/model"
)

func TestSplit_EmptyInput(t *testing.T) {
	chunks, err := Split("", Params{MinLen: 5, TargetLen: 10, MaxLen: 20})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Expected zero chunks, got %d", len(chunks))
	}
}

func TestSplit_ShortInputSingleChunk(t *testing.T) {
	chunks, err := Split("īss teksts", Params{MinLen: 5, TargetLen: 10, MaxLen: 20})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "īss teksts" {
		t.Errorf("Expected full text in single chunk, got %q", chunks[0].Text)
	}
	if chunks[0].ID != 1 || chunks[0].Start != 0 || chunks[0].End != 9 {
		t.Errorf("Expected id=1 start=0 end=9, got id=%d start=%d end=%d",
			chunks[0].ID, chunks[0].Start, chunks[0].End)
	}
}

func TestSplit_InvalidParams(t *testing.T) {
	cases := []Params{
		{MinLen: 0, TargetLen: 10, MaxLen: 20},
		{MinLen: -1, TargetLen: 10, MaxLen: 20},
		{MinLen: 10, TargetLen: 5, MaxLen: 20},
		{MinLen: 5, TargetLen: 25, MaxLen: 20},
	}
	for _, p := range cases {
		_, err := Split("some text", p)
		if err == nil {
			t.Errorf("Expected error for params %+v, got nil", p)
			continue
		}
		if !model.IsConfigurationError(err) {
			t.Errorf("Expected ConfigurationError for params %+v, got %v", p, err)
		}
	}
}

func TestSplit_CoverageInvariant(t *testing.T) {
	text := strings.Repeat("rinda ar tekstu\n", 40) + "beigas bez jaunrindas"
	p := Params{MinLen: 20, TargetLen: 50, MaxLen: 80}
	chunks, err := Split(text, p)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	runes := []rune(text)
	cursor := 0
	for i, c := range chunks {
		if c.ID != i+1 {
			t.Errorf("Expected id %d, got %d", i+1, c.ID)
		}
		if c.Start != cursor {
			t.Errorf("Chunk %d: expected start %d, got %d", c.ID, cursor, c.Start)
		}
		if c.End < c.Start {
			t.Errorf("Chunk %d: end %d before start %d", c.ID, c.End, c.Start)
		}
		if got := string(runes[c.Start : c.End+1]); got != c.Text {
			t.Errorf("Chunk %d: text does not match its [start,end] slice", c.ID)
		}
		cursor = c.End + 1
	}
	if cursor != len(runes) {
		t.Errorf("Expected chunks to cover %d runes, covered %d", len(runes), cursor)
	}
	if joined := joinTexts(chunks); joined != text {
		t.Error("Expected concatenated chunk texts to reproduce the input exactly")
	}
}

func TestSplit_OnlyLastChunkBelowMin(t *testing.T) {
	text := strings.Repeat("a", 95) // 95 > max, last chunk will be short
	p := Params{MinLen: 10, TargetLen: 20, MaxLen: 30}
	chunks, err := Split(text, p)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for i, c := range chunks {
		if i < len(chunks)-1 && c.Len() < p.MinLen {
			t.Errorf("Chunk %d: length %d below min %d (only the last chunk may be short)",
				c.ID, c.Len(), p.MinLen)
		}
	}
	last := chunks[len(chunks)-1]
	if last.Len() != 5 {
		t.Errorf("Expected final chunk of 5 runes, got %d", last.Len())
	}
}

func TestSplit_Determinism(t *testing.T) {
	text := strings.Repeat("viena rinda\ncita rinda garāka\n", 30)
	p := Params{MinLen: 15, TargetLen: 40, MaxLen: 70}
	first, err := Split(text, p)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := Split(text, p)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("Expected identical chunk counts, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Chunk %d differs between runs: %+v vs %+v", i+1, first[i], second[i])
		}
	}
}

func TestSplit_NewlinePreference_ClosestToTarget(t *testing.T) {
	// Newlines at indices 3 and 8. Window [2,10), target 6: lengths 4
	// (delta 2) and 9 (delta 3), so the earlier newline wins.
	text := "abc\nefgh\n" + strings.Repeat("x", 20)
	chunks, err := Split(text, Params{MinLen: 2, TargetLen: 6, MaxLen: 10})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if chunks[0].Text != "abc\n" {
		t.Errorf("Expected first chunk %q, got %q", "abc\n", chunks[0].Text)
	}
}

func TestSplit_NewlinePreference_LaterWinsTie(t *testing.T) {
	// Newlines at indices 3 and 7. Target 6: lengths 4 and 8 are equally
	// far from target; the later newline must win.
	text := "abc\nefg\n" + strings.Repeat("x", 20)
	chunks, err := Split(text, Params{MinLen: 2, TargetLen: 6, MaxLen: 10})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if chunks[0].Text != "abc\nefg\n" {
		t.Errorf("Expected first chunk %q, got %q", "abc\nefg\n", chunks[0].Text)
	}
}

func TestSplit_NewlineBeforeMinIgnored(t *testing.T) {
	// The only newline sits at index 1, before start+min; the cut must be
	// a hard cut at max, not the early newline.
	text := "a\n" + strings.Repeat("b", 30)
	chunks, err := Split(text, Params{MinLen: 5, TargetLen: 8, MaxLen: 10})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if chunks[0].Len() != 10 {
		t.Errorf("Expected hard cut at 10 runes, got %d", chunks[0].Len())
	}
}

func TestSplit_HardCutWithoutNewlines(t *testing.T) {
	text := strings.Repeat("k", 25)
	chunks, err := Split(text, Params{MinLen: 2, TargetLen: 6, MaxLen: 10})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	for i, want := range []int{10, 10, 5} {
		if chunks[i].Len() != want {
			t.Errorf("Chunk %d: expected %d runes, got %d", i+1, want, chunks[i].Len())
		}
	}
}

func TestSplit_RuneIndexing(t *testing.T) {
	// Multi-byte Latvian letters must count as single positions.
	text := "āāāāāāāāāāāāāāāāāāāāāāāāā" // 25 runes, 50 bytes
	chunks, err := Split(text, Params{MinLen: 2, TargetLen: 6, MaxLen: 10})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].End != 9 {
		t.Errorf("Expected rune-based end index 9, got %d", chunks[0].End)
	}
	if got := len([]rune(chunks[0].Text)); got != 10 {
		t.Errorf("Expected 10 runes of text, got %d", got)
	}
}

func TestSplit_SentencePerLine(t *testing.T) {
	text := "Apsildāms stūres rats.\nCits teksts."
	chunks, err := Split(text, Params{MinLen: 5, TargetLen: 20, MaxLen: 25})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "Apsildāms stūres rats.\n" {
		t.Errorf("Expected first sentence with its newline, got %q", chunks[0].Text)
	}
	if chunks[1].Text != "Cits teksts." {
		t.Errorf("Expected remainder as final chunk, got %q", chunks[1].Text)
	}
}

func joinTexts(chunks []model.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}
