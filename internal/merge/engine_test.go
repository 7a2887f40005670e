package merge

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rvanags/featmerge/internal/catalog"
	"github.com/rvanags/featmerge/internal/model"
)

const masterCSV = `Nr Code,Variable Name
NR1,Apsildāms stūres rats
NR2,LED priekšējie lukturi
NR3,
NR4,Kruīza kontrole
NR5,Atpakaļskata kamera
`

// stubScorer returns a fixed score for every pair.
type stubScorer struct{ score int }

func (s stubScorer) Score(a, b string) int { return s.score }

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.LoadCSV(strings.NewReader(masterCSV))
	if err != nil {
		t.Fatalf("Expected catalog to load, got %v", err)
	}
	return cat
}

func testAllow(t *testing.T, cat *catalog.Catalog, entries ...string) *catalog.AllowList {
	t.Helper()
	return catalog.ResolveAllowList(entries, catalog.NewResolver(cat, nil))
}

func testEngine(t *testing.T, cat *catalog.Catalog, allow *catalog.AllowList, opts Options) *Engine {
	t.Helper()
	e, err := NewEngine(cat, nil, allow, opts)
	if err != nil {
		t.Fatalf("Expected engine, got %v", err)
	}
	return e
}

func chunk(id int, text string) model.Chunk {
	return model.Chunk{ID: id, Start: 0, End: len([]rune(text)) - 1, Text: text}
}

func TestNewEngine_RequiresCatalogAndAllowList(t *testing.T) {
	cat := testCatalog(t)
	allow := testAllow(t, cat, "NR1")

	if _, err := NewEngine(nil, nil, allow, Options{}); err == nil || !model.IsConfigurationError(err) {
		t.Errorf("Expected ConfigurationError for missing catalog, got %v", err)
	}
	if _, err := NewEngine(cat, nil, nil, Options{}); err == nil || !model.IsConfigurationError(err) {
		t.Errorf("Expected ConfigurationError for missing allow-list, got %v", err)
	}
}

func TestMerge_ExactAcceptance(t *testing.T) {
	cat := testCatalog(t)
	e := testEngine(t, cat, testAllow(t, cat, "Apsildāms stūres rats"), Options{})

	chunks := []model.Chunk{chunk(1, "Apsildāms stūres rats.\n"), chunk(2, "Cits teksts.")}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{
			{Identifier: "Apsildāms stūres rats", Evidence: "Apsildāms stūres rats"},
		}},
	}

	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Decisions) != 1 {
		t.Fatalf("Expected 1 decision, got %d", len(res.Decisions))
	}
	d := res.Decisions[0]
	if d.CanonicalID != "NR1" || d.ChunkID != 1 || d.Tier.Kind != model.TierExact {
		t.Errorf("Unexpected decision: %+v", d)
	}
	if d.Verdict != model.VerdictPositive {
		t.Errorf("Expected default verdict positive, got %s", d.Verdict)
	}
}

func TestMerge_ClosedWorld(t *testing.T) {
	cat := testCatalog(t)
	// NR4 is a real catalog item but absent from this run's allow-list.
	e := testEngine(t, cat, testAllow(t, cat, "NR1"), Options{})

	chunks := []model.Chunk{chunk(1, "Auto ar Kruīza kontrole sistēmu.")}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{
			{Identifier: "Kruīza kontrole", Evidence: "Kruīza kontrole"},
		}},
	}

	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Decisions) != 0 {
		t.Fatalf("Expected no decisions, got %d", len(res.Decisions))
	}
	if len(res.Audit.Drops) != 1 || res.Audit.Drops[0].Reason != model.DropReasonDisallowed {
		t.Errorf("Expected one disallowed drop, got %+v", res.Audit.Drops)
	}
}

func TestMerge_AuxiliaryDropped(t *testing.T) {
	cat := testCatalog(t)
	e := testEngine(t, cat, testAllow(t, cat, "NR1", "NR3"), Options{})

	chunks := []model.Chunk{chunk(1, "teksts")}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{{Identifier: "NR3", Evidence: "teksts"}}},
	}

	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Decisions) != 0 {
		t.Fatalf("Expected no decisions for auxiliary row, got %d", len(res.Decisions))
	}
	if len(res.Audit.Drops) != 1 || res.Audit.Drops[0].Reason != model.DropReasonAuxiliary {
		t.Errorf("Expected one auxiliary drop, got %+v", res.Audit.Drops)
	}
}

func TestMerge_UnresolvedRecorded(t *testing.T) {
	cat := testCatalog(t)
	e := testEngine(t, cat, testAllow(t, cat, "NR1"), Options{})

	chunks := []model.Chunk{chunk(1, "teksts")}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{{Identifier: "pilnīgi svešs", Evidence: "teksts"}}},
	}

	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Audit.Unresolved) != 1 || res.Audit.Unresolved[0].Identifier != "pilnīgi svešs" {
		t.Errorf("Expected one unresolved identifier, got %+v", res.Audit.Unresolved)
	}
	if res.Report.Unresolved != 1 {
		t.Errorf("Expected report to count 1 unresolved, got %d", res.Report.Unresolved)
	}
}

func TestMerge_EvidenceRejectionDroppedWithTierReason(t *testing.T) {
	cat := testCatalog(t)
	e := testEngine(t, cat, testAllow(t, cat, "NR1"), Options{Scorer: stubScorer{10}})

	chunks := []model.Chunk{chunk(1, "Auto bez aprīkojuma.")}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{
			{Identifier: "NR1", Evidence: "apsildāms stūres rats"},
			{Identifier: "NR1", Evidence: ""},
		}},
	}

	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Decisions) != 0 {
		t.Fatalf("Expected no decisions, got %d", len(res.Decisions))
	}
	if len(res.Audit.Drops) != 2 {
		t.Fatalf("Expected 2 drops, got %d", len(res.Audit.Drops))
	}
	if res.Audit.Drops[0].Reason != "not_found" {
		t.Errorf("Expected reason not_found, got %s", res.Audit.Drops[0].Reason)
	}
	if res.Audit.Drops[1].Reason != "empty" {
		t.Errorf("Expected reason empty, got %s", res.Audit.Drops[1].Reason)
	}
}

func TestMerge_DedupExactBeatsFuzzy(t *testing.T) {
	cat := testCatalog(t)
	chunks := []model.Chunk{
		chunk(1, "Apsildāms stūres rats iekļauts."),
		chunk(2, "Automašīnai ir apsildāmi sēdekļi un vairāk."),
	}
	fuzzyMention := model.Mention{Identifier: "NR1", Evidence: "apsildams stures rats"}
	exactMention := model.Mention{Identifier: "NR1", Evidence: "Apsildāms stūres rats"}

	// The exact hit must win regardless of processing order.
	orders := [][]model.ChunkMentions{
		{
			{ChunkID: 1, Mentions: []model.Mention{exactMention}},
			{ChunkID: 2, Mentions: []model.Mention{fuzzyMention}},
		},
		{
			{ChunkID: 1, Mentions: []model.Mention{fuzzyMention}},
			{ChunkID: 1, Mentions: []model.Mention{exactMention}},
		},
	}
	for i, mentions := range orders {
		e := testEngine(t, cat, testAllow(t, cat, "NR1"), Options{Scorer: stubScorer{95}})
		res, err := e.Merge(chunks, mentions)
		if err != nil {
			t.Fatalf("Order %d: expected no error, got %v", i, err)
		}
		if len(res.Decisions) != 1 {
			t.Fatalf("Order %d: expected 1 decision, got %d", i, len(res.Decisions))
		}
		if res.Decisions[0].Tier.Kind != model.TierExact {
			t.Errorf("Order %d: expected exact tier to win, got %s", i, res.Decisions[0].Tier)
		}
		if res.Audit.Superseded != 1 {
			t.Errorf("Order %d: expected 1 superseded hit, got %d", i, res.Audit.Superseded)
		}
		if len(res.Audit.Drops) != 0 {
			t.Errorf("Order %d: superseded hits must not appear as drops, got %+v", i, res.Audit.Drops)
		}
	}
}

func TestMerge_DedupLongerEvidenceOnTiedTier(t *testing.T) {
	cat := testCatalog(t)
	e := testEngine(t, cat, testAllow(t, cat, "NR2"), Options{})

	text := "Aprīkojumā LED priekšējie lukturi ar automātisko režīmu."
	chunks := []model.Chunk{chunk(1, text)}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{
			{Identifier: "NR2", Evidence: "LED priekšējie lukturi"},
			{Identifier: "NR2", Evidence: "LED priekšējie lukturi ar automātisko režīmu"},
		}},
	}

	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Decisions) != 1 {
		t.Fatalf("Expected 1 decision, got %d", len(res.Decisions))
	}
	if res.Decisions[0].Evidence != "LED priekšējie lukturi ar automātisko režīmu" {
		t.Errorf("Expected longer evidence to win, got %q", res.Decisions[0].Evidence)
	}
}

func TestMerge_DedupEvidenceLengthCountsRunes(t *testing.T) {
	cat := testCatalog(t)
	e := testEngine(t, cat, testAllow(t, cat, "NR1"), Options{})

	// The first evidence has more bytes (diacritics) but fewer runes than
	// the second; the second must win the tied-tier comparison.
	text := "Apsildāms stūres rats. Te stures rats ar apsildi minēts."
	chunks := []model.Chunk{chunk(1, text)}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{
			{Identifier: "NR1", Evidence: "Apsildāms stūres rats"},
			{Identifier: "NR1", Evidence: "stures rats ar apsildi"},
		}},
	}

	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Decisions) != 1 {
		t.Fatalf("Expected 1 decision, got %d", len(res.Decisions))
	}
	if res.Decisions[0].Evidence != "stures rats ar apsildi" {
		t.Errorf("Expected the longer evidence in runes to win, got %q", res.Decisions[0].Evidence)
	}
}

func TestMerge_FirstAcceptedWinsFullTie(t *testing.T) {
	cat := testCatalog(t)
	e := testEngine(t, cat, testAllow(t, cat, "NR2"), Options{})

	chunks := []model.Chunk{
		chunk(1, "LED priekšējie lukturi šeit."),
		chunk(2, "LED priekšējie lukturi arī šeit."),
	}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{{Identifier: "NR2", Evidence: "LED priekšējie lukturi"}}},
		{ChunkID: 2, Mentions: []model.Mention{{Identifier: "NR2", Evidence: "LED priekšējie lukturi"}}},
	}

	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Decisions) != 1 || res.Decisions[0].ChunkID != 1 {
		t.Errorf("Expected the first-accepted hit to stand, got %+v", res.Decisions)
	}
}

func TestMerge_FuzzyDowngradePolicy(t *testing.T) {
	cat := testCatalog(t)
	chunks := []model.Chunk{chunk(1, "Automašīnai apsildāmais stūres rata aplis.")}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{
			{Identifier: "NR1", Evidence: "apsildams stures rats", Verdict: model.VerdictPositive},
		}},
	}

	e := testEngine(t, cat, testAllow(t, cat, "NR1"), Options{Scorer: stubScorer{94}, DowngradeFuzzy: true})
	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Decisions[0].Verdict != model.VerdictUncertain {
		t.Errorf("Expected fuzzy hit downgraded to uncertain, got %s", res.Decisions[0].Verdict)
	}

	e = testEngine(t, cat, testAllow(t, cat, "NR1"), Options{Scorer: stubScorer{94}, DowngradeFuzzy: false})
	res, err = e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Decisions[0].Verdict != model.VerdictPositive {
		t.Errorf("Expected verdict kept without downgrade, got %s", res.Decisions[0].Verdict)
	}
}

func TestMerge_MalformedCounted(t *testing.T) {
	cat := testCatalog(t)
	e := testEngine(t, cat, testAllow(t, cat, "NR1"), Options{})

	chunks := []model.Chunk{chunk(1, "Apsildāms stūres rats.")}
	mentions := []model.ChunkMentions{
		// unknown chunk id: both mentions are malformed
		{ChunkID: 99, Mentions: []model.Mention{
			{Identifier: "NR1", Evidence: "x"},
			{Identifier: "NR2", Evidence: "y"},
		}},
		// empty identifier inside a known chunk
		{ChunkID: 1, Mentions: []model.Mention{
			{Identifier: "", Evidence: "Apsildāms stūres rats"},
			{Identifier: "NR1", Evidence: "Apsildāms stūres rats"},
		}},
	}

	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Audit.Malformed != 3 {
		t.Errorf("Expected 3 malformed mentions, got %d", res.Audit.Malformed)
	}
	if len(res.Decisions) != 1 {
		t.Errorf("Expected the well-formed mention to survive, got %d decisions", len(res.Decisions))
	}
}

func TestMerge_ChunkFilterRestricts(t *testing.T) {
	cat := testCatalog(t)
	e := testEngine(t, cat, testAllow(t, cat, "NR1", "NR2"), Options{
		AllowedChunks: map[int]bool{2: true},
	})

	chunks := []model.Chunk{
		chunk(1, "Apsildāms stūres rats."),
		chunk(2, "LED priekšējie lukturi."),
	}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{{Identifier: "NR1", Evidence: "Apsildāms stūres rats"}}},
		{ChunkID: 2, Mentions: []model.Mention{{Identifier: "NR2", Evidence: "LED priekšējie lukturi"}}},
	}

	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Decisions) != 1 || res.Decisions[0].CanonicalID != "NR2" {
		t.Errorf("Expected only the allowed chunk's mention, got %+v", res.Decisions)
	}
	if len(res.Report.ProcessedChunkIDs) != 1 || res.Report.ProcessedChunkIDs[0] != 2 {
		t.Errorf("Expected processed chunks [2], got %v", res.Report.ProcessedChunkIDs)
	}
}

func TestMerge_SanityWarningAdvisoryOnly(t *testing.T) {
	cat := testCatalog(t)
	e := testEngine(t, cat, testAllow(t, cat, "NR2"), Options{
		Sanity: map[string][]string{"led": {"led"}},
	})

	// Evidence verifies but never says "led"; the decision must stand with
	// a warning attached.
	chunks := []model.Chunk{chunk(1, "Halogēnie lukturi komplektā. LED priekšējie lukturi nav.")}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{
			{Identifier: "NR2", Evidence: "Halogēnie lukturi komplektā"},
		}},
	}

	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Decisions) != 1 {
		t.Fatalf("Expected the decision to stand, got %d", len(res.Decisions))
	}
	if len(res.Audit.Warnings) != 1 || res.Audit.Warnings[0].CanonicalID != "NR2" {
		t.Errorf("Expected one sanity warning for NR2, got %+v", res.Audit.Warnings)
	}
}

func TestMerge_DefaultSanityKeywordsMatchDiacriticNames(t *testing.T) {
	cat := testCatalog(t)
	e := testEngine(t, cat, testAllow(t, cat, "NR4"), Options{
		Sanity: model.DefaultSanityKeywords(),
	})

	// "Kruīza kontrole" triggers the default "kruīza" marker; the evidence
	// verifies exactly but never mentions kruīz.
	chunks := []model.Chunk{chunk(1, "Ātruma ierobežotājs iekļauts komplektācijā.")}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{
			{Identifier: "NR4", Evidence: "Ātruma ierobežotājs iekļauts komplektācijā"},
		}},
	}

	res, err := e.Merge(chunks, mentions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Decisions) != 1 {
		t.Fatalf("Expected the decision to stand, got %d", len(res.Decisions))
	}
	if len(res.Audit.Warnings) != 1 || res.Audit.Warnings[0].CanonicalID != "NR4" {
		t.Errorf("Expected one sanity warning for NR4, got %+v", res.Audit.Warnings)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	cat := testCatalog(t)
	chunks := []model.Chunk{
		chunk(1, "Apsildāms stūres rats un LED priekšējie lukturi.\n"),
		chunk(2, "Atpakaļskata kamera, Kruīza kontrole un vēl.\n"),
	}
	mentions := []model.ChunkMentions{
		{ChunkID: 1, Mentions: []model.Mention{
			{Identifier: "NR1", Evidence: "Apsildāms stūres rats"},
			{Identifier: "LED priekšējie lukturi", Evidence: "LED priekšējie lukturi"},
			{Identifier: "nezināms", Evidence: "kaut kas"},
		}},
		{ChunkID: 2, Mentions: []model.Mention{
			{Identifier: "NR5", Evidence: "Atpakaļskata kamera"},
			{Identifier: "NR4", Evidence: "Kruīza kontrole"},
			{Identifier: "NR1", Evidence: "apsildāms stūres rats"},
		}},
	}

	run := func() []byte {
		e := testEngine(t, cat, testAllow(t, cat, "NR1", "NR2", "NR5"), Options{DowngradeFuzzy: true})
		res, err := e.Merge(chunks, mentions)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		data, err := json.Marshal(res)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		return data
	}

	first := run()
	second := run()
	if string(first) != string(second) {
		t.Error("Expected byte-identical results across runs")
	}
}
