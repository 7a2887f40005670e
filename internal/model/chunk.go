package model

// Chunk is a contiguous slice of the normalized document.
// Start and End are 0-based inclusive rune indices into the document;
// chunks produced by the segmenter are non-overlapping, gapless and
// cover the whole document in id order.
type Chunk struct {
	ID    int    `json:"id"`    // 1-based, increasing left to right
	Start int    `json:"start"` // inclusive rune index
	End   int    `json:"end"`   // inclusive rune index
	Text  string `json:"text"`  // exact document substring
}

// Len returns the chunk length in runes.
func (c Chunk) Len() int {
	return c.End - c.Start + 1
}

// Mention is one candidate claim emitted by the extraction step for a chunk:
// a raw catalog identifier (code or display name) plus a literal quotation
// from the chunk text that supposedly supports it. Nothing in a Mention is
// trusted until the merge engine has resolved and verified it.
type Mention struct {
	Identifier string  `json:"identifier"`
	Evidence   string  `json:"evidence"`
	Verdict    Verdict `json:"verdict,omitempty"`
}

// ChunkMentions groups the mentions the extraction step produced for one chunk.
type ChunkMentions struct {
	ChunkID  int       `json:"chunk_id"`
	Mentions []Mention `json:"mentions"`
}

// CandidateMention is a Mention flattened with its chunk id, the unit
// the merge engine processes and the audit trail records.
type CandidateMention struct {
	ChunkID    int     `json:"chunk_id"`
	Identifier string  `json:"identifier"`
	Evidence   string  `json:"evidence"`
	Verdict    Verdict `json:"verdict,omitempty"`
}
