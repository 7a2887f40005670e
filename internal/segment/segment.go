// Package segment splits normalized text into bounded, contiguous,
// newline-respecting chunks. The segmenter is deterministic and idempotent:
// the same text and parameters always produce byte-identical boundaries.
package segment

import (
	"github.com/rvanags/featmerge/internal/model"
)

// Params are the chunk length constraints, in runes.
// The relation 1 <= Min <= Target <= Max must hold.
type Params struct {
	MinLen    int
	TargetLen int
	MaxLen    int
}

// Validate checks the length relation.
func (p Params) Validate() error {
	if p.MinLen <= 0 || p.TargetLen <= 0 || p.MaxLen <= 0 {
		return model.ConfigErrorf("chunk lengths must be positive (min=%d, target=%d, max=%d)",
			p.MinLen, p.TargetLen, p.MaxLen)
	}
	if !(p.MinLen <= p.TargetLen && p.TargetLen <= p.MaxLen) {
		return model.ConfigErrorf("chunk lengths must satisfy min <= target <= max (min=%d, target=%d, max=%d)",
			p.MinLen, p.TargetLen, p.MaxLen)
	}
	return nil
}

// Split chunks text under the given constraints. Chunks are non-overlapping,
// gapless, cover the whole text, and carry 1-based sequential ids. Within
// [start+min, start+max) the cut lands on the newline whose resulting chunk
// length is closest to target (later newline on a tie); with no newline in
// the window the chunk is hard-cut at exactly max runes. Only the final
// chunk may be shorter than min. Empty input yields no chunks.
func Split(text string, p Params) ([]model.Chunk, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(text)
	n := len(runes)
	var chunks []model.Chunk

	start := 0
	for start < n {
		end := splitPos(runes, start, p)
		if end < start {
			end = start
		}
		chunks = append(chunks, model.Chunk{
			ID:    len(chunks) + 1,
			Start: start,
			End:   end,
			Text:  string(runes[start : end+1]),
		})
		start = end + 1
	}
	return chunks, nil
}

// splitPos chooses the inclusive end index for the chunk starting at start.
func splitPos(runes []rune, start int, p Params) int {
	n := len(runes)
	if n-start <= p.MaxLen {
		// Whole remainder is the final chunk, even below min.
		return n - 1
	}

	winStart := start + p.MinLen
	winEnd := start + p.MaxLen // exclusive
	if winEnd > n {
		winEnd = n
	}

	bestPos := -1
	bestDelta := 0
	for i := winStart; i < winEnd; i++ {
		if runes[i] != '\n' {
			continue
		}
		length := i - start + 1 // newline included in the chunk
		delta := length - p.TargetLen
		if delta < 0 {
			delta = -delta
		}
		// Closest to target wins; a later newline wins an exact tie,
		// keeping the chunk larger.
		if bestPos == -1 || delta <= bestDelta {
			bestPos = i
			bestDelta = delta
		}
	}
	if bestPos != -1 {
		return bestPos
	}

	// No newline in the window: hard cut at exactly max runes.
	return start + p.MaxLen - 1
}
