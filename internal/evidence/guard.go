package evidence

import (
	"strings"

	"github.com/rvanags/featmerge/internal/model"
	"github.com/rvanags/featmerge/internal/textnorm"
)

// DefaultFuzzyThreshold is the minimum similarity for a fuzzy-tier accept.
const DefaultFuzzyThreshold = 92

// Guard verifies claimed evidence against chunk text, tier by tier:
// exact substring, normalized substring, then fuzzy similarity as a
// last-resort net against transcription noise.
type Guard struct {
	scorer    Scorer
	threshold int
}

// NewGuard builds a guard. A nil scorer falls back to FuzzScorer; a
// non-positive threshold falls back to DefaultFuzzyThreshold.
func NewGuard(scorer Scorer, threshold int) *Guard {
	if scorer == nil {
		scorer = FuzzScorer{}
	}
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return &Guard{scorer: scorer, threshold: threshold}
}

// Verify classifies the match between evidence and chunkText. First tier to
// match wins; rejections come back as tier "empty" or "not_found".
func (g *Guard) Verify(evidence, chunkText string) (bool, model.Tier) {
	if strings.TrimSpace(evidence) == "" {
		return false, model.Tier{Kind: model.TierEmpty}
	}

	if strings.Contains(chunkText, evidence) {
		return true, model.Tier{Kind: model.TierExact}
	}

	normEv := textnorm.Fold(evidence)
	normChunk := textnorm.Fold(chunkText)
	if normEv != "" && strings.Contains(normChunk, normEv) {
		return true, model.Tier{Kind: model.TierNormalized}
	}

	if score := g.scorer.Score(normEv, normChunk); score >= g.threshold {
		return true, model.Tier{Kind: model.TierFuzzy, Score: score}
	}

	return false, model.Tier{Kind: model.TierNotFound}
}
