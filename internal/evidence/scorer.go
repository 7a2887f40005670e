// Package evidence decides whether a claimed quotation is acceptable support
// for a mention. It is a pure string oracle: no catalog knowledge, no state.
package evidence

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Scorer measures the similarity of two strings on a 0-100 scale. The fuzzy
// tier is defined against this narrow interface so the similarity library
// stays interchangeable and tests can plug a stub.
type Scorer interface {
	Score(a, b string) int
}

// FuzzScorer scores with the larger of the best partial-alignment ratio and
// the token-set ratio, the substring-oriented pair suited to matching a short
// quotation against a whole chunk.
type FuzzScorer struct{}

// Score implements Scorer.
func (FuzzScorer) Score(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	partial := fuzzy.PartialRatio(a, b)
	tokenSet := fuzzy.TokenSetRatio(a, b)
	if tokenSet > partial {
		return tokenSet
	}
	return partial
}
