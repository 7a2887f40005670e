package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Verdict is the extraction step's confidence hint, carried through to the
// final decision. A fuzzy-tier acceptance may downgrade positive to uncertain
// depending on merge policy.
type Verdict string

const (
	VerdictPositive  Verdict = "positive"
	VerdictUncertain Verdict = "uncertain"
)

// TierKind classifies the outcome of evidence verification.
// The first three are acceptance tiers; the last two are rejection reasons.
type TierKind string

const (
	TierExact      TierKind = "exact"
	TierNormalized TierKind = "normalized"
	TierFuzzy      TierKind = "fuzzy"
	TierEmpty      TierKind = "empty"
	TierNotFound   TierKind = "not_found"
)

// Tier is the strength classification of an evidence match. For fuzzy
// acceptances Score carries the similarity (0-100) and the rendered form
// is "fuzzy_<score>".
type Tier struct {
	Kind  TierKind
	Score int
}

// Accepted reports whether the tier is an acceptance tier.
func (t Tier) Accepted() bool {
	switch t.Kind {
	case TierExact, TierNormalized, TierFuzzy:
		return true
	}
	return false
}

// Rank orders acceptance tiers for deduplication: exact beats normalized
// beats fuzzy. Rejection tiers rank zero.
func (t Tier) Rank() int {
	switch t.Kind {
	case TierExact:
		return 3
	case TierNormalized:
		return 2
	case TierFuzzy:
		return 1
	}
	return 0
}

func (t Tier) String() string {
	if t.Kind == TierFuzzy {
		return fmt.Sprintf("fuzzy_%d", t.Score)
	}
	return string(t.Kind)
}

// MarshalJSON renders the tier in its compact string form ("exact",
// "normalized", "fuzzy_95", ...), matching the reason strings of the
// exported artifacts.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the compact string form back into a Tier.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTier parses a rendered tier string.
func ParseTier(s string) (Tier, error) {
	if rest, ok := strings.CutPrefix(s, "fuzzy_"); ok {
		score, err := strconv.Atoi(rest)
		if err != nil {
			return Tier{}, fmt.Errorf("invalid fuzzy tier %q: %w", s, err)
		}
		return Tier{Kind: TierFuzzy, Score: score}, nil
	}
	switch TierKind(s) {
	case TierExact, TierNormalized, TierFuzzy, TierEmpty, TierNotFound:
		return Tier{Kind: TierKind(s)}, nil
	}
	return Tier{}, fmt.Errorf("unknown tier %q", s)
}

// VerifiedHit is a candidate mention that survived identity resolution and
// evidence verification. Several hits may exist per canonical id before
// deduplication.
type VerifiedHit struct {
	CanonicalID string  `json:"canonical_id"`
	ChunkID     int     `json:"chunk_id"`
	Evidence    string  `json:"evidence"`
	Tier        Tier    `json:"tier"`
	Verdict     Verdict `json:"verdict"`
}

// MergedDecision is the single winning hit per canonical id, the
// authoritative output row for that catalog item.
type MergedDecision struct {
	CanonicalID string  `json:"canonical_id"`
	ChunkID     int     `json:"chunk_id"`
	Evidence    string  `json:"evidence"`
	Tier        Tier    `json:"tier"`
	Verdict     Verdict `json:"verdict"`
}

// Drop reasons recorded in the audit trail.
const (
	DropReasonDisallowed = "disallowed" // resolved, but outside this run's allow-list
	DropReasonAuxiliary  = "auxiliary"  // resolved to a structural catalog row
)

// Drop records a candidate mention that was rejected, with the reason
// (an evidence rejection tier or one of the Drop* constants).
type Drop struct {
	Candidate CandidateMention `json:"candidate"`
	Reason    string           `json:"reason"`
}

// UnresolvedIdentifier records a raw identifier no catalog entry or alias
// could account for.
type UnresolvedIdentifier struct {
	Identifier string `json:"identifier"`
	ChunkID    int    `json:"chunk_id"`
}

// Warning flags an accepted decision whose evidence looks inconsistent with
// the catalog item's category. Advisory only; the decision stands.
type Warning struct {
	CanonicalID string `json:"canonical_id"`
	Evidence    string `json:"evidence"`
	Note        string `json:"note"`
}

// AuditTrail explains every candidate that did not become a decision.
// Superseded counts hits beaten in deduplication (they were accepted, not
// rejected); Malformed counts candidates skipped before resolution.
type AuditTrail struct {
	Drops      []Drop                 `json:"drops"`
	Unresolved []UnresolvedIdentifier `json:"unresolved"`
	Warnings   []Warning              `json:"warnings"`
	Superseded int                    `json:"superseded"`
	Malformed  int                    `json:"malformed"`
}

// MergeReport is the run-level summary written next to the decision table.
type MergeReport struct {
	ProcessedChunkIDs []int `json:"processed_chunk_ids"`
	TotalMentions     int   `json:"total_mentions"`
	Decisions         int   `json:"decisions"`
	Dropped           int   `json:"dropped"`
	Unresolved        int   `json:"unresolved"`
	Superseded        int   `json:"superseded"`
	Malformed         int   `json:"malformed"`
	Warnings          int   `json:"warnings"`
}
