// Package merge reconciles per-chunk candidate mentions into one
// authoritative decision per catalog item, with an audit trail explaining
// every candidate that did not make it.
package merge

import (
	"unicode/utf8"

	"github.com/rvanags/featmerge/internal/catalog"
	"github.com/rvanags/featmerge/internal/evidence"
	"github.com/rvanags/featmerge/internal/model"
)

// Options tune one merge run.
type Options struct {
	// FuzzyThreshold for the evidence guard (0 means the default).
	FuzzyThreshold int
	// DowngradeFuzzy demotes fuzzy-tier hits to verdict uncertain.
	DowngradeFuzzy bool
	// Sanity maps a folded display-name fragment to evidence keywords; see
	// the sanity pass. Nil disables the pass.
	Sanity map[string][]string
	// AllowedChunks restricts processing to these chunk ids. Nil means all.
	AllowedChunks map[int]bool
	// Scorer overrides the fuzzy similarity function (tests mostly).
	Scorer evidence.Scorer
}

// Engine performs closed-world merging for one run. It is a pure in-memory
// reduction: no I/O, single-threaded, deterministic for identical input.
type Engine struct {
	catalog  *catalog.Catalog
	resolver *catalog.Resolver
	allow    *catalog.AllowList
	guard    *evidence.Guard
	opts     Options
}

// NewEngine wires a merge run. A missing catalog or allow-list is a
// configuration error: without them no closed-world filtering is possible.
func NewEngine(cat *catalog.Catalog, resolver *catalog.Resolver, allow *catalog.AllowList, opts Options) (*Engine, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, model.ConfigErrorf("merge requires a non-empty catalog")
	}
	if allow == nil {
		return nil, model.ConfigErrorf("merge requires an allow-list")
	}
	if resolver == nil {
		resolver = catalog.NewResolver(cat, nil)
	}
	return &Engine{
		catalog:  cat,
		resolver: resolver,
		allow:    allow,
		guard:    evidence.NewGuard(opts.Scorer, opts.FuzzyThreshold),
		opts:     opts,
	}, nil
}

// Result is the outcome of one merge run.
type Result struct {
	Decisions []model.MergedDecision
	Audit     model.AuditTrail
	Report    model.MergeReport
}

// Merge processes candidate mentions in chunk order (extraction order within
// a chunk), resolves identities, verifies evidence, and deduplicates per
// canonical id by tier priority (exact > normalized > fuzzy), then longer
// evidence, then first acceptance. Decisions come out in first-accepted
// order, so repeated runs on identical input are byte-identical.
func (e *Engine) Merge(chunks []model.Chunk, mentions []model.ChunkMentions) (*Result, error) {
	textByID := make(map[int]string, len(chunks))
	for _, c := range chunks {
		textByID[c.ID] = c.Text
	}
	mentionsByID := make(map[int][]model.Mention, len(mentions))
	for _, cm := range mentions {
		mentionsByID[cm.ChunkID] = append(mentionsByID[cm.ChunkID], cm.Mentions...)
	}

	res := &Result{
		Audit: model.AuditTrail{
			Drops:      []model.Drop{},
			Unresolved: []model.UnresolvedIdentifier{},
			Warnings:   []model.Warning{},
		},
	}
	winners := make(map[string]*model.VerifiedHit)
	var order []string
	total := 0

	// Mentions keyed to a chunk id the segmenter never produced cannot be
	// verified against anything; they are malformed, counted, skipped.
	for _, cm := range mentions {
		if _, known := textByID[cm.ChunkID]; !known {
			res.Audit.Malformed += len(cm.Mentions)
		}
	}

	for _, chunk := range chunks {
		if e.opts.AllowedChunks != nil && !e.opts.AllowedChunks[chunk.ID] {
			continue
		}
		res.Report.ProcessedChunkIDs = append(res.Report.ProcessedChunkIDs, chunk.ID)

		for _, m := range mentionsByID[chunk.ID] {
			if m.Identifier == "" {
				res.Audit.Malformed++
				continue
			}
			total++
			cand := model.CandidateMention{
				ChunkID:    chunk.ID,
				Identifier: m.Identifier,
				Evidence:   m.Evidence,
				Verdict:    m.Verdict,
			}

			code, ok := e.resolver.Resolve(m.Identifier)
			if !ok {
				res.Audit.Unresolved = append(res.Audit.Unresolved, model.UnresolvedIdentifier{
					Identifier: m.Identifier,
					ChunkID:    chunk.ID,
				})
				continue
			}

			entry, _ := e.catalog.Lookup(code)
			if entry.Auxiliary {
				res.Audit.Drops = append(res.Audit.Drops, model.Drop{Candidate: cand, Reason: model.DropReasonAuxiliary})
				continue
			}
			if !e.allow.Contains(code) {
				res.Audit.Drops = append(res.Audit.Drops, model.Drop{Candidate: cand, Reason: model.DropReasonDisallowed})
				continue
			}

			accepted, tier := e.guard.Verify(m.Evidence, chunk.Text)
			if !accepted {
				res.Audit.Drops = append(res.Audit.Drops, model.Drop{Candidate: cand, Reason: tier.String()})
				continue
			}

			hit := model.VerifiedHit{
				CanonicalID: code,
				ChunkID:     chunk.ID,
				Evidence:    m.Evidence,
				Tier:        tier,
				Verdict:     verdictFor(m.Verdict, tier, e.opts.DowngradeFuzzy),
			}

			cur, exists := winners[code]
			if !exists {
				winners[code] = &hit
				order = append(order, code)
				continue
			}
			// One of the two is superseded either way; superseded hits were
			// accepted, not rejected, so they are counted, not dropped.
			res.Audit.Superseded++
			if beats(hit, *cur) {
				winners[code] = &hit
			}
		}
	}

	for _, code := range order {
		w := winners[code]
		res.Decisions = append(res.Decisions, model.MergedDecision{
			CanonicalID: w.CanonicalID,
			ChunkID:     w.ChunkID,
			Evidence:    w.Evidence,
			Tier:        w.Tier,
			Verdict:     w.Verdict,
		})
	}

	e.sanityPass(res)

	res.Report.TotalMentions = total
	res.Report.Decisions = len(res.Decisions)
	res.Report.Dropped = len(res.Audit.Drops)
	res.Report.Unresolved = len(res.Audit.Unresolved)
	res.Report.Superseded = res.Audit.Superseded
	res.Report.Malformed = res.Audit.Malformed
	res.Report.Warnings = len(res.Audit.Warnings)
	return res, nil
}

// beats reports whether a should replace b as the winner for a canonical id:
// higher tier first, longer evidence on a tied tier, earlier acceptance
// otherwise.
func beats(a, b model.VerifiedHit) bool {
	ra, rb := a.Tier.Rank(), b.Tier.Rank()
	if ra != rb {
		return ra > rb
	}
	return utf8.RuneCountInString(a.Evidence) > utf8.RuneCountInString(b.Evidence)
}

// verdictFor fills in the default verdict and applies the fuzzy downgrade
// policy.
func verdictFor(hint model.Verdict, tier model.Tier, downgrade bool) model.Verdict {
	v := hint
	if v == "" {
		v = model.VerdictPositive
	}
	if downgrade && tier.Kind == model.TierFuzzy {
		v = model.VerdictUncertain
	}
	return v
}
