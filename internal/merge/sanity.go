package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rvanags/featmerge/internal/model"
	"github.com/rvanags/featmerge/internal/textnorm"
)

// sanityPass flags accepted decisions whose evidence carries none of the
// keywords implied by the item's display name (e.g. an "LED" item whose
// evidence never says LED). Warnings are advisory, aimed at fuzzy-tier
// acceptances a reviewer should eyeball; decisions are never removed.
func (e *Engine) sanityPass(res *Result) {
	if len(e.opts.Sanity) == 0 {
		return
	}
	markers := make([]string, 0, len(e.opts.Sanity))
	for m := range e.opts.Sanity {
		markers = append(markers, m)
	}
	sort.Strings(markers)

	for _, d := range res.Decisions {
		entry, ok := e.catalog.Lookup(d.CanonicalID)
		if !ok {
			continue
		}
		name := textnorm.Fold(entry.DisplayName)
		ev := textnorm.Fold(d.Evidence)
		for _, marker := range markers {
			if !strings.Contains(name, marker) {
				continue
			}
			if containsAny(ev, e.opts.Sanity[marker]) {
				continue
			}
			res.Audit.Warnings = append(res.Audit.Warnings, model.Warning{
				CanonicalID: d.CanonicalID,
				Evidence:    d.Evidence,
				Note:        fmt.Sprintf("evidence has no %q keyword for item %q (tier %s)", marker, entry.DisplayName, d.Tier),
			})
		}
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, textnorm.Fold(kw)) {
			return true
		}
	}
	return false
}
