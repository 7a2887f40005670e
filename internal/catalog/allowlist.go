package catalog

import (
	"bufio"
	"io"
	"strings"
)

// AllowList is the run-scoped subset of the catalog eligible to appear in
// final output. Entries resolve through the same resolver as mentions;
// entries that resolve to nothing are kept aside as unusable.
type AllowList struct {
	codes    []string
	set      map[string]bool
	unusable []string
}

// ReadAllowList reads one entry per line (a code or a display name),
// skipping blank lines. A leading BOM is tolerated.
func ReadAllowList(r io.Reader) ([]string, error) {
	var entries []string
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		line = strings.TrimSpace(line)
		if line != "" {
			entries = append(entries, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ResolveAllowList maps raw allow-list entries to canonical codes,
// preserving file order and deduplicating repeats.
func ResolveAllowList(entries []string, r *Resolver) *AllowList {
	a := &AllowList{set: make(map[string]bool, len(entries))}
	for _, entry := range entries {
		code, ok := r.Resolve(entry)
		if !ok {
			a.unusable = append(a.unusable, entry)
			continue
		}
		if !a.set[code] {
			a.set[code] = true
			a.codes = append(a.codes, code)
		}
	}
	return a
}

// Contains reports whether the code is in play for this run.
func (a *AllowList) Contains(code string) bool {
	return a.set[code]
}

// Codes returns the resolved codes in allow-list order.
func (a *AllowList) Codes() []string {
	return a.codes
}

// Unusable returns the entries that resolved to no catalog row.
func (a *AllowList) Unusable() []string {
	return a.unusable
}

// Len returns the number of resolved codes.
func (a *AllowList) Len() int {
	return len(a.codes)
}
