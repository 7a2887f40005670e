package catalog

import (
	"regexp"
	"strings"

	"github.com/rvanags/featmerge/internal/textnorm"
)

// codePattern is the catalog machine-code syntax: the NR prefix followed by
// digits, case-insensitive.
var codePattern = regexp.MustCompile(`^(?i:NR)[0-9]+$`)

// Resolver maps raw mention strings to canonical catalog codes. It is
// deliberately conservative: codes and normalized display names (plus an
// optional configured alias table) resolve, everything else is unresolved.
// No fuzzy matching happens here; fuzziness belongs to evidence verification.
//
// A Resolver is built per run from one catalog; there is no shared state
// beyond its precomputed maps, so it is safe for concurrent reads.
type Resolver struct {
	catalog *Catalog
	byName  map[string]string
	aliases map[string]string
}

// NewResolver builds a resolver over the catalog. The alias table maps
// supplementary spellings to either a code or a display name; entries that
// do not land on a catalog row are ignored.
func NewResolver(cat *Catalog, aliases map[string]string) *Resolver {
	r := &Resolver{
		catalog: cat,
		byName:  cat.nameIndex(),
		aliases: make(map[string]string, len(aliases)),
	}
	for raw, target := range aliases {
		code, ok := r.resolveDirect(target)
		if !ok {
			continue
		}
		key := textnorm.Fold(raw)
		if key != "" {
			r.aliases[key] = code
		}
	}
	return r
}

// Resolve maps a raw identifier to a canonical code. The boolean is false
// when the identifier is unknown or ambiguous; such mentions are dropped by
// the caller, never guessed at.
func (r *Resolver) Resolve(raw string) (string, bool) {
	if code, ok := r.resolveDirect(raw); ok {
		return code, true
	}
	if code, ok := r.aliases[textnorm.Fold(raw)]; ok {
		return code, true
	}
	return "", false
}

// resolveDirect tries the code syntax first, then the normalized
// display-name index.
func (r *Resolver) resolveDirect(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if codePattern.MatchString(s) {
		code := strings.ToUpper(s)
		if _, ok := r.catalog.Lookup(code); ok {
			return code, true
		}
		return "", false
	}
	if code, ok := r.byName[textnorm.Fold(s)]; ok {
		return code, true
	}
	return "", false
}
