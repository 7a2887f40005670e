// Package export flattens merge decisions against the catalog's full row
// order, producing the aligned table, the final per-code decisions, and the
// detections CSV.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/rvanags/featmerge/internal/catalog"
	"github.com/rvanags/featmerge/internal/model"
)

// AlignedRow is one catalog row annotated with the merge outcome, in master
// row order. Auxiliary rows come through blank: they are never detection
// targets.
type AlignedRow struct {
	Code      string `json:"nr_code"`
	Name      string `json:"variable_name"`
	IsAux     string `json:"is_aux"`       // "Y"/"N"
	Mentioned string `json:"mentioned_YN"` // "Y" for exact/normalized acceptance
	MaybeFlag string `json:"maybe_flag"`   // "Y" for fuzzy-tier or uncertain acceptance
	Evidence  string `json:"evidence"`
	Tier      string `json:"tier,omitempty"`
}

// FinalDecision is the run's verdict for one allow-listed code:
// "Y" (detected), "M" (detected but needs review), "N" (not detected).
type FinalDecision struct {
	Code     string `json:"code"`
	Decision string `json:"decision"`
}

// Table is the full export bundle.
type Table struct {
	Rows           []AlignedRow    `json:"rows"`
	Final          []FinalDecision `json:"final"`
	Drift          []string        `json:"drift"`           // feature rows absent from the allow-list
	DuplicateNames []string        `json:"duplicate_names"` // non-auxiliary names repeated in the catalog
	Notes          []string        `json:"notes"`
}

// BuildTable aligns decisions to the catalog. Ordering is deterministic:
// rows in catalog order, final decisions in allow-list order, drift and
// duplicates sorted.
func BuildTable(cat *catalog.Catalog, allow *catalog.AllowList, decisions []model.MergedDecision) *Table {
	byCode := make(map[string]model.MergedDecision, len(decisions))
	for _, d := range decisions {
		byCode[d.CanonicalID] = d
	}

	t := &Table{}
	nameCounts := make(map[string]int)
	positives := 0
	featureRows := 0

	for _, e := range cat.Entries() {
		row := AlignedRow{Code: e.Code, Name: e.DisplayName, IsAux: yn(e.Auxiliary), Mentioned: "N", MaybeFlag: "N"}
		if e.Auxiliary {
			t.Rows = append(t.Rows, row)
			continue
		}
		featureRows++
		nameCounts[e.DisplayName]++
		if !allow.Contains(e.Code) {
			t.Drift = append(t.Drift, e.DisplayName)
		}
		if d, ok := byCode[e.Code]; ok {
			row.Evidence = d.Evidence
			row.Tier = d.Tier.String()
			if d.Tier.Kind == model.TierFuzzy || d.Verdict == model.VerdictUncertain {
				row.MaybeFlag = "Y"
			} else {
				row.Mentioned = "Y"
				positives++
			}
		}
		t.Rows = append(t.Rows, row)
	}

	for _, code := range allow.Codes() {
		decision := "N"
		if d, ok := byCode[code]; ok {
			if d.Tier.Kind == model.TierFuzzy || d.Verdict == model.VerdictUncertain {
				decision = "M"
			} else {
				decision = "Y"
			}
		}
		t.Final = append(t.Final, FinalDecision{Code: code, Decision: decision})
	}

	for name, n := range nameCounts {
		if n > 1 {
			t.DuplicateNames = append(t.DuplicateNames, name)
		}
	}
	sort.Strings(t.DuplicateNames)
	sort.Strings(t.Drift)

	if positives == 0 && featureRows > 0 {
		if len(decisions) == 0 {
			t.Notes = append(t.Notes, "no positives: merge produced no decisions")
		} else {
			t.Notes = append(t.Notes, "no firm positives despite merge decisions; review fuzzy/uncertain rows")
		}
	}
	for _, u := range allow.Unusable() {
		t.Notes = append(t.Notes, fmt.Sprintf("allow-list entry %q resolved to no catalog row", u))
	}
	return t
}

// WriteCSV writes the detections CSV in catalog row order with the stable
// header nr_code,variable_name,is_aux,mentioned_YN,maybe_flag,evidence.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"nr_code", "variable_name", "is_aux", "mentioned_YN", "maybe_flag", "evidence"}); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := cw.Write([]string{r.Code, r.Name, r.IsAux, r.Mentioned, r.MaybeFlag, r.Evidence}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAlignedJSONL writes one aligned row per line, catalog order.
func (t *Table) WriteAlignedJSONL(w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, r := range t.Rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
