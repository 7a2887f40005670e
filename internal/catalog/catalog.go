// Package catalog holds the closed-world item list and the conservative
// identity resolution from raw mention strings to canonical codes.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rvanags/featmerge/internal/model"
	"github.com/rvanags/featmerge/internal/textnorm"
)

// Required master CSV columns. An empty Variable Name marks an auxiliary
// (structural) row.
const (
	colCode = "Nr Code"
	colName = "Variable Name"
)

// Catalog is the fixed universe of detectable items for a run, read-only
// after load. Row order is preserved for export alignment.
type Catalog struct {
	entries []model.CatalogEntry
	byCode  map[string]model.CatalogEntry
}

// New builds a catalog from rows, rejecting duplicate codes.
func New(entries []model.CatalogEntry) (*Catalog, error) {
	byCode := make(map[string]model.CatalogEntry, len(entries))
	for _, e := range entries {
		code := strings.ToUpper(strings.TrimSpace(e.Code))
		if code == "" {
			return nil, model.ConfigErrorf("catalog row %q has no code", e.DisplayName)
		}
		if _, dup := byCode[code]; dup {
			return nil, model.ConfigErrorf("duplicate catalog code %s", code)
		}
		e.Code = code
		byCode[code] = e
	}
	out := make([]model.CatalogEntry, len(entries))
	copy(out, entries)
	for i := range out {
		out[i].Code = strings.ToUpper(strings.TrimSpace(out[i].Code))
	}
	return &Catalog{entries: out, byCode: byCode}, nil
}

// LoadCSV reads the master list. The header must carry "Nr Code" and
// "Variable Name"; other columns are ignored. A leading BOM is tolerated.
func LoadCSV(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, model.ConfigErrorf("catalog CSV: cannot read header: %v", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	codeIdx, nameIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case colCode:
			codeIdx = i
		case colName:
			nameIdx = i
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return nil, model.ConfigErrorf("catalog CSV: missing required columns %q, %q", colCode, colName)
	}

	var entries []model.CatalogEntry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog CSV: %w", err)
		}
		if codeIdx >= len(rec) {
			continue
		}
		code := strings.TrimSpace(rec[codeIdx])
		if code == "" {
			continue
		}
		name := ""
		if nameIdx < len(rec) {
			name = strings.TrimSpace(rec[nameIdx])
		}
		entries = append(entries, model.CatalogEntry{
			Code:        code,
			DisplayName: name,
			Auxiliary:   name == "",
		})
	}
	return New(entries)
}

// Entries returns the rows in original order.
func (c *Catalog) Entries() []model.CatalogEntry {
	return c.entries
}

// Len returns the number of rows.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup finds an entry by canonical code (case-insensitive).
func (c *Catalog) Lookup(code string) (model.CatalogEntry, bool) {
	e, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return e, ok
}

// nameIndex builds the folded display-name to code map, skipping auxiliary
// rows: they have no name and must never be resolution targets. On duplicate
// names the first row wins, matching master-list precedence.
func (c *Catalog) nameIndex() map[string]string {
	idx := make(map[string]string, len(c.entries))
	for _, e := range c.entries {
		if e.Auxiliary {
			continue
		}
		key := textnorm.Fold(e.DisplayName)
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = e.Code
		}
	}
	return idx
}
