package model

// CatalogEntry is one row of the closed-world catalog. Code is the canonical
// machine identifier ("NR" + digits). Auxiliary rows are structural (section
// headers in the master list, marked by an empty display name) and must never
// be targets of mentions.
type CatalogEntry struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Auxiliary   bool   `json:"auxiliary"`
}
