// Package discipline implements the searchable schema and HTML scraper
// plugin for UNICAMP's undergraduate discipline catalog, grounded on
// _examples/original_source/Scraping/disciplines.py.
package discipline

import "github.com/marmitar/MC426-backend/internal/orderedset"

// Requirement is one prerequisite reference inside a Discipline's reqs
// tree: a discipline code, whether it is a partial prerequisite
// (raw token prefixed with "*", e.g. "*AA000"), and whether it is
// special (the code does not resolve to any known discipline).
type Requirement struct {
	Code    string `json:"code"`
	Partial bool   `json:"partial,omitempty"`
	Special bool   `json:"special,omitempty"`
}

// Discipline is one record of the discipline corpus.
type Discipline struct {
	Code     string                `json:"code"`
	Name     string                `json:"name"`
	Credits  int                   `json:"credits"`
	Reqs     [][]Requirement       `json:"reqs,omitempty"`
	ReqBy    orderedset.Set[string] `json:"reqBy,omitempty"`
	Syllabus string                `json:"syllabus"`
}

// Key returns the discipline's code, used as the corpus's identifier
// lookup key.
func (d Discipline) Key() string { return d.Code }
