// Package course implements the searchable schema and HTML scraper
// plugin for UNICAMP's undergraduate course catalog, grounded on
// _examples/original_source/Scraping/courses.py.
package course

import "strconv"

func parseVariantIndex(sel string) (int, error) {
	return strconv.Atoi(sel)
}

// Variant is one named specialization ("habilitação") of a course,
// with its own semester tree.
type Variant struct {
	Name string `json:"name"`
	// Tree holds one discipline-code slice per semester, in order.
	Tree [][]string `json:"tree"`
	// Electives holds the count of unassigned elective slots for the
	// semester at the same index in Tree. This field has no equivalent
	// in the reference scraper; see DESIGN.md for how it is derived.
	Electives []int `json:"electives,omitempty"`
}

// Course is one record of the course corpus. A course either carries
// named Variant entries (habilitações) or, when it has none, a single
// flat Tree/Electives pair.
type Course struct {
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Variant   []Variant  `json:"variant,omitempty"`
	Tree      [][]string `json:"tree,omitempty"`
	Electives []int      `json:"electives,omitempty"`
}

// Key returns the course's code, used as the corpus's identifier
// lookup key.
func (c Course) Key() string { return c.Code }

// Preview is the wire shape for GET /api/curso/:code: the course's
// identity plus the list of its variant names, empty for a
// no-variants course.
type Preview struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Variants []string `json:"variants"`
}

// ToPreview projects c into its Preview wire shape.
func (c Course) ToPreview() Preview {
	names := make([]string, len(c.Variant))
	for i, v := range c.Variant {
		names[i] = v.Name
	}
	return Preview{Code: c.Code, Name: c.Name, Variants: names}
}

// variants returns c's named variants, or a single synthesized
// unnamed variant wrapping its flat tree when it has none — so a
// caller resolving GET /api/curso/:code/:variant can treat every
// course uniformly.
func (c Course) variants() []Variant {
	if len(c.Variant) > 0 {
		return c.Variant
	}
	return []Variant{{Tree: c.Tree, Electives: c.Electives}}
}

// ResolveVariant looks up a variant by exact name match first, then
// by zero-based index into the variant list. It reports false if sel
// matches neither.
func (c Course) ResolveVariant(sel string) (Variant, bool) {
	vs := c.variants()
	for _, v := range vs {
		if v.Name == sel {
			return v, true
		}
	}
	if idx, err := parseVariantIndex(sel); err == nil && idx >= 0 && idx < len(vs) {
		return vs[idx], true
	}
	return Variant{}, false
}

// DisciplineRef is one entry in a CourseTree semester: a discipline
// code with its credit count, resolved against the discipline corpus
// at request time.
type DisciplineRef struct {
	Code    string `json:"code"`
	Credits int    `json:"credits"`
}

// Semester is one entry in a CourseTree's semester list.
type Semester struct {
	Disciplines []DisciplineRef `json:"disciplines"`
	Electives   int             `json:"electives"`
}

// Tree is the wire shape for GET /api/curso/:code/:variant.
type Tree struct {
	Semesters []Semester `json:"semesters"`
}

// BuildTree projects v into the CourseTree wire shape, resolving each
// discipline code's credit count via lookupCredits — typically the
// discipline corpus's identifier lookup. An unresolved code is
// reported with zero credits rather than failing the whole response.
func (v Variant) BuildTree(lookupCredits func(code string) (credits int, ok bool)) Tree {
	semesters := make([]Semester, len(v.Tree))
	for i, codes := range v.Tree {
		discs := make([]DisciplineRef, 0, len(codes))
		for _, code := range codes {
			credits, _ := lookupCredits(code)
			discs = append(discs, DisciplineRef{Code: code, Credits: credits})
		}
		electives := 0
		if i < len(v.Electives) {
			electives = v.Electives[i]
		}
		semesters[i] = Semester{Disciplines: discs, Electives: electives}
	}
	return Tree{Semesters: semesters}
}
