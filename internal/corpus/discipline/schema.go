package discipline

import "github.com/marmitar/MC426-backend/internal/schema"

// Schema describes the discipline corpus's searchable properties. Code
// is a short identifier scored with plain Levenshtein; name and
// syllabus are free text; credits and the prerequisite tree are not
// searchable fields (they are numeric/structural) and travel only as
// extra wire data through a dedicated lookup endpoint, not through the
// fuzzy index.
func Schema() schema.Schema[Discipline] {
	return schema.Schema[Discipline]{
		Properties: []schema.Property[Discipline]{
			{
				Name:       "code",
				Get:        func(d Discipline) string { return d.Code },
				Weight:     2,
				Identifier: true,
			},
			{
				Name:   "name",
				Get:    func(d Discipline) string { return d.Name },
				Weight: 3,
			},
			{
				Name:   "syllabus",
				Get:    func(d Discipline) string { return d.Syllabus },
				Weight: 1,
			},
		},
		Scaling:      1.0,
		ContentLabel: "discipline",
	}
}
