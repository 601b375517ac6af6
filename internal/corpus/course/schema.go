package course

import "github.com/marmitar/MC426-backend/internal/schema"

// Schema describes the course corpus's searchable properties: code as
// a short identifier, name as free text. The variant tree carries no
// searchable text of its own; it travels as extra wire data through
// the dedicated lookup endpoints.
func Schema() schema.Schema[Course] {
	return schema.Schema[Course]{
		Properties: []schema.Property[Course]{
			{
				Name:       "code",
				Get:        func(c Course) string { return c.Code },
				Weight:     2,
				Identifier: true,
			},
			{
				Name:   "name",
				Get:    func(c Course) string { return c.Name },
				Weight: 3,
			},
		},
		Scaling:      1.0,
		ContentLabel: "course",
	}
}
