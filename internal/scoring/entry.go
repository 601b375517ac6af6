// Package scoring implements the per-record scorer (schema.md's C4):
// given a record and its schema, it builds one FieldScorer per
// property and combines their scores into a single record score.
package scoring

import (
	"math"

	"github.com/marmitar/MC426-backend/internal/fuzzy"
	"github.com/marmitar/MC426-backend/internal/schema"
	"github.com/marmitar/MC426-backend/internal/textnorm"
)

// perFieldFloor prevents a single zero-score field from masking every
// other field in the product below.
const perFieldFloor = 1e-4

// FieldScorer owns one property's normalized stored text, its fuzzy
// pattern, and its normalized weight.
type FieldScorer struct {
	Name       string
	StoredText string
	Weight     float64
	Hidden     bool
	scorer     fuzzy.Scorer
}

// Entry is one per source record: a vector of FieldScorers plus the
// scaling exponent applied to their combination. Entries are immutable
// after Build and safe for concurrent Score calls.
type Entry struct {
	fields  []FieldScorer
	scaling float64
}

// Build constructs an Entry for record from schema s. It fails with a
// *schema.NonPositiveWeightError or schema.EmptyPropertySetError if s
// is invalid; callers should treat this as a corpus-level failure, not
// a per-record one, since the schema is shared by every entry.
func Build[T any](record T, s schema.Schema[T]) (Entry, error) {
	if err := s.Validate(); err != nil {
		return Entry{}, err
	}
	total := s.TotalWeight()

	fields := make([]FieldScorer, len(s.Properties))
	for i, p := range s.Properties {
		text := textnorm.Pipeline(p.Get(record))
		variant := fuzzy.Text
		if p.Identifier {
			variant = fuzzy.Identifier
		}
		normalizedWeight := 0.0
		if total > 0 {
			normalizedWeight = p.Weight / total
		}
		fields[i] = FieldScorer{
			Name:       p.Name,
			StoredText: text,
			Weight:     normalizedWeight,
			Hidden:     p.Hidden,
			scorer:     fuzzy.New(text, variant),
		}
	}
	return Entry{fields: fields, scaling: s.EffectiveScaling()}, nil
}

// Score combines every field's fuzzy distance against the (already
// normalized) query into a single value in [1e-4^scaling, 1]:
//
//	per_field = clamp(field.score(q), 1e-4, 1)
//	combined  = Π per_field ^ weight_i
//	final     = combined ^ abs(scaling)
func (e Entry) Score(normalizedQuery string) float64 {
	combined := 1.0
	for _, f := range e.fields {
		perField := clamp(f.scorer.Score(normalizedQuery), perFieldFloor, 1)
		combined *= math.Pow(perField, f.Weight)
	}
	return math.Pow(combined, math.Abs(e.scaling))
}

// VisibleFields returns the stored text of every non-hidden property,
// keyed by property name.
func (e Entry) VisibleFields() map[string]string {
	return e.fields2map(false)
}

// AllFields returns the stored text of every property including hidden
// ones, used only during bulk export for re-indexing.
func (e Entry) AllFields() map[string]string {
	return e.fields2map(true)
}

func (e Entry) fields2map(includeHidden bool) map[string]string {
	out := make(map[string]string, len(e.fields))
	for _, f := range e.fields {
		if f.Hidden && !includeHidden {
			continue
		}
		out[f.Name] = f.StoredText
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
