// Package schema describes a searchable record type: its properties
// (getters, weights, identifier/hidden flags), its scaling exponent and
// its content label. It is the boxed-schema half of the polymorphism
// design described for the search core: at registration time the
// orchestrator stores a schema alongside a type-erased index, and at
// query time the schema projects the concrete record type.
package schema

import (
	"fmt"
	"strings"
)

// Property describes one searchable field of a record type T.
type Property[T any] struct {
	// Name is the wire property name, e.g. "code" or "name".
	Name string
	// Get extracts the field's raw text from a record.
	Get func(T) string
	// Weight is this property's non-negative contribution to the
	// combined score. Weight/TotalWeight is the normalized weight used
	// at scoring time.
	Weight float64
	// Identifier marks the value as short and code-like, selecting the
	// plain-Levenshtein fuzzy scorer over the partial-ratio one.
	Identifier bool
	// Hidden marks the value as one that must never leave the server
	// in a search response.
	Hidden bool
}

// Schema is the full searchable description of a record type.
type Schema[T any] struct {
	// Properties is the non-empty set of searchable fields.
	Properties []Property[T]
	// Scaling is the per-type scaling exponent s ≥ 0 applied to the
	// combined score; s == 0 defaults to 1.0.
	Scaling float64
	// ContentLabel names this record type in the wire envelope;
	// defaults to the lowercased type name if empty.
	ContentLabel string
}

// NonPositiveWeightError reports properties with a negative weight,
// found during Validate.
type NonPositiveWeightError struct {
	Properties []string
}

func (e *NonPositiveWeightError) Error() string {
	return fmt.Sprintf("schema: negative weight on properties %v", e.Properties)
}

// EmptyPropertySetError is returned when a schema declares no properties.
type EmptyPropertySetError struct{}

func (EmptyPropertySetError) Error() string {
	return "schema: property set must be non-empty"
}

// Validate checks the schema invariants: the property set is
// non-empty and no property carries a negative weight. Zero weights
// are accepted but degenerate (they contribute score^0 == 1).
func (s Schema[T]) Validate() error {
	if len(s.Properties) == 0 {
		return EmptyPropertySetError{}
	}
	var offenders []string
	for _, p := range s.Properties {
		if p.Weight < 0 {
			offenders = append(offenders, p.Name)
		}
	}
	if len(offenders) > 0 {
		return &NonPositiveWeightError{Properties: offenders}
	}
	return nil
}

// TotalWeight returns Σ weight_i across all properties.
func (s Schema[T]) TotalWeight() float64 {
	var total float64
	for _, p := range s.Properties {
		total += p.Weight
	}
	return total
}

// EffectiveScaling returns the schema's scaling exponent, defaulting to
// 1.0 when Scaling is the zero value.
func (s Schema[T]) EffectiveScaling() float64 {
	if s.Scaling == 0 {
		return 1.0
	}
	return s.Scaling
}

// Label returns the content label, falling back to the lowercased
// typeName when unset.
func (s Schema[T]) Label(typeName string) string {
	if s.ContentLabel != "" {
		return s.ContentLabel
	}
	return strings.ToLower(typeName)
}
