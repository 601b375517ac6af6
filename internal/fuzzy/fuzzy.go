// Package fuzzy implements the two fuzzy-scoring variants used by the
// search index: a plain Levenshtein ratio for short identifier-like
// fields, and a partial-ratio-with-Levenshtein-fallback scorer for free
// text. Both report a distance in [0,1] where 0 means an exact match.
package fuzzy

import (
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// MinScore is the threshold text scorers use to switch from partial
// ratio to the Levenshtein tie-breaking band.
const MinScore = 0.01

// epsilon is the smallest positive float64 greater than zero, used to
// keep the tie-breaking band strictly above a perfect partial-ratio
// match.
const epsilon = math.SmallestNonzeroFloat64

// Variant selects which scoring algorithm a Scorer uses.
type Variant int

const (
	// Identifier scores using plain Levenshtein ratio only, intended
	// for short code-like tokens (4-10 characters).
	Identifier Variant = iota
	// Text scores using partial ratio with a Levenshtein fallback band
	// near MinScore, intended for free-text fields.
	Text
)

// Scorer is a value constructed from a normalized pattern string. It is
// safe for concurrent use by multiple goroutines: Score never mutates
// the receiver.
type Scorer struct {
	pattern []rune
	variant Variant
}

// New builds a Scorer over pattern, which must already have been passed
// through textnorm.Pipeline by the caller (§4.5 of the search
// pipeline). New never fails: allocation failure is treated as fatal
// by the runtime, not surfaced as an error here.
func New(pattern string, variant Variant) Scorer {
	return Scorer{pattern: []rune(pattern), variant: variant}
}

// Score returns a distance in [0,1] between the scorer's pattern and
// query, where 0 means an exact match. query must already be
// normalized by the caller. Score is deterministic and independent of
// the calling goroutine or process.
func (s Scorer) Score(query string) float64 {
	q := []rune(query)
	switch s.variant {
	case Identifier:
		return levenshteinRatio(s.pattern, q)
	default:
		return textScore(s.pattern, q)
	}
}

func textScore(pattern, query []rune) float64 {
	r := partialRatio(pattern, query)
	if r > MinScore+epsilon {
		return math.Min(r, 1)
	}
	lr := clamp(levenshteinRatio(pattern, query), 0, 1)
	return epsilon + MinScore*lr
}

// levenshteinRatio computes the Levenshtein edit distance between a and
// b, normalized by the length of the longer string, so that 0 means
// equal strings and 1 means completely unrelated ones (bounded by the
// classic edit-distance triangle inequality: dist ≤ max(len(a), len(b))).
func levenshteinRatio(a, b []rune) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(string(a), string(b))
	denom := max(len(a), len(b))
	return clamp(float64(dist)/float64(denom), 0, 1)
}

// partialRatio reports the best (lowest) normalized Levenshtein
// distance between the shorter string and every same-length window of
// the longer string. When the strings are the same length this reduces
// to a single levenshteinRatio call.
func partialRatio(a, b []rune) float64 {
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	if len(shorter) == 0 {
		return levenshteinRatio(a, b)
	}
	if len(shorter) == len(longer) {
		return levenshteinRatio(shorter, longer)
	}

	best := math.Inf(1)
	windowLen := len(shorter)
	for start := 0; start+windowLen <= len(longer); start++ {
		window := longer[start : start+windowLen]
		r := levenshteinRatio(shorter, window)
		if r < best {
			best = r
		}
		if best == 0 {
			break
		}
	}
	return best
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// RuneLen reports the number of runes in s, exposed for callers that
// need to size windows without re-decoding UTF-8 themselves.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
