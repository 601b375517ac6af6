// Package textnorm implements the search-time text normalization
// pipeline shared by every fuzzy scorer and HTML parsing helper:
// Unicode case-folding, diacritic stripping, and whitespace collapse.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper removes Unicode combining marks (category Mn) after
// NFD decomposition, which is the standard way to fold "é" into "e"
// without a bespoke accent table.
var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize applies NFC normalization, case folding, diacritic removal
// and fullwidth-ASCII folding (see width), producing an ASCII-superset lowercase
// string with no combining marks. It does not collapse whitespace; use
// Pipeline for the full search-normalization pipeline.
func Normalize(s string) string {
	folded, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		folded = s
	}
	folded = width(folded)
	return strings.ToLower(folded)
}

// width folds the fullwidth ASCII block (U+FF01-U+FF5E) to plain ASCII
// and the ideographic space (U+3000) to an ASCII space, without a
// locale database. Every other full-width or half-width form,
// including the half-width katakana and hangul ranges, is left
// unchanged.
func width(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 0xFF01 && r <= 0xFF5E:
			b.WriteRune(r - 0xFEE0)
		case r == 0x3000:
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SplitWords splits s on any Unicode whitespace class, dropping empty
// tokens produced by runs of adjacent separators.
func SplitWords(s string) []string {
	return strings.FieldsFunc(s, unicode.IsSpace)
}

// CollapseWhitespace joins SplitWords(s) with a single space,
// normalizing any run of whitespace (including newlines and tabs) to
// exactly one ASCII space and trimming leading/trailing whitespace.
func CollapseWhitespace(s string) string {
	return strings.Join(SplitWords(s), " ")
}

// Pipeline is the search normalization pipeline used everywhere in the
// index: collapse_whitespace ∘ normalize. It is idempotent: applying it
// twice yields the same result as applying it once, since its output
// is already lowercase, diacritic-free and single-spaced.
func Pipeline(s string) string {
	return CollapseWhitespace(Normalize(s))
}

// SanitisePathSegment replaces every byte outside [A-Za-z0-9] with '_',
// producing a string safe to use as a single path segment (e.g. a cache
// file's base name) regardless of the input's origin. The result always
// matches [A-Za-z0-9_]* and is idempotent.
func SanitisePathSegment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if IsASCIIAlnum(rune(c)) {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// IsASCIIAlnum reports whether c is an ASCII letter or digit.
func IsASCIIAlnum(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
