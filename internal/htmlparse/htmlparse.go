// Package htmlparse implements the reusable HTML parsing primitives
// consumed by scraper plugins (schema.md's C10): labelled-section
// extraction, safe text extraction with tag assertions, and small
// regex-driven parsers layered on top of them.
package htmlparse

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/marmitar/MC426-backend/internal/textnorm"
)

// MissingElementError is returned by GetText when node is nil.
type MissingElementError struct{}

func (MissingElementError) Error() string { return "htmlparse: missing element" }

// UnexpectedElementTagError is returned by GetText when the node's tag
// does not match the expected one.
type UnexpectedElementTagError struct {
	Expected string
	Actual   string
}

func (e *UnexpectedElementTagError) Error() string {
	return fmt.Sprintf("htmlparse: expected tag %q, got %q", e.Expected, e.Actual)
}

// NodeHasChildrenError is returned by GetText when the node has child
// elements but allowChildren was false.
type NodeHasChildrenError struct{}

func (NodeHasChildrenError) Error() string { return "htmlparse: node has children" }

// UnparseableTextError is returned by ParseText when parser returns
// false for a node's text.
type UnparseableTextError struct {
	Target string
	Text   string
}

func (e *UnparseableTextError) Error() string {
	return fmt.Sprintf("htmlparse: could not parse %q as %s", e.Text, e.Target)
}

// DuplicateSectionError is returned by ParseSections when two headers
// under the same container collapse to the same text.
type DuplicateSectionError struct {
	Header string
}

func (e *DuplicateSectionError) Error() string {
	return fmt.Sprintf("htmlparse: duplicate section header %q", e.Header)
}

// ParseSections iterates over every descendant of container whose tag
// equals headerTag, calling extractBody(header) for each; whenever
// extractBody returns a non-nil node, the pair
// (collapse_whitespace(header text), body) is recorded. A header text
// collision (two headers collapsing to the same key) fails with
// DuplicateSectionError, since the result map's keys must be unique.
func ParseSections(container *html.Node, headerTag string, extractBody func(header *html.Node) *html.Node) (map[string]*html.Node, error) {
	headers := FindAllDescendants(container, func(n *html.Node) bool {
		return n.Data == headerTag
	})

	out := make(map[string]*html.Node, len(headers))
	for _, header := range headers {
		body := extractBody(header)
		if body == nil {
			continue
		}
		key := textnorm.CollapseWhitespace(InnerText(header))
		if _, exists := out[key]; exists {
			return nil, &DuplicateSectionError{Header: key}
		}
		out[key] = body
	}
	return out, nil
}

// ChildElements returns node's immediate element children, skipping
// text/comment nodes.
func ChildElements(node *html.Node) []*html.Node {
	var out []*html.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// InnerText concatenates every text node under node, depth-first.
func InnerText(node *html.Node) string {
	if node == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return b.String()
}

// GetText safely extracts collapsed inner text from node. If node is
// nil it returns MissingElementError; if expectedTag is non-empty and
// node's tag does not match, UnexpectedElementTagError; if
// allowChildren is false and node has child elements,
// NodeHasChildrenError.
func GetText(node *html.Node, expectedTag string, allowChildren bool) (string, error) {
	if node == nil {
		return "", MissingElementError{}
	}
	if expectedTag != "" && node.Data != expectedTag {
		return "", &UnexpectedElementTagError{Expected: expectedTag, Actual: node.Data}
	}
	if !allowChildren && len(ChildElements(node)) > 0 {
		return "", NodeHasChildrenError{}
	}
	return textnorm.CollapseWhitespace(InnerText(node)), nil
}

// ParseText composes GetText with parser: string -> (T, ok). A false
// ok from parser is reported as UnparseableTextError.
func ParseText[T any](node *html.Node, expectedTag string, allowChildren bool, target string, parser func(string) (T, bool)) (T, error) {
	var zero T
	text, err := GetText(node, expectedTag, allowChildren)
	if err != nil {
		return zero, err
	}
	v, ok := parser(text)
	if !ok {
		return zero, &UnparseableTextError{Target: target, Text: text}
	}
	return v, nil
}

// NextElementSibling returns node's next sibling that is an element,
// skipping whitespace-only text nodes such as line breaks — the common
// "first sibling is just a line break" idiom in the reference catalog
// pages.
func NextElementSibling(node *html.Node) *html.Node {
	for c := node.NextSibling; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// FindDescendant returns the first descendant of node for which match
// returns true, in document order, or nil if none match.
func FindDescendant(node *html.Node, match func(*html.Node) bool) *html.Node {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if match(c) {
				return c
			}
			if found := FindDescendant(c, match); found != nil {
				return found
			}
		}
	}
	return nil
}

// FindAllDescendants returns every descendant of node for which match
// returns true, in document order.
func FindAllDescendants(node *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				if match(c) {
					out = append(out, c)
				}
				walk(c)
			}
		}
	}
	walk(node)
	return out
}

// FindTagWithText returns the first element in container's subtree,
// container itself included, that has a direct text-node child
// matching re, in document order — the Go
// analogue of BeautifulSoup's find(True, string=pattern), used to
// locate a labelled value by the text of its label rather than by any
// class or id.
func FindTagWithText(container *html.Node, re *regexp.Regexp) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode && re.MatchString(c.Data) {
					found = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			if found != nil {
				return
			}
		}
	}
	walk(container)
	return found
}

// HasClassMatch reports whether node has a class token matching re.
func HasClassMatch(node *html.Node, re *regexp.Regexp) bool {
	class, ok := Attr(node, "class")
	if !ok {
		return false
	}
	for _, tok := range strings.Fields(class) {
		if re.MatchString(tok) {
			return true
		}
	}
	return false
}

// HasClass reports whether node's class attribute contains class as a
// whitespace-separated token.
func HasClass(node *html.Node, class string) bool {
	for _, attr := range node.Attr {
		if attr.Key == "class" {
			for _, tok := range strings.Fields(attr.Val) {
				if tok == class {
					return true
				}
			}
		}
	}
	return false
}

// Attr returns the value of node's attribute named key, and whether it
// was present.
func Attr(node *html.Node, key string) (string, bool) {
	for _, attr := range node.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
