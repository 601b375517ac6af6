package htmlparse

import (
	"regexp"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseFragment(t *testing.T, doc string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}
	return root
}

func TestGetTextCollapsesWhitespace(t *testing.T) {
	root := parseFragment(t, `<p id="target">  hello \n  world  </p>`)
	node := FindDescendant(root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == "target"
	})

	text, err := GetText(node, "p", true)
	if err != nil {
		t.Fatalf("GetText: %v", err)
	}
	if strings.Contains(text, "  ") {
		t.Errorf("GetText() = %q, want collapsed whitespace", text)
	}
}

func TestGetTextMissingElement(t *testing.T) {
	if _, err := GetText(nil, "", false); err == nil {
		t.Fatal("GetText(nil) = nil error, want MissingElementError")
	} else if _, ok := err.(MissingElementError); !ok {
		t.Errorf("GetText(nil) error = %T, want MissingElementError", err)
	}
}

func TestGetTextUnexpectedTag(t *testing.T) {
	root := parseFragment(t, `<span id="s">x</span>`)
	node := FindDescendant(root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == "s"
	})
	_, err := GetText(node, "p", true)
	if _, ok := err.(*UnexpectedElementTagError); !ok {
		t.Errorf("GetText() error = %T, want *UnexpectedElementTagError", err)
	}
}

func TestGetTextNodeHasChildren(t *testing.T) {
	root := parseFragment(t, `<div id="d"><span>nested</span></div>`)
	node := FindDescendant(root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == "d"
	})
	_, err := GetText(node, "", false)
	if _, ok := err.(NodeHasChildrenError); !ok {
		t.Errorf("GetText() error = %T, want NodeHasChildrenError", err)
	}
}

func TestParseTextUnparseable(t *testing.T) {
	root := parseFragment(t, `<p id="n">not-a-number</p>`)
	node := FindDescendant(root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == "n"
	})

	_, err := ParseText(node, "p", false, "integer", func(s string) (int, bool) {
		return 0, false
	})
	if _, ok := err.(*UnparseableTextError); !ok {
		t.Errorf("ParseText() error = %T, want *UnparseableTextError", err)
	}
}

func TestParseSectionsPairsHeaderWithBody(t *testing.T) {
	root := parseFragment(t, `
		<div id="container">
			<h3>1o Semestre</h3>
			<p>body one</p>
			<h3>2o Semestre</h3>
			<p>body two</p>
		</div>`)
	container := FindDescendant(root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == "container"
	})

	sections, err := ParseSections(container, "h3", NextElementSibling)
	if err != nil {
		t.Fatalf("ParseSections: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("ParseSections() returned %d sections, want 2", len(sections))
	}
	body, ok := sections["1o Semestre"]
	if !ok {
		t.Fatal(`ParseSections() missing key "1o Semestre"`)
	}
	if got := InnerText(body); got != "body one" {
		t.Errorf("section body = %q, want %q", got, "body one")
	}
}

func TestParseSectionsDuplicateHeaderFails(t *testing.T) {
	root := parseFragment(t, `
		<div id="container">
			<h3>dup</h3>
			<p>a</p>
			<h3>dup</h3>
			<p>b</p>
		</div>`)
	container := FindDescendant(root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == "container"
	})

	_, err := ParseSections(container, "h3", NextElementSibling)
	if _, ok := err.(*DuplicateSectionError); !ok {
		t.Errorf("ParseSections() error = %T, want *DuplicateSectionError", err)
	}
}

func TestParseSectionsSkipsMissingBody(t *testing.T) {
	root := parseFragment(t, `<div id="container"><h3>lonely</h3></div>`)
	container := FindDescendant(root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == "container"
	})

	sections, err := ParseSections(container, "h3", NextElementSibling)
	if err != nil {
		t.Fatalf("ParseSections: %v", err)
	}
	if len(sections) != 0 {
		t.Errorf("ParseSections() = %d sections, want 0 for a header with no body", len(sections))
	}
}

func TestHasClassMatch(t *testing.T) {
	root := parseFragment(t, `<div id="d" class="rotulo-curso foo">x</div>`)
	node := FindDescendant(root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == "d"
	})
	if !HasClassMatch(node, regexp.MustCompile(`(?i)rotulo`)) {
		t.Error("HasClassMatch() = false, want true")
	}
	if HasClassMatch(node, regexp.MustCompile(`(?i)nomatch`)) {
		t.Error("HasClassMatch() = true, want false")
	}
}

func TestFindTagWithText(t *testing.T) {
	root := parseFragment(t, `<div id="d"><b>Creditos:</b> 6</div>`)
	node := FindDescendant(root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == "d"
	})
	found := FindTagWithText(node, regexp.MustCompile(`(?i)cr[eé]ditos`))
	if found == nil {
		t.Fatal("FindTagWithText() = nil, want match")
	}
	if found.Data != "b" {
		t.Errorf("FindTagWithText() tag = %q, want %q", found.Data, "b")
	}
}
