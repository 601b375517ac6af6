package course

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/marmitar/MC426-backend/internal/htmlparse"
	"github.com/marmitar/MC426-backend/internal/scrape"
	"github.com/marmitar/MC426-backend/internal/textnorm"
)

const coursesBaseURL = "https://www.dac.unicamp.br/sistemas/catalogos/grad/catalogo2021/"

var (
	courseLabelClassRe = regexp.MustCompile(`(?i)rotulo-curso`)
	nonVariantNameRe   = regexp.MustCompile(`(?i)codigo`)
	periodTitleRe      = regexp.MustCompile(`(?i)semestre`)
	disciplineHrefRe   = regexp.MustCompile(`(?i)disc`)
	electiveRe         = regexp.MustCompile(`(?i)eletiv`)
)

// Scraper implements scrape.Plugin[[]Course], grounded on courses.py's
// build_all_courses/has_variants/add_course_tree/add_course_variants.
type Scraper struct{}

func (Scraper) CacheKey() string { return "courses" }

// Scrape fetches the catalog's course index, then every course's
// suggestion-tree page, filling in either a flat semester tree or a
// set of named variants.
func (Scraper) Scrape(ctx context.Context, env *scrape.Env) ([]Course, error) {
	courses, err := fetchCourseList(ctx, env)
	if err != nil {
		return nil, err
	}

	errs := make([]error, len(courses))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(courses) {
		workers = len(courses)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = fillCourseTree(ctx, env, &courses[i])
			}
		}()
	}
	for i := range courses {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("course: scraping %q: %w", courses[i].Code, err)
		}
	}
	return courses, nil
}

// fetchCourseList loads the catalog's index page and parses every
// course label into its code and name, grounded on build_all_courses.
func fetchCourseList(ctx context.Context, env *scrape.Env) ([]Course, error) {
	root, err := env.FetchHTML(ctx, coursesBaseURL+"index.html")
	if err != nil {
		return nil, err
	}

	tags := htmlparse.FindAllDescendants(root, func(n *html.Node) bool {
		return htmlparse.HasClassMatch(n, courseLabelClassRe)
	})

	var courses []Course
	for _, tag := range tags {
		code, name, ok := splitCodeName(htmlparse.InnerText(tag))
		if !ok {
			continue
		}
		courses = append(courses, Course{Code: code, Name: name})
	}
	return courses, nil
}

func splitCodeName(text string) (code, name string, ok bool) {
	text = textnorm.CollapseWhitespace(text)
	before, after, found := strings.Cut(text, " - ")
	if !found {
		return "", "", false
	}
	return before, after, true
}

func courseURL(code string) string {
	return coursesBaseURL + "cursos/" + code + "g/sugestao.html"
}

// fillCourseTree fetches a single course's suggestion-tree page and
// fills in either its flat tree or its variant list, grounded on
// get_all_courses's per-course loop.
func fillCourseTree(ctx context.Context, env *scrape.Env, c *Course) error {
	root, err := env.FetchHTML(ctx, courseURL(c.Code))
	if err != nil {
		return err
	}

	if hasVariants(root) {
		c.Variant = parseVariants(root)
	} else {
		c.Tree, c.Electives = buildTree(root)
	}
	return nil
}

// hasVariants reports whether the page has no anchor named after
// "codigo" — the reference catalog marks a no-variants course page
// with an `<a name="...codigo...">` anchor, grounded on has_variants.
func hasVariants(root *html.Node) bool {
	found := htmlparse.FindDescendant(root, func(n *html.Node) bool {
		if n.Data != "a" {
			return false
		}
		name, ok := htmlparse.Attr(n, "name")
		return ok && nonVariantNameRe.MatchString(name)
	})
	return found == nil
}

// parseVariants collects every non-"Observação" <h2> heading as a
// named variant, building its tree from the heading's enclosing
// section, grounded on add_course_variants.
func parseVariants(root *html.Node) []Variant {
	headers := htmlparse.FindAllDescendants(root, func(n *html.Node) bool {
		return n.Data == "h2"
	})

	var variants []Variant
	for _, h2 := range headers {
		name := textnorm.CollapseWhitespace(htmlparse.InnerText(h2))
		if strings.Contains(strings.ToLower(name), "observa") {
			continue
		}
		if h2.Parent == nil {
			continue
		}
		tree, electives := buildTree(h2.Parent)
		variants = append(variants, Variant{Name: name, Tree: tree, Electives: electives})
	}
	return variants
}

// buildTree collects every "<n>º semestre"-labelled section under
// container into a discipline-code tree and a parallel elective-count
// slice, grounded on build_tree/build_period_disciplines.
func buildTree(container *html.Node) ([][]string, []int) {
	headers := htmlparse.FindAllDescendants(container, func(n *html.Node) bool {
		return n.Data == "h3" && periodTitleRe.MatchString(htmlparse.InnerText(n))
	})

	tree := make([][]string, 0, len(headers))
	electives := make([]int, 0, len(headers))
	for _, h3 := range headers {
		content := htmlparse.NextElementSibling(h3)
		if content == nil {
			tree = append(tree, nil)
			electives = append(electives, 0)
			continue
		}
		tree = append(tree, periodDisciplines(content))
		electives = append(electives, countElectives(content))
	}
	return tree, electives
}

// periodDisciplines extracts every discipline code referenced by a
// discipline-page link inside content, grounded on
// build_period_disciplines/get_discipline_code.
func periodDisciplines(content *html.Node) []string {
	anchors := htmlparse.FindAllDescendants(content, func(n *html.Node) bool {
		href, ok := htmlparse.Attr(n, "href")
		return ok && disciplineHrefRe.MatchString(href)
	})

	codes := make([]string, 0, len(anchors))
	for _, a := range anchors {
		if code, ok := disciplineCodeFromText(htmlparse.InnerText(a)); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

// disciplineCodeFromText splits a discipline link's label into
// whitespace-separated tokens and returns the first, rejoining a
// second token when the first is a single character (the "F 000"
// style codes with an embedded space), grounded on get_discipline_code.
func disciplineCodeFromText(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", false
	}
	code := fields[0]
	if len(code) == 1 && len(fields) > 1 {
		code = code + " " + fields[1]
	}
	return code, true
}

// countElectives counts occurrences of an elective-slot marker inside
// a semester's content block. The reference scraper drops these
// placeholders entirely (it only follows discipline links); this
// count is this implementation's addition to surface them, per
// DESIGN.md.
func countElectives(content *html.Node) int {
	return len(electiveRe.FindAllStringIndex(htmlparse.InnerText(content), -1))
}
