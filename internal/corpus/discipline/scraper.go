package discipline

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/marmitar/MC426-backend/internal/htmlparse"
	"github.com/marmitar/MC426-backend/internal/scrape"
	"github.com/marmitar/MC426-backend/internal/textnorm"
)

const catalogBaseURL = "https://www.dac.unicamp.br/sistemas/catalogos/grad/catalogo2021/disciplinas/"

var (
	initialsClassRe = regexp.MustCompile(`(?i)disc`)
	codeNameIDRe    = regexp.MustCompile(`(?i)disc`)
	creditsLabelRe  = regexp.MustCompile(`(?i)cr[eé]ditos`)
	reqsLabelRe     = regexp.MustCompile(`(?i)requisitos`)
	syllabusLabelRe = regexp.MustCompile(`(?i)ementa`)
)

// Scraper implements scrape.Plugin[[]Discipline], grounded on
// disciplines.py's get_all_initials/get_disciplines/parse_disciplines.
type Scraper struct{}

func (Scraper) CacheKey() string { return "disciplines" }

// Scrape fetches the catalog's per-initials index, then every
// initials page, parsing each discipline row; the requirement
// cross-reference pass (reqBy, special) runs once over the full
// combined set, mirroring update_initials_requirements.
func (Scraper) Scrape(ctx context.Context, env *scrape.Env) ([]Discipline, error) {
	initials, err := fetchInitials(ctx, env)
	if err != nil {
		return nil, err
	}

	disciplines, err := scrapeInitials(ctx, env, initials)
	if err != nil {
		return nil, err
	}

	resolveRequirements(disciplines)
	return disciplines, nil
}

// fetchInitials loads the catalog's index page and returns the list of
// two-letter initials it advertises, grounded on get_all_initials.
func fetchInitials(ctx context.Context, env *scrape.Env) ([]string, error) {
	root, err := env.FetchHTML(ctx, catalogBaseURL+"index.html")
	if err != nil {
		return nil, err
	}

	container := htmlparse.FindDescendant(root, func(n *html.Node) bool {
		return htmlparse.HasClassMatch(n, initialsClassRe)
	})
	if container == nil {
		return nil, fmt.Errorf("discipline: initials container not found on index page")
	}

	var initials []string
	for _, div := range htmlparse.ChildElements(container) {
		if div.Data != "div" {
			continue
		}
		initials = append(initials, strings.ToUpper(textnorm.CollapseWhitespace(htmlparse.InnerText(div))))
	}
	return initials, nil
}

// scrapeInitials fetches and parses every initials page concurrently,
// bounded by GOMAXPROCS workers — the Go analogue of
// get_all_disciplines_data's multiprocessing.Pool(12).
func scrapeInitials(ctx context.Context, env *scrape.Env, initials []string) ([]Discipline, error) {
	results := make([][]Discipline, len(initials))
	errs := make([]error, len(initials))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(initials) {
		workers = len(initials)
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
				results[i], errs[i] = scrapeOneInitials(ctx, env, initials[i])
			}
		}()
	}
	for i := range initials {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var all []Discipline
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("discipline: scraping initials %q: %w", initials[i], err)
		}
		all = append(all, results[i]...)
	}
	return all, nil
}

func disciplinesPageURL(initials string) string {
	slug := strings.ReplaceAll(strings.ToLower(initials), " ", "_")
	return catalogBaseURL + slug + ".html"
}

// scrapeOneInitials fetches a single initials page and parses every
// discipline row on it, grounded on get_disciplines_data.
func scrapeOneInitials(ctx context.Context, env *scrape.Env, initials string) ([]Discipline, error) {
	root, err := env.FetchHTML(ctx, disciplinesPageURL(initials))
	if err != nil {
		return nil, err
	}

	rows := htmlparse.FindAllDescendants(root, func(n *html.Node) bool {
		return htmlparse.HasClass(n, "row")
	})

	var out []Discipline
	for _, row := range rows {
		d, ok := parseDisciplineRow(row)
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// parseDisciplineRow extracts one Discipline from a "row" tag,
// grounded on parse_disciplines. Any missing required field skips the
// row, matching the original's except AttributeError: continue.
func parseDisciplineRow(row *html.Node) (Discipline, bool) {
	codeNameTag := htmlparse.FindDescendant(row, func(n *html.Node) bool {
		id, ok := htmlparse.Attr(n, "id")
		return ok && codeNameIDRe.MatchString(id)
	})
	if codeNameTag == nil {
		return Discipline{}, false
	}
	code, name, ok := splitCodeName(htmlparse.InnerText(codeNameTag))
	if !ok {
		return Discipline{}, false
	}

	creditsTag := htmlparse.FindTagWithText(row, creditsLabelRe)
	if creditsTag == nil || creditsTag.NextSibling == nil {
		return Discipline{}, false
	}
	credits, err := strconv.Atoi(strings.TrimSpace(creditsTag.NextSibling.Data))
	if err != nil {
		return Discipline{}, false
	}

	reqsTag := htmlparse.FindTagWithText(row, reqsLabelRe)
	if reqsTag == nil {
		return Discipline{}, false
	}
	reqs, err := htmlparse.ParseText(htmlparse.NextElementSibling(reqsTag), "", true, "requirement tree", func(s string) ([][]Requirement, bool) {
		parsed := parseRequirements(s)
		return parsed, parsed != nil
	})
	if err != nil {
		return Discipline{}, false
	}

	syllabusTag := htmlparse.FindTagWithText(row, syllabusLabelRe)
	if syllabusTag == nil {
		return Discipline{}, false
	}
	syllabus, err := htmlparse.GetText(htmlparse.NextElementSibling(syllabusTag), "", true)
	if err != nil {
		return Discipline{}, false
	}

	return Discipline{
		Code:     code,
		Name:     name,
		Credits:  credits,
		Reqs:     reqs,
		Syllabus: syllabus,
	}, true
}

// splitCodeName splits "MC102 - Algoritmos e Programação de Computadores"
// into its code and name at the first " - ".
func splitCodeName(text string) (code, name string, ok bool) {
	text = textnorm.CollapseWhitespace(text)
	before, after, found := strings.Cut(text, " - ")
	if !found {
		return "", "", false
	}
	return before, after, true
}

func isDisciplineCode(code string) bool {
	return len(code) == 5
}

// createRequirement builds a Requirement from one raw requirement
// token, grounded on create_requirement. The second return value is
// false when the token resolves to neither a plain nor a partial
// discipline code.
func createRequirement(raw string) (Requirement, bool) {
	raw = strings.TrimSpace(raw)
	if isDisciplineCode(raw) {
		return Requirement{Code: raw}, true
	}
	if strings.HasPrefix(raw, "*") && isDisciplineCode(raw[1:]) {
		return Requirement{Code: raw[1:], Partial: true}, true
	}
	return Requirement{}, false
}

// parseRequirements parses a requirement-tree string of the form
// "MC102+MC202 ou *MC322" into its OR-of-AND-groups tree, grounded on
// parse_requirements. It returns nil if any token fails to parse.
func parseRequirements(raw string) [][]Requirement {
	groups := strings.Split(raw, " ou ")
	reqs := make([][]Requirement, 0, len(groups))
	for _, group := range groups {
		tokens := strings.Split(group, "+")
		groupReqs := make([]Requirement, 0, len(tokens))
		for _, tok := range tokens {
			req, ok := createRequirement(tok)
			if !ok {
				return nil
			}
			groupReqs = append(groupReqs, req)
		}
		reqs = append(reqs, groupReqs)
	}
	return reqs
}

// resolveRequirements runs the cross-reference pass over the full
// scraped set: every requirement that resolves to a known discipline
// code adds this discipline to that code's reqBy; every requirement
// that does not resolve is flagged special. Grounded on
// update_initials_requirements/add_required_by.
func resolveRequirements(disciplines []Discipline) {
	byCode := make(map[string]*Discipline, len(disciplines))
	for i := range disciplines {
		byCode[disciplines[i].Code] = &disciplines[i]
	}

	for i := range disciplines {
		d := &disciplines[i]
		for b, block := range d.Reqs {
			for r, req := range block {
				target, found := byCode[req.Code]
				if found {
					target.ReqBy = target.ReqBy.Add(d.Code)
				} else {
					d.Reqs[b][r].Special = true
				}
			}
		}
	}
}
