package corpusindex

import (
	"context"
	"sort"
	"testing"

	"github.com/marmitar/MC426-backend/internal/schema"
)

type record struct {
	Code string
	Name string
}

func testSchema() schema.Schema[record] {
	return schema.Schema[record]{
		Properties: []schema.Property[record]{
			{Name: "code", Get: func(r record) string { return r.Code }, Weight: 2, Identifier: true},
			{Name: "name", Get: func(r record) string { return r.Name }, Weight: 3},
		},
		Scaling:      1.0,
		ContentLabel: "record",
	}
}

func testRecords() []record {
	return []record{
		{Code: "MC102", Name: "Algoritmos e Programação de Computadores"},
		{Code: "MC202", Name: "Estruturas de Dados"},
		{Code: "F 128", Name: "Física Geral I"},
	}
}

func TestBuildAndSearchExactMatchSortsFirst(t *testing.T) {
	idx, err := Build("record", testRecords(), testSchema())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}

	results := idx.Search(context.Background(), "mc102", 0.99, false)
	if len(results) == 0 {
		t.Fatal("Search() = no results")
	}
	if results[0].Fields["code"] != "mc102" {
		t.Errorf("top result code = %q, want %q", results[0].Fields["code"], "mc102")
	}
}

func TestSearchResultsAreSortedAscendingByScore(t *testing.T) {
	idx, err := Build("record", testRecords(), testSchema())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	results := idx.Search(context.Background(), "estruturas", 0.99, false)
	if !sort.SliceIsSorted(results, func(i, j int) bool { return results[i].Score < results[j].Score }) {
		t.Error("Search() results not sorted ascending by score")
	}
}

func TestSearchRespectsCutoff(t *testing.T) {
	idx, err := Build("record", testRecords(), testSchema())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	results := idx.Search(context.Background(), "zzzzzzzzzzzzzzzz", 0.3, false)
	for _, r := range results {
		if r.Score >= 0.3 {
			t.Errorf("Search() returned a result with score %v >= cutoff 0.3", r.Score)
		}
	}
}

func TestSearchHidesHiddenFieldsUnlessRequested(t *testing.T) {
	s := testSchema()
	s.Properties = append(s.Properties, schema.Property[record]{
		Name:   "secret",
		Get:    func(r record) string { return "x-" + r.Code },
		Weight: 1,
		Hidden: true,
	})
	idx, err := Build("record", testRecords(), s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	visible := idx.Search(context.Background(), "mc102", 0.99, false)
	for _, r := range visible {
		if _, ok := r.Fields["secret"]; ok {
			t.Error("Search(includeHidden=false) exposed a hidden field")
		}
	}

	withHidden := idx.Search(context.Background(), "mc102", 0.99, true)
	if _, ok := withHidden[0].Fields["secret"]; !ok {
		t.Error("Search(includeHidden=true) missing hidden field")
	}
}

func TestBuildPropagatesSchemaError(t *testing.T) {
	_, err := Build("record", testRecords(), schema.Schema[record]{})
	if err == nil {
		t.Fatal("Build() = nil error, want schema validation error")
	}
}

func TestScoreRangeInvariant(t *testing.T) {
	idx, err := Build("record", testRecords(), testSchema())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, q := range []string{"mc102", "zzzz", "", "estruturas de dados"} {
		results := idx.Search(context.Background(), q, 1.01, false)
		for _, r := range results {
			if r.Score < 0 || r.Score > 1 {
				t.Errorf("Score(%q) = %v, out of [0,1]", q, r.Score)
			}
		}
	}
}
