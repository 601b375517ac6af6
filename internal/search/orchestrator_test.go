package search

import (
	"context"
	"sort"
	"testing"

	"github.com/marmitar/MC426-backend/internal/corpusindex"
)

func fixedCorpus(results []corpusindex.Result) Corpus {
	return Corpus{
		Search: func(context.Context, string) []corpusindex.Result {
			sorted := append([]corpusindex.Result(nil), results...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })
			return sorted
		},
	}
}

func TestSearchMergesAcrossCorporaSortedByScore(t *testing.T) {
	o := New()
	o.Register(fixedCorpus([]corpusindex.Result{
		{ContentLabel: "a", Score: 0.5},
		{ContentLabel: "a", Score: 0.1},
	}))
	o.Register(fixedCorpus([]corpusindex.Result{
		{ContentLabel: "b", Score: 0.3},
		{ContentLabel: "b", Score: 0.05},
	}))

	got := o.Search(context.Background(), "query", 10)
	if len(got) != 4 {
		t.Fatalf("Search() = %d results, want 4", len(got))
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Score < got[j].Score }) {
		t.Error("Search() results not sorted ascending by score")
	}
	if got[0].Score != 0.05 {
		t.Errorf("Search()[0].Score = %v, want 0.05", got[0].Score)
	}
}

func TestSearchCapsToLimit(t *testing.T) {
	o := New()
	var results []corpusindex.Result
	for i := 0; i < 10; i++ {
		results = append(results, corpusindex.Result{ContentLabel: "a", Score: float64(i) / 10})
	}
	o.Register(fixedCorpus(results))

	got := o.Search(context.Background(), "query", 3)
	if len(got) != 3 {
		t.Fatalf("Search() = %d results, want 3", len(got))
	}
	for i, r := range got {
		if r.Score != float64(i)/10 {
			t.Errorf("Search()[%d].Score = %v, want %v", i, r.Score, float64(i)/10)
		}
	}
}

func TestSearchWithNoCorporaReturnsEmpty(t *testing.T) {
	o := New()
	got := o.Search(context.Background(), "query", 10)
	if len(got) != 0 {
		t.Errorf("Search() with no registered corpora = %d results, want 0", len(got))
	}
}
