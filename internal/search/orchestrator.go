// Package search implements the search orchestrator (schema.md's C9):
// per request, fan out to every registered corpus in parallel, merge
// and cap by score, and produce the wire envelope. The merge-into-a-
// bounded-heap technique is grounded on the teacher's shard-result
// merger (internal/searcher/merger in the teacher repo), adapted from
// "keep the top-N highest BM25 scores" to "keep the bottom-N lowest
// fuzzy distances."
package search

import (
	"container/heap"
	"context"
	"sync"

	"github.com/marmitar/MC426-backend/internal/corpusindex"
)

// Corpus is one registered record type's search entry point, as seen
// by the orchestrator: an opaque closure over a registry.Registry key
// and its cutoff/visibility configuration.
type Corpus struct {
	Search func(ctx context.Context, query string) []corpusindex.Result
}

// Orchestrator fans a query out across every registered corpus.
type Orchestrator struct {
	mu      sync.RWMutex
	corpora []Corpus
}

// New returns an Orchestrator with no registered corpora.
func New() *Orchestrator {
	return &Orchestrator{}
}

// Register adds a corpus to the fan-out set. Registration is expected
// to happen once at startup, before any Search call.
func (o *Orchestrator) Register(c Corpus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.corpora = append(o.corpora, c)
}

// Search spawns one subtask per registered corpus, each computing its
// own top-limit matches (each corpus's Search already returns results
// pre-sorted ascending by score), and merges them into a single
// ascending-by-score buffer capped to limit. If ctx is cancelled,
// outstanding subtasks are abandoned and their partial results
// dropped; already-collected results are still merged and returned.
func (o *Orchestrator) Search(ctx context.Context, query string, limit int) []corpusindex.Result {
	o.mu.RLock()
	corpora := make([]Corpus, len(o.corpora))
	copy(corpora, o.corpora)
	o.mu.RUnlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultsCh := make(chan []corpusindex.Result, len(corpora))
	var wg sync.WaitGroup
	for _, c := range corpora {
		wg.Add(1)
		go func(c Corpus) {
			defer wg.Done()
			res := c.Search(ctx, query)
			if len(res) > limit {
				res = res[:limit]
			}
			select {
			case resultsCh <- res:
			case <-ctx.Done():
			}
		}(c)
	}
	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	h := &resultHeap{}
	heap.Init(h)
	for res := range resultsCh {
		for _, r := range res {
			heap.Push(h, r)
			if h.Len() > limit {
				heap.Pop(h)
			}
		}
	}

	out := make([]corpusindex.Result, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(corpusindex.Result)
	}
	return out
}

// resultHeap is a max-heap on Score, so that once it exceeds limit
// entries the *worst* (highest-distance) match is evicted, leaving the
// limit *lowest*-distance matches — the min-N analogue of the
// teacher's max-N shard-result heap.
type resultHeap []corpusindex.Result

func (h resultHeap) Len() int { return len(h) }

func (h resultHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score > h[j].Score
	}
	return h[i].ContentLabel > h[j].ContentLabel
}

func (h resultHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x any) {
	*h = append(*h, x.(corpusindex.Result))
}

func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
