// Package corpusindex implements the typed corpus index (schema.md's
// C5): a set of per-record scorers for a single record type, built in
// parallel and queried with a score cutoff.
package corpusindex

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/marmitar/MC426-backend/internal/schema"
	"github.com/marmitar/MC426-backend/internal/scoring"
	"github.com/marmitar/MC426-backend/internal/textnorm"
)

// Result is one match returned by Search.
type Result struct {
	ContentLabel string
	Score        float64
	Fields       map[string]string
}

// Index is an immutable, per-type collection of scored entries. A new
// Index is built by Build and never mutated in place; the cache
// registry replaces the whole value on rebuild.
type Index struct {
	entries      []scoring.Entry
	contentLabel string
}

// Build constructs an Index from records in parallel: one goroutine
// pool builds one scoring.Entry per record (embarrassingly parallel),
// and the resulting entries are collected regardless of order, since
// Index's ordering has no effect on Search's output. Build logs the
// elapsed wall-clock time, matching the "Building search cache for
// <type>" convention.
func Build[T any](typeName string, records []T, s schema.Schema[T]) (Index, error) {
	slog.Info("building search cache", "type", typeName, "records", len(records))
	start := time.Now()

	entries := make([]scoring.Entry, len(records))
	errs := make([]error, len(records))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(records) {
		workers = len(records)
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
				entry, err := scoring.Build(records[i], s)
				entries[i] = entry
				errs[i] = err
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return Index{}, err
		}
	}

	slog.Info("built search cache", "type", typeName, "records", len(records), "elapsed", time.Since(start))
	return Index{entries: entries, contentLabel: s.Label(typeName)}, nil
}

// Search normalizes rawQuery, scores every entry, discards entries at
// or above cutoff, and returns the survivors sorted ascending by score
// (ties broken by content label, then by every returned field's
// name and value in sorted-name order, for a deterministic total
// order). If ctx is done before every entry is scored, Search stops
// and returns nil.
func (idx Index) Search(ctx context.Context, rawQuery string, cutoff float64, includeHidden bool) []Result {
	query := textnorm.Pipeline(rawQuery)

	results := make([]Result, 0, len(idx.entries))
	for _, e := range idx.entries {
		if ctx.Err() != nil {
			return nil
		}
		s := e.Score(query)
		if s >= cutoff {
			continue
		}
		fields := e.VisibleFields()
		if includeHidden {
			fields = e.AllFields()
		}
		results = append(results, Result{
			ContentLabel: idx.contentLabel,
			Score:        s,
			Fields:       fields,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		if results[i].ContentLabel != results[j].ContentLabel {
			return results[i].ContentLabel < results[j].ContentLabel
		}
		return tiebreakKey(results[i].Fields) < tiebreakKey(results[j].Fields)
	})
	return results
}

// tiebreakKey concatenates a result's field values in a deterministic
// (sorted-key) order, used only to make Search's sort total.
func tiebreakKey(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out string
	for _, k := range keys {
		out += k + "=" + fields[k] + ";"
	}
	return out
}

// Len reports the number of entries in the index.
func (idx Index) Len() int {
	return len(idx.entries)
}
