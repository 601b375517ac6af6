// Package registry implements the cache registry (schema.md's C6): a
// thread-safe map from record-type key to an optional typed corpus
// index, with one lock per key so builds and queries on different
// types never contend.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/marmitar/MC426-backend/internal/corpusindex"
	"github.com/marmitar/MC426-backend/internal/schema"
)

// slot holds at most one built index for a record type, guarded by its
// own lock so overwriting one type never blocks a query against
// another.
type slot struct {
	mu    sync.RWMutex
	index *corpusindex.Index
}

// Registry maps record-type keys to slots. The zero value is ready to
// use.
type Registry struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// New returns an empty, ready-to-use Registry.
func New() *Registry {
	return &Registry{slots: make(map[string]*slot)}
}

func (r *Registry) slotFor(key string) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots == nil {
		r.slots = make(map[string]*slot)
	}
	s, ok := r.slots[key]
	if !ok {
		s = &slot{}
		r.slots[key] = s
	}
	return s
}

// Overwrite builds a new index from values under schema s and
// atomically replaces key's slot. On schema error it logs at info
// level and leaves any previous slot untouched, per §4.5.
func Overwrite[T any](r *Registry, key, typeName string, values []T, s schema.Schema[T]) error {
	idx, err := corpusindex.Build(typeName, values, s)
	if err != nil {
		slog.Info("schema build failed, keeping previous index", "type", typeName, "key", key, "error", err)
		return err
	}
	sl := r.slotFor(key)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.index = &idx
	return nil
}

// Search forwards to key's index. If the slot is empty (never built,
// or build failed) it returns an empty slice rather than an error.
func Search(r *Registry, key string, ctx context.Context, query string, cutoff float64, includeHidden bool) []corpusindex.Result {
	sl := r.slotFor(key)
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	if sl.index == nil {
		return nil
	}
	return sl.index.Search(ctx, query, cutoff, includeHidden)
}

// Len reports the number of entries in key's index, or 0 if unbuilt.
// Used by health checks.
func (r *Registry) Len(key string) int {
	sl := r.slotFor(key)
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	if sl.index == nil {
		return 0
	}
	return sl.index.Len()
}
