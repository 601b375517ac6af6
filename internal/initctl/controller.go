package initctl

// Controller wraps a fully-scraped corpus of type T with an
// identifier-keyed lookup, the value produced by a successful
// initialization task and handed back by Instance.
type Controller[T any] struct {
	records []T
	byKey   map[string]T
}

// NewController builds a Controller over records, indexed by keyFn.
func NewController[T any](records []T, keyFn func(T) string) Controller[T] {
	byKey := make(map[string]T, len(records))
	for _, r := range records {
		byKey[keyFn(r)] = r
	}
	return Controller[T]{records: records, byKey: byKey}
}

// Get looks up a record by its exact (case-sensitive) key.
func (c Controller[T]) Get(key string) (T, bool) {
	v, ok := c.byKey[key]
	return v, ok
}

// All returns every record in the corpus. Callers must not mutate it.
func (c Controller[T]) All() []T {
	return c.records
}

// Len reports the number of records in the corpus.
func (c Controller[T]) Len() int {
	return len(c.records)
}
