// Package initctl implements the initialization orchestrator
// (schema.md's C8): an asynchronous initialization task per registered
// record type, a pending-task registry, and the synchronous "wait for
// all initialization" primitive used at process startup.
//
// A per-key task is created at most once, guarded by Orchestrator's
// mutex+map (getOrCreate), and every subsequent caller — whether a
// second eager Register call for the same key or a request-time
// Instance lookup — awaits (and memoizes) that same task's outcome
// instead of re-running it. This is deliberately a plain mutex+map
// gate rather than golang.org/x/sync/singleflight: the teacher's
// search cache (internal/searcher/cache/cache.go) uses singleflight
// because every request calls GetOrCompute directly, so concurrent
// callers genuinely race into group.Do and need in-flight
// deduplication. Here only Register ever runs the initialization
// function, and it runs once per process at startup; Instance callers
// never invoke fn themselves, they only await the channel a prior
// Register close. Wrapping that single call site in singleflight.Do
// would dedupe nothing, since there is never a second concurrent
// caller to dedupe against — so the dependency was dropped in favor of
// the mutex+map gate that already provides the real guarantee.
package initctl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/marmitar/MC426-backend/pkg/apperr"
)

// task is the terminal-state record for one registered type: it
// reaches exactly one of "fulfilled with a value" or "fulfilled with
// an error" (logged once, at the point of failure) and is never
// retried after that.
type task struct {
	done  chan struct{}
	value any
	err   error
}

// Orchestrator drives one initialization task per record-type key. The
// zero value is not usable; construct with New.
type Orchestrator struct {
	mu    sync.Mutex
	tasks map[string]*task
	order []string
}

// New returns a ready-to-use Orchestrator.
func New() *Orchestrator {
	return &Orchestrator{tasks: make(map[string]*task)}
}

// Register creates (or, if already created, returns the existing)
// initialization task for key, launching fn in the background. Task
// creation is idempotent: concurrent Register/Instance calls for the
// first occurrence of key observe and await the exact same task.
func Register[T any](o *Orchestrator, key string, fn func(context.Context) (T, error)) {
	t, created := o.getOrCreate(key)
	if !created {
		return
	}
	go func() {
		defer close(t.done)
		v, err := fn(context.Background())
		if err != nil {
			slog.Error("initialization failed", "service", key, "kind", errorKind(err))
			t.err = err
			return
		}
		t.value = v
	}()
}

func (o *Orchestrator) getOrCreate(key string) (*task, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if t, ok := o.tasks[key]; ok {
		return t, false
	}
	t := &task{done: make(chan struct{})}
	o.tasks[key] = t
	o.order = append(o.order, key)
	return t, true
}

// errServiceUnavailable is returned by Instance when a type was never
// registered, or its task ended in failure. It wraps apperr's sentinel
// directly so apperr.HTTPStatus resolves it to 503 without a handler
// having to know about initctl's internals.
var errServiceUnavailable = apperr.ServiceUnavailable("corpus not yet initialized")

func errorKind(err error) string {
	return fmt.Sprintf("%T", err)
}

// Instance awaits key's initialization task and returns its controller.
// If the task never ran (key unregistered) or ended in failure, it
// returns errServiceUnavailable, the equivalent of an HTTP 503.
// Concurrent callers all await the same task and observe the same
// value or the same error.
func Instance[T any](ctx context.Context, o *Orchestrator, key string) (T, error) {
	var zero T
	o.mu.Lock()
	t, ok := o.tasks[key]
	o.mu.Unlock()
	if !ok {
		return zero, errServiceUnavailable
	}

	select {
	case <-t.done:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	if t.err != nil {
		return zero, errServiceUnavailable
	}
	v, ok := t.value.(T)
	if !ok {
		return zero, errServiceUnavailable
	}
	return v, nil
}

// WaitAll awaits every registered task in insertion order and returns
// nil once all of them are done, or ctx's error if ctx ends first.
// Initialization failures are caught and logged inside each task and
// do not abort the wait; a panic inside a task's function is not
// recovered.
func (o *Orchestrator) WaitAll(ctx context.Context) error {
	o.mu.Lock()
	tasks := make([]*task, len(o.order))
	for i, k := range o.order {
		tasks[i] = o.tasks[k]
	}
	o.mu.Unlock()

	for _, t := range tasks {
		select {
		case <-t.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// WaitAllBlocking schedules WaitAll on a background goroutine and
// blocks the caller until it completes. It is meant to be used only
// once, during process startup.
func (o *Orchestrator) WaitAllBlocking(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- o.WaitAll(ctx)
	}()
	return <-errCh
}
