package initctl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestInstanceReturnsServiceUnavailableWhenUnregistered(t *testing.T) {
	o := New()
	_, err := Instance[Controller[int]](context.Background(), o, "missing")
	if !errors.Is(err, errServiceUnavailable) {
		t.Errorf("Instance() error = %v, want errServiceUnavailable", err)
	}
}

func TestRegisterAndInstanceRoundTrip(t *testing.T) {
	o := New()
	Register(o, "key", func(context.Context) (Controller[int], error) {
		return NewController([]int{1, 2, 3}, func(n int) string { return string(rune('a' + n)) }), nil
	})

	ctrl, err := Instance[Controller[int]](context.Background(), o, "key")
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	if ctrl.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ctrl.Len())
	}
}

func TestInstanceSurfacesInitFailureAsServiceUnavailable(t *testing.T) {
	o := New()
	Register(o, "key", func(context.Context) (Controller[int], error) {
		return Controller[int]{}, errors.New("boom")
	})

	_, err := Instance[Controller[int]](context.Background(), o, "key")
	if !errors.Is(err, errServiceUnavailable) {
		t.Errorf("Instance() error = %v, want errServiceUnavailable", err)
	}
}

func TestConcurrentInstanceCallersShareOneInitializationRun(t *testing.T) {
	o := New()
	var calls int32
	var mu sync.Mutex
	start := make(chan struct{})

	Register(o, "key", func(context.Context) (Controller[int], error) {
		<-start
		mu.Lock()
		calls++
		mu.Unlock()
		return NewController([]int{42}, func(n int) string { return "k" }), nil
	})

	const n = 20
	results := make([]Controller[int], n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Instance[Controller[int]](context.Background(), o, "key")
		}(i)
	}
	close(start)
	wg.Wait()

	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 1 {
		t.Errorf("init function ran %d times, want exactly 1 (one Register, many Instance waiters)", got)
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i].Len() != 1 {
			t.Errorf("caller %d: Len() = %d, want 1", i, results[i].Len())
		}
	}
}

func TestWaitAllCompletesAfterAllTasksDone(t *testing.T) {
	o := New()
	Register(o, "a", func(context.Context) (int, error) { return 1, nil })
	Register(o, "b", func(context.Context) (int, error) {
		time.Sleep(10 * time.Millisecond)
		return 2, nil
	})

	if err := o.WaitAllBlocking(context.Background()); err != nil {
		t.Fatalf("WaitAllBlocking: %v", err)
	}

	if _, err := Instance[int](context.Background(), o, "a"); err != nil {
		t.Errorf("Instance(a) after WaitAllBlocking: %v", err)
	}
	if _, err := Instance[int](context.Background(), o, "b"); err != nil {
		t.Errorf("Instance(b) after WaitAllBlocking: %v", err)
	}
}

func TestRegisterIsIdempotentPerKey(t *testing.T) {
	o := New()
	var calls int32
	var mu sync.Mutex
	inc := func(context.Context) (int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return 1, nil
	}
	Register(o, "key", inc)
	Register(o, "key", inc)

	_ = o.WaitAllBlocking(context.Background())

	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 1 {
		t.Errorf("second Register() re-ran the task: calls = %d, want 1", got)
	}
}
