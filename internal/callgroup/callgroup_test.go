package callgroup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDeduplication(t *testing.T) {
	var g Group[string, int]
	var calls atomic.Int32
	started := make(chan struct{})

	fn := func() (int, error) {
		calls.Add(1)
		close(started)
		time.Sleep(50 * time.Millisecond)
		return 42, nil
	}

	const n = 10
	var wg sync.WaitGroup
	results := make([]Result[int], n)

	// First caller starts the work.
	wg.Go(func() {
		results[0] = <-g.DoChan("a.idx", fn)
	})

	// Wait for fn to start, then pile on.
	<-started
	for i := 1; i < n; i++ {
		wg.Go(func() {
			results[i] = <-g.DoChan("a.idx", fn)
		})
	}

	wg.Wait()

	for i, r := range results {
		if r.Err != nil || r.Val != 42 {
			t.Errorf("caller %d got %+v", i, r)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("fn called %d times, want 1", got)
	}
}

func TestIndependentKeys(t *testing.T) {
	var g Group[string, int]
	var calls atomic.Int32

	fn := func() (int, error) {
		calls.Add(1)
		return 0, nil
	}

	var wg sync.WaitGroup
	for _, key := range []string{"a", "b", "c"} {
		wg.Go(func() {
			<-g.DoChan(key, fn)
		})
	}

	wg.Wait()

	if got := calls.Load(); got != 3 {
		t.Errorf("fn called %d times, want 3", got)
	}
}

func TestErrorPropagation(t *testing.T) {
	var g Group[string, int]
	sentinel := errors.New("failed")
	started := make(chan struct{})

	ch1 := g.DoChan("k", func() (int, error) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		return 0, sentinel
	})
	<-started

	ch2 := g.DoChan("k", func() (int, error) {
		t.Error("should not execute")
		return 0, nil
	})

	r1 := <-ch1
	r2 := <-ch2

	if !errors.Is(r1.Err, sentinel) {
		t.Errorf("caller 1: got %v, want %v", r1.Err, sentinel)
	}
	if !errors.Is(r2.Err, sentinel) {
		t.Errorf("caller 2: got %v, want %v", r2.Err, sentinel)
	}
}

func TestReuseAfterCompletion(t *testing.T) {
	var g Group[string, int]
	var calls atomic.Int32

	fn := func() (int, error) {
		return int(calls.Add(1)), nil
	}

	// First call completes.
	if v, err := g.Do(context.Background(), "k", fn); err != nil || v != 1 {
		t.Fatalf("first call: %d, %v", v, err)
	}

	// Second call for same key should trigger a new execution.
	if v, err := g.Do(context.Background(), "k", fn); err != nil || v != 2 {
		t.Fatalf("second call: %d, %v", v, err)
	}
}

func TestDoContextCancel(t *testing.T) {
	var g Group[string, int]
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Do(ctx, "slow", func() (int, error) {
		<-release
		return 1, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
