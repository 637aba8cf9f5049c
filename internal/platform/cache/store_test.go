package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[string](0)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "results", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "results:2026-02-11", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "results" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32
	errProvider := errors.New("provider down")

	failing := func(context.Context) (string, error) {
		calls.Add(1)
		return "", errProvider
	}
	if _, err := store.GetOrLoad(context.Background(), "catalog:2026-02-11", failing); !errors.Is(err, errProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}

	ok := func(context.Context) (string, error) {
		calls.Add(1)
		return "catalog", nil
	}
	v, err := store.GetOrLoad(context.Background(), "catalog:2026-02-11", ok)
	if err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}
	if v != "catalog" {
		t.Fatalf("unexpected value %q", v)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("loader called %d times, want 2", got)
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	now := time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "catalog:2026-02-11", 1)
	if _, ok := store.Get(context.Background(), "catalog:2026-02-11"); !ok {
		t.Fatalf("expected fresh entry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(context.Background(), "catalog:2026-02-11"); ok {
		t.Fatalf("expected entry to expire")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", store.Len())
	}
}

func TestStore_EvictsOldestDayWhenFull(t *testing.T) {
	t.Parallel()

	store := NewStore[int](0, WithMaxEntries(2))
	now := time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	store.Set(ctx, "day:2026-02-09", 9)
	now = now.Add(time.Second)
	store.Set(ctx, "day:2026-02-10", 10)
	now = now.Add(time.Second)
	store.Set(ctx, "day:2026-02-10", 11)
	if store.Len() != 2 {
		t.Fatalf("overwrite must not evict, len=%d", store.Len())
	}

	now = now.Add(time.Second)
	store.Set(ctx, "day:2026-02-11", 11)

	if store.Len() != 2 {
		t.Fatalf("expected capacity to hold, len=%d", store.Len())
	}
	if _, ok := store.Get(ctx, "day:2026-02-09"); ok {
		t.Fatalf("expected oldest day to be evicted")
	}
	if v, ok := store.Get(ctx, "day:2026-02-10"); !ok || v != 11 {
		t.Fatalf("expected overwritten day to survive, got %d %t", v, ok)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
