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

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
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
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
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

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")

func TestStore_EvictsOldestInsertedKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(0, WithCapacity(2))

	store.Set(ctx, "a", 1)
	store.Set(ctx, "b", 2)
	// Reading and rewriting "a" must not move it to the back.
	if _, ok := store.Get(ctx, "a"); !ok {
		t.Fatalf("expected key a to be present")
	}
	store.Set(ctx, "a", 10)
	store.Set(ctx, "c", 3)

	if _, ok := store.Get(ctx, "a"); ok {
		t.Fatalf("expected oldest inserted key a to be evicted")
	}
	if v, ok := store.Get(ctx, "b"); !ok || v.(int) != 2 {
		t.Fatalf("expected key b to survive, got=%v ok=%v", v, ok)
	}
	if got := store.Keys(); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("unexpected insertion order: %v", got)
	}
	if got := store.Evicted(); got != 1 {
		t.Fatalf("unexpected eviction count: got=%d want=1", got)
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute, WithClock(func() time.Time { return now }))

	store.Set(ctx, "k", "v")
	now = now.Add(30 * time.Second)
	if _, ok := store.Get(ctx, "k"); !ok {
		t.Fatalf("expected value before ttl")
	}
	now = now.Add(31 * time.Second)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expected value to expire after ttl")
	}
	if got := store.Len(); got != 0 {
		t.Fatalf("expired key must be removed on read, len=%d", got)
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(0)
	store.Set(ctx, "match:1", 1)
	store.Set(ctx, "match:2", 2)
	store.Set(ctx, "player:1", 3)

	store.DeletePrefix(ctx, "match:")
	if got := store.Keys(); len(got) != 1 || got[0] != "player:1" {
		t.Fatalf("unexpected keys after prefix delete: %v", got)
	}
}
