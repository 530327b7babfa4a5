package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err, _ := g.Do("token-key", func() (any, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_DoContextCancelled(t *testing.T) {
	var g SingleFlight
	release := make(chan struct{})
	defer close(release)

	started := make(chan struct{})
	go func() {
		_, _, _ = g.Do("slow", func() (any, error) {
			close(started)
			<-release
			return "late", nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err, _ := g.DoContext(ctx, "slow", func() (any, error) {
		t.Errorf("shared call must not run twice")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestSingleFlight_DoSharedOutlivesLeader(t *testing.T) {
	var g SingleFlight
	var runs int32

	fn := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&runs, 1)
		select {
		case <-time.After(100 * time.Millisecond):
			return "done", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	leaderCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	leaderErr := make(chan error, 1)
	go func() {
		_, err, _ := g.DoShared(leaderCtx, "fixtures", time.Second, fn)
		leaderErr <- err
	}()
	for atomic.LoadInt32(&runs) == 0 {
		time.Sleep(time.Millisecond)
	}

	got, err, _ := g.DoShared(context.Background(), "fixtures", time.Second, fn)
	if err != nil {
		t.Fatalf("follower failed after leader deadline: %v", err)
	}
	if got != "done" {
		t.Fatalf("unexpected shared value got=%v want=%v", got, "done")
	}
	if err := <-leaderErr; !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected leader deadline exceeded, got %v", err)
	}
	if n := atomic.LoadInt32(&runs); n != 1 {
		t.Fatalf("expected one shared run, got %d", n)
	}
}

func TestSingleFlight_DoSharedTimeout(t *testing.T) {
	var g SingleFlight

	_, err, _ := g.DoShared(context.Background(), "stuck", 10*time.Millisecond, func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected shared timeout, got %v", err)
	}
}
