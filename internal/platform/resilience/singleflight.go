package resilience

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// SingleFlight deduplicates concurrent calls for the same key.
type SingleFlight struct {
	group singleflight.Group
}

func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	return g.group.Do(key, fn)
}

// DoContext is Do that stops waiting when ctx is done. The shared call keeps
// running for the other waiters.
func (g *SingleFlight) DoContext(ctx context.Context, key string, fn func() (any, error)) (any, error, bool) {
	ch := g.group.DoChan(key, fn)
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-ch:
		return res.Val, res.Err, res.Shared
	}
}

// DoShared runs fn once per key under a context detached from every caller
// and bounded by timeout. A caller whose ctx ends stops waiting, but the
// shared call keeps running for the others. Context values such as the
// active span are kept.
func (g *SingleFlight) DoShared(ctx context.Context, key string, timeout time.Duration, fn func(context.Context) (any, error)) (any, error, bool) {
	sharedCtx := context.WithoutCancel(ctx)
	return g.DoContext(ctx, key, func() (any, error) {
		runCtx := sharedCtx
		if timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(sharedCtx, timeout)
			defer cancel()
		}
		return fn(runCtx)
	})
}

// Forget drops the in-flight call for key so the next caller starts fresh.
func (g *SingleFlight) Forget(key string) {
	g.group.Forget(key)
}
