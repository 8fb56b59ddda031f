// Package loader puts an LRU cache in front of a backing store.
//
// Reads go through the cache and fall back to the store on a miss; writes go
// to the store first and then to the cache.
package loader

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"lrucache/internal/cache"
	"lrucache/internal/store"
)

// Loader serves reads from a cache and fills it from a store on misses.
// It is safe for concurrent use.
type Loader struct {
	cache *cache.Cache
	store store.Store
	group singleflight.Group
}

// New returns a Loader reading through c to s.
func New(c *cache.Cache, s store.Store) *Loader {
	return &Loader{cache: c, store: s}
}

// Get returns the cached value for key, loading it from the store on a miss.
//
// Concurrent misses for the same key share a single store fetch. Each caller
// waits only as long as its own ctx allows; the shared fetch keeps ctx values
// but is not canceled when one waiter gives up. Keys missing from the store are
// not cached; the error wraps store.ErrNotFound.
//
// A fetched value never replaces an entry written by Put while the fetch was
// in flight.
func (l *Loader) Get(ctx context.Context, key string) (int, error) {
	if v, ok := l.cache.Lookup(key); ok {
		return v, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (interface{}, error) {
		// Another caller may have filled the cache while we waited.
		if v, ok := l.cache.Peek(key); ok {
			return v, nil
		}
		fresh, err := l.store.Fetch(fetchCtx, key)
		if err != nil {
			return 0, err
		}
		v, _ := l.cache.PutIfAbsent(key, fresh)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("load %q: %w", key, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return 0, fmt.Errorf("load %q: %w", key, res.Err)
		}
		return res.Val.(int), nil
	}
}

// Put writes value to the store and then to the cache.
// If the store write fails the cache is left unchanged.
func (l *Loader) Put(ctx context.Context, key string, value int) error {
	if err := l.store.Save(ctx, key, value); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	l.cache.Put(key, value)
	return nil
}
