// Package cache provides a small read-through cache: LRU storage plus
// singleflight so a burst of concurrent misses for one key triggers a single
// load instead of N.
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Loader is a generic read-through cache. Values are loaded on miss via the
// callback passed to Get; concurrent misses for the same key are coalesced.
type Loader[K comparable, V any] struct {
	lru   *lru.Cache[K, V]
	group singleflight.Group
}

// NewLoader creates a loader cache holding at most maxEntries values.
func NewLoader[K comparable, V any](maxEntries int) (*Loader[K, V], error) {
	store, err := lru.New[K, V](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	return &Loader[K, V]{lru: store}, nil
}

// Get returns the cached value for key, loading and storing it on miss.
// Only one load runs per key at a time; concurrent callers share its result.
func (c *Loader[K, V]) Get(ctx context.Context, key K, load func(context.Context, K) (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(fmt.Sprint(key), func() (any, error) {
		loaded, loadErr := load(ctx, key)
		if loadErr != nil {
			return nil, loadErr
		}

		c.lru.Add(key, loaded)

		return loaded, nil
	})
	if err != nil {
		var zero V

		return zero, err
	}

	return v.(V), nil
}

// Invalidate drops the cached value for key, if any.
func (c *Loader[K, V]) Invalidate(key K) {
	c.lru.Remove(key)
}

// InvalidateAll drops every cached value.
func (c *Loader[K, V]) InvalidateAll() {
	c.lru.Purge()
}
