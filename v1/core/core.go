// Package core wires an LFU cache in front of a backing store.
//
// Reads are served from the cache when possible. On a miss the value is
// loaded from the store, with concurrent misses for the same key coalesced
// into a single store lookup, and written back into the cache. Writes go to
// the cache first and then to the store.
package core

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/mirkobrombin/go-lfu/v1/adapter"
	"github.com/mirkobrombin/go-lfu/v1/cache"
	"github.com/mirkobrombin/go-lfu/v1/metrics"
)

// ErrNotFound is returned when a key is neither cached nor present in the store.
var ErrNotFound = errors.New("not found")

// Core orchestrates the interaction between a cache and its backing store.
type Core[T any] struct {
	cache  cache.Cache[T]
	store  adapter.Store[T]
	group  singleflight.Group
	logger *slog.Logger
}

// Option configures a Core.
type Option[T any] func(*Core[T])

// WithLogger sets the logger used for non-fatal failures. slog.Default is
// used otherwise.
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(c *Core[T]) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a new Core. s may be nil, in which case Core behaves as a plain
// cache and misses return ErrNotFound.
func New[T any](c cache.Cache[T], s adapter.Store[T], opts ...Option[T]) *Core[T] {
	core := &Core[T]{cache: c, store: s, logger: slog.Default()}
	for _, opt := range opts {
		opt(core)
	}
	return core
}

// Get returns the value for key, loading it from the store on a cache miss.
func (c *Core[T]) Get(ctx context.Context, key string) (T, error) {
	metrics.GetCounter.Inc()
	var zero T
	v, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if ok {
		return v, nil
	}
	if c.store == nil {
		return zero, ErrNotFound
	}
	res, err, _ := c.group.Do(key, func() (any, error) {
		return c.load(ctx, key)
	})
	if err != nil {
		return zero, err
	}
	v, _ = res.(T)
	return v, nil
}

// load fetches key from the store and populates the cache. A failure to
// populate is logged and does not fail the read.
func (c *Core[T]) load(ctx context.Context, key string) (any, error) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		metrics.LoadErrorCounter.Inc()
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	metrics.LoadCounter.Inc()
	if err := c.cache.Set(ctx, key, v); err != nil {
		c.logger.Warn("lfu: cache populate failed", "key", key, "error", err)
	}
	return v, nil
}

// Set stores value in the cache and then in the store.
// It returns an error if either write fails.
func (c *Core[T]) Set(ctx context.Context, key string, value T) error {
	metrics.SetCounter.Inc()
	if err := c.cache.Set(ctx, key, value); err != nil {
		return err
	}
	if c.store == nil {
		return nil
	}
	return c.store.Set(ctx, key, value)
}

// Warmup loads every key of the store into the cache and returns how many
// values were loaded. Keys that fail to load are logged and skipped. When
// the store holds more keys than the cache can, later keys evict earlier ones.
func (c *Core[T]) Warmup(ctx context.Context) (int, error) {
	if c.store == nil {
		return 0, nil
	}
	keys, err := c.store.Keys(ctx)
	if err != nil {
		return 0, err
	}
	loaded := 0
	for _, k := range keys {
		v, ok, err := c.store.Get(ctx, k)
		if err != nil {
			if ctx.Err() != nil {
				return loaded, ctx.Err()
			}
			c.logger.Warn("lfu: warmup load failed", "key", k, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if err := c.cache.Set(ctx, k, v); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}
