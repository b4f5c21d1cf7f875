package cache

import (
	"context"

	"github.com/dgraph-io/ristretto"

	lfuerrors "github.com/mirkobrombin/go-lfu/v1/errors"
)

// RistrettoCache implements Cache using dgraph-io/ristretto.
//
// Eviction is approximate: ristretto tracks frequencies with a count-min
// sketch and may refuse to admit a new key that is colder than the entry it
// would replace. Every entry costs 1, so capacity bounds the entry count.
type RistrettoCache[T any] struct {
	c        *ristretto.Cache
	capacity int
}

// RistrettoOption configures the underlying ristretto cache.
type RistrettoOption func(*ristretto.Config)

// WithRistretto applies a custom ristretto configuration.
//
// If cfg is nil, defaults are used. MaxCost and IgnoreInternalCost are always
// overridden so that capacity counts entries.
func WithRistretto(cfg *ristretto.Config) RistrettoOption {
	return func(c *ristretto.Config) {
		if cfg == nil {
			return
		}
		*c = *cfg
	}
}

// NewRistretto returns a Cache backed by ristretto holding roughly capacity
// entries.
//
// Frequencies are tracked for ten times as many keys as the cache holds, as
// recommended by ristretto.
func NewRistretto[T any](capacity int, opts ...RistrettoOption) (*RistrettoCache[T], error) {
	if capacity < 0 {
		return nil, lfuerrors.ErrNegativeCapacity
	}
	if capacity == 0 {
		return &RistrettoCache[T]{}, nil
	}
	cfg := &ristretto.Config{
		NumCounters: int64(capacity) * 10,
		BufferItems: 64, // number of keys per Get buffer.
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.MaxCost = int64(capacity)
	// Without this ristretto charges its own per-item overhead on top of
	// the cost of 1 and the cache holds a fraction of capacity.
	cfg.IgnoreInternalCost = true
	rc, err := ristretto.NewCache(cfg)
	if err != nil {
		return nil, err
	}
	return &RistrettoCache[T]{c: rc, capacity: capacity}, nil
}

// Get implements Cache.Get.
func (r *RistrettoCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if r.c == nil {
		return zero, false, nil
	}
	v, ok := r.c.Get(key)
	if !ok {
		return zero, false, nil
	}
	val, _ := v.(T)
	return val, true, nil
}

// Set implements Cache.Set. The admission policy may drop the value.
func (r *RistrettoCache[T]) Set(ctx context.Context, key string, value T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.c == nil {
		return nil
	}
	r.c.Set(key, value, 1)
	r.c.Wait()
	return nil
}

// Cap returns the capacity the cache was built with.
func (r *RistrettoCache[T]) Cap() int { return r.capacity }

// Close releases resources held by the cache.
func (r *RistrettoCache[T]) Close() {
	if r.c != nil {
		r.c.Close()
	}
}

var _ Cache[int] = (*RistrettoCache[int])(nil)
