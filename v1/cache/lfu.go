package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mirkobrombin/go-lfu/v1/lfu"
)

// LFUCache is a thread-safe cache with exact least-frequently-used eviction.
//
// Ties between entries with the same access count are broken by evicting the
// one that reached that count first.
type LFUCache[T any] struct {
	mu   sync.Mutex
	core *lfu.Cache[string, T]

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64

	hitCounter      prometheus.Counter
	missCounter     prometheus.Counter
	evictionCounter prometheus.Counter
	sizeGauge       prometheus.Gauge
	latencyHist     prometheus.Histogram
	traceEnabled    bool

	onEvict func(key string, value T)
}

// LFUOption configures an LFUCache.
type LFUOption[T any] func(*LFUCache[T])

// WithMetrics enables Prometheus metrics collection using the provided registerer.
func WithMetrics[T any](reg prometheus.Registerer) LFUOption[T] {
	return func(c *LFUCache[T]) {
		c.hitCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lfu_cache_hits_total",
			Help: "Total number of cache hits",
		})
		c.missCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lfu_cache_misses_total",
			Help: "Total number of cache misses",
		})
		c.evictionCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lfu_cache_evictions_total",
			Help: "Total number of cache evictions",
		})
		c.sizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lfu_cache_entries",
			Help: "Current number of entries in the cache",
		})
		c.latencyHist = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lfu_cache_latency_seconds",
			Help:    "Latency of cache operations",
			Buckets: prometheus.DefBuckets,
		})
		reg.MustRegister(c.hitCounter, c.missCounter, c.evictionCounter, c.sizeGauge, c.latencyHist)
	}
}

// WithTracing enables OpenTelemetry tracing for cache operations.
func WithTracing[T any]() LFUOption[T] {
	return func(c *LFUCache[T]) {
		c.traceEnabled = true
	}
}

// WithEvictionHook registers fn to be called for every capacity eviction.
// fn runs while the cache lock is held and must not call back into the cache.
func WithEvictionHook[T any](fn func(key string, value T)) LFUOption[T] {
	return func(c *LFUCache[T]) {
		c.onEvict = fn
	}
}

// NewLFU returns a new LFUCache holding at most capacity entries.
//
// A zero capacity yields a cache that stores nothing. A negative capacity
// returns errors.ErrNegativeCapacity.
func NewLFU[T any](capacity int, opts ...LFUOption[T]) (*LFUCache[T], error) {
	c := &LFUCache[T]{}
	for _, opt := range opts {
		opt(c)
	}
	core, err := lfu.New[string, T](capacity, lfu.WithOnEvict(c.evicted))
	if err != nil {
		return nil, err
	}
	c.core = core
	return c, nil
}

// Get implements Cache.Get. A hit counts as an access.
func (c *LFUCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	ctx, done := c.observe(ctx, "Cache.Get")
	var zero T
	if err := ctx.Err(); err != nil {
		done("")
		return zero, false, err
	}
	c.mu.Lock()
	v, ok := c.core.Get(key)
	c.mu.Unlock()
	if !ok {
		c.misses.Add(1)
		if c.missCounter != nil {
			c.missCounter.Inc()
		}
		done("miss")
		return zero, false, nil
	}
	c.hits.Add(1)
	if c.hitCounter != nil {
		c.hitCounter.Inc()
	}
	done("hit")
	return v, true, nil
}

// Set implements Cache.Set. Overwriting an existing key counts as an access.
func (c *LFUCache[T]) Set(ctx context.Context, key string, value T) error {
	ctx, done := c.observe(ctx, "Cache.Set")
	defer done("")
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	c.core.Put(key, value)
	if c.sizeGauge != nil {
		c.sizeGauge.Set(float64(c.core.Len()))
	}
	return nil
}

// Frequency returns the access count of key without counting as an access.
func (c *LFUCache[T]) Frequency(key string) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.core.Frequency(key)
}

// Metrics returns current metrics for the cache.
func (c *LFUCache[T]) Metrics() Stats {
	c.mu.Lock()
	size, capacity := c.core.Len(), c.core.Cap()
	c.mu.Unlock()
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      size,
		Capacity:  capacity,
	}
}

// evicted runs inside core.Put with c.mu held.
func (c *LFUCache[T]) evicted(key string, value T) {
	c.evictions.Add(1)
	if c.evictionCounter != nil {
		c.evictionCounter.Inc()
	}
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}

// observe starts a span and a latency measurement for one operation. The
// returned func ends both; result is recorded on the span when not empty.
func (c *LFUCache[T]) observe(ctx context.Context, name string) (context.Context, func(result string)) {
	if !c.traceEnabled && c.latencyHist == nil {
		return ctx, func(string) {}
	}
	start := time.Now()
	var span trace.Span
	if c.traceEnabled {
		ctx, span = tracer.Start(ctx, name)
	}
	return ctx, func(result string) {
		latency := time.Since(start)
		if span != nil {
			if result != "" {
				span.SetAttributes(attribute.String("lfu.cache.result", result))
			}
			span.SetAttributes(attribute.Int64("lfu.cache.latency_ms", latency.Milliseconds()))
			span.End()
		}
		if c.latencyHist != nil {
			c.latencyHist.Observe(latency.Seconds())
		}
	}
}

var _ Cache[int] = (*LFUCache[int])(nil)
