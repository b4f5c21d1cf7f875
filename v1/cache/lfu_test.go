package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	lfuerrors "github.com/mirkobrombin/go-lfu/v1/errors"
)

// newLFUCache returns an LFU cache for testing.
func newLFUCache[T any](t *testing.T, capacity int, opts ...LFUOption[T]) (*LFUCache[T], context.Context) {
	t.Helper()
	c, err := NewLFU[T](capacity, opts...)
	if err != nil {
		t.Fatalf("NewLFU: %v", err)
	}
	return c, context.Background()
}

func TestLFUCacheGetSet(t *testing.T) {
	c, ctx := newLFUCache[string](t, 2)
	if err := c.Set(ctx, "foo", "bar"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, err := c.Get(ctx, "foo"); err != nil || !ok || v != "bar" {
		t.Fatalf("Get: expected bar, got %v err %v", v, err)
	}
	if _, ok, err := c.Get(ctx, "nope"); ok || err != nil {
		t.Fatalf("expected miss for unknown key")
	}
	m := c.Metrics()
	if m.Hits != 1 || m.Misses != 1 || m.Size != 1 || m.Capacity != 2 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestLFUCacheNegativeCapacity(t *testing.T) {
	if _, err := NewLFU[string](-5); !errors.Is(err, lfuerrors.ErrNegativeCapacity) {
		t.Fatalf("expected ErrNegativeCapacity, got %v", err)
	}
}

func TestLFUCacheEvictsLeastFrequent(t *testing.T) {
	var evicted []string
	c, ctx := newLFUCache[int](t, 3, WithEvictionHook(func(k string, _ int) {
		evicted = append(evicted, k)
	}))
	_ = c.Set(ctx, "2", 20)
	_ = c.Set(ctx, "3", 30)
	_ = c.Set(ctx, "1", 10)
	_, _, _ = c.Get(ctx, "2")
	_, _, _ = c.Get(ctx, "2")
	_ = c.Set(ctx, "4", 40)

	if len(evicted) != 1 || evicted[0] != "3" {
		t.Fatalf("expected 3 to be evicted, got %v", evicted)
	}
	if f, ok := c.Frequency("2"); !ok || f != 3 {
		t.Fatalf("expected freq(2)=3, got %d", f)
	}
	if v, ok, _ := c.Get(ctx, "1"); !ok || v != 10 {
		t.Fatalf("expected 10, got %v", v)
	}
	if _, ok, _ := c.Get(ctx, "3"); ok {
		t.Fatalf("expected miss for evicted key")
	}
	if m := c.Metrics(); m.Evictions != 1 || m.Size != 3 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestLFUCacheContext(t *testing.T) {
	c, _ := newLFUCache[string](t, 4)

	ctxSet, cancelSet := context.WithCancel(context.Background())
	cancelSet()
	if err := c.Set(ctxSet, "a", "b"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled error, got %v", err)
	}
	if _, ok, err := c.Get(context.Background(), "a"); ok || err != nil {
		t.Fatalf("item should not be stored when context is canceled")
	}

	if err := c.Set(context.Background(), "foo", "bar"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctxGet, cancelGet := context.WithCancel(context.Background())
	cancelGet()
	if v, ok, err := c.Get(ctxGet, "foo"); !errors.Is(err, context.Canceled) || ok || v != "" {
		t.Fatalf("expected canceled context to prevent retrieval")
	}
	if f, _ := c.Frequency("foo"); f != 1 {
		t.Fatalf("canceled get must not count as access, freq %d", f)
	}
}

func TestLFUCacheConcurrentAccess(t *testing.T) {
	c, ctx := newLFUCache[int](t, 64)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				k := strconv.Itoa((i * (w + 1)) % 200)
				if _, ok, _ := c.Get(ctx, k); !ok {
					_ = c.Set(ctx, k, i)
				}
			}
		}(w)
	}
	wg.Wait()
	m := c.Metrics()
	if m.Size > 64 {
		t.Fatalf("size %d exceeds capacity", m.Size)
	}
	if m.Hits+m.Misses != 8000 {
		t.Fatalf("expected 8000 lookups, got %d", m.Hits+m.Misses)
	}
}

func TestLFUCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, ctx := newLFUCache[string](t, 1, WithMetrics[string](reg))
	_ = c.Set(ctx, "a", "1")
	_, _, _ = c.Get(ctx, "a")
	_, _, _ = c.Get(ctx, "b")
	_ = c.Set(ctx, "b", "2")

	if got := testutil.ToFloat64(c.hitCounter); got != 1 {
		t.Fatalf("expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(c.missCounter); got != 1 {
		t.Fatalf("expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(c.evictionCounter); got != 1 {
		t.Fatalf("expected 1 eviction, got %v", got)
	}
	if got := testutil.ToFloat64(c.sizeGauge); got != 1 {
		t.Fatalf("expected size 1, got %v", got)
	}
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) != 5 {
		t.Fatalf("expected 5 metric families, got %d", len(mfs))
	}
}

func TestLFUCacheTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	c, ctx := newLFUCache[string](t, 2, WithTracing[string]())
	_ = c.Set(ctx, "a", "1")
	_, _, _ = c.Get(ctx, "a")
	_, _, _ = c.Get(ctx, "b")

	spans := sr.Ended()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	var results []string
	for _, s := range spans {
		for _, kv := range s.Attributes() {
			if kv.Key == "lfu.cache.result" {
				results = append(results, kv.Value.AsString())
			}
		}
	}
	if len(results) != 2 || results[0] != "hit" || results[1] != "miss" {
		t.Fatalf("unexpected span results: %v", results)
	}
}
