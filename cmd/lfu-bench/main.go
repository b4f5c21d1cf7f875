package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mirkobrombin/go-lfu/v1/cache"
)

var (
	concurrency = flag.Int("c", 8, "Number of concurrent clients")
	requests    = flag.Int("n", 1000000, "Total number of requests")
	keySpace    = flag.Uint64("k", 100000, "Number of distinct keys")
	capacity    = flag.Int("capacity", 1000, "Cache capacity in entries")
	skew        = flag.Float64("s", 1.1, "Zipf skew, must be > 1")
	strategies  = flag.String("strategies", "exact,approximate", "Comma separated strategies to run")
)

type result struct {
	ops     int64
	hits    int64
	elapsed time.Duration
}

func main() {
	flag.Parse()

	log.Printf("Starting benchmark: %d requests, %d concurrency, %d keys, capacity %d, zipf s=%.2f",
		*requests, *concurrency, *keySpace, *capacity, *skew)

	for _, name := range strings.Split(*strategies, ",") {
		name = strings.TrimSpace(name)
		s, ok := cache.ParseStrategy(name)
		if !ok {
			log.Fatalf("unknown strategy %q", name)
		}
		c, err := cache.New[int](*capacity, cache.WithStrategy[int](s))
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		r := run(c)
		if rc, ok := c.(*cache.RistrettoCache[int]); ok {
			rc.Close()
		}

		throughput := float64(r.ops) / r.elapsed.Seconds()
		avgLatency := r.elapsed.Seconds() / float64(r.ops) * 1e9 // ns
		log.Printf("[%s] Finished in %v", s, r.elapsed)
		log.Printf("[%s] Throughput: %.2f req/s", s, throughput)
		log.Printf("[%s] Avg Latency: %.2f ns", s, avgLatency)
		log.Printf("[%s] Hit ratio: %.2f%%", s, float64(r.hits)/float64(r.ops)*100)
	}
}

// run drives a read-through workload against c: every miss is followed by
// a Set of the same key.
func run(c cache.Cache[int]) result {
	ctx := context.Background()
	var wg sync.WaitGroup
	var ops, hits int64

	reqsPerWorker := *requests / *concurrency
	start := time.Now()
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			z := rand.NewZipf(rand.New(rand.NewSource(seed)), *skew, 1, *keySpace-1)
			for j := 0; j < reqsPerWorker; j++ {
				k := z.Uint64()
				key := strconv.FormatUint(k, 10)
				if _, ok, _ := c.Get(ctx, key); ok {
					atomic.AddInt64(&hits, 1)
				} else {
					_ = c.Set(ctx, key, int(k))
				}
				atomic.AddInt64(&ops, 1)
			}
		}(int64(i) + 1)
	}
	wg.Wait()
	return result{ops: ops, hits: hits, elapsed: time.Since(start)}
}
