// Package cache provides thread-safe, context-aware caches built on top of
// the lfu package. LFUCache gives exact least-frequently-used eviction with
// optional Prometheus metrics and OpenTelemetry tracing. RistrettoCache is an
// approximate alternative based on TinyLFU admission, useful when the key
// space is large and exactness can be traded for throughput.
package cache
