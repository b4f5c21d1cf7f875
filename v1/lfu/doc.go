// Package lfu implements a fixed-capacity key/value cache with a
// least-frequently-used eviction policy.
//
// Every Get hit and every overwriting Put counts as an access and bumps the
// entry frequency by one. When a new key arrives and the cache is full, the
// entry with the lowest frequency is evicted; among entries sharing that
// frequency the one that has sat longest in its bucket goes first.
//
// Entries live in an arena addressed by stable indices. Each frequency
// bucket is a doubly linked list threaded through the arena, so lookups,
// promotions and evictions all run in constant time.
//
// A Cache is not safe for concurrent use. The cache package wraps it with
// locking, metrics and tracing.
package lfu
