// internal/index/kv.go
package index

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// KVStorage is the two-tier store backing a single Line: a bounded
// "recent" cache under LRU eviction fronting an unbounded "base" map.
// recent models fast memory, base models an arbitrarily large cold
// tier; the cache-miss count it accumulates characterizes how much a
// resolution level pays for access.
//
// The "unbounded LRU" described in some of the prototype's snapshots is
// a source accident: base is a plain grow-only map, never evicted from.
type KVStorage[V any] struct {
	recent     *lru.Cache[uint64, V]
	base       map[uint64]V
	readDelay  time.Duration
	simulateIO bool
	misses     atomic.Uint64
}

// NewKVStorage builds a KVStorage with the given recent-tier capacity.
// readDelay is the per-miss simulated I/O latency; it is only slept when
// simulateIO is true, so uninstrumented callers pay nothing beyond the
// map/LRU bookkeeping itself.
func NewKVStorage[V any](capacity int, readDelay time.Duration, simulateIO bool) *KVStorage[V] {
	if capacity < 1 {
		capacity = 1
	}
	kv := &KVStorage[V]{
		base:       make(map[uint64]V),
		readDelay:  readDelay,
		simulateIO: simulateIO,
	}
	cache, err := lru.NewWithEvict[uint64, V](capacity, func(key uint64, value V) {
		// K1: on eviction from recent, the victim is demoted into base.
		kv.base[key] = value
	})
	if err != nil {
		// Only possible if capacity < 1, which is clamped above.
		panic(err)
	}
	kv.recent = cache
	return kv
}

// Get returns the value stored at k, if any, and whether it was found.
// A hit in recent is free; a hit served from base counts a miss,
// optionally sleeps readDelay, and re-warms recent with the value,
// which may itself demote a different entry into base (K2).
func (kv *KVStorage[V]) Get(k uint64) (V, bool) {
	if v, ok := kv.recent.Get(k); ok {
		return v, true
	}
	if v, ok := kv.base[k]; ok {
		kv.misses.Add(1)
		if kv.simulateIO && kv.readDelay > 0 {
			time.Sleep(kv.readDelay)
		}
		kv.recent.Add(k, v)
		return v, true
	}
	var zero V
	return zero, false
}

// Put inserts k->v into recent. Any LRU victim is demoted into base.
func (kv *KVStorage[V]) Put(k uint64, v V) {
	kv.recent.Add(k, v)
}

// Misses returns the number of Get calls served from base since creation.
func (kv *KVStorage[V]) Misses() uint64 {
	return kv.misses.Load()
}

// Len reports how many positions are currently stored across both tiers.
func (kv *KVStorage[V]) Len() int {
	n := kv.recent.Len()
	for k := range kv.base {
		if !kv.recent.Contains(k) {
			n++
		}
	}
	return n
}
