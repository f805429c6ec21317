// File: container/hashtable.go
// Author: momentics <momentics@gmail.com>
//
// Hashtable is a fixed-bucket-count concurrent map built directly on List:
// each bucket pairs a List[pair[K,V]] with its own sync.RWMutex, and that
// bucket mutex -- not the List's internal per-node locks -- is what a
// hashtable operation takes to span its whole read-modify-write. Two
// operations hashing to different buckets never contend. There is no
// rehashing -- the bucket count is fixed for the table's lifetime, chosen
// by the caller up front the way the source chooses a fixed thread count.

package container

import (
	"sync"
	"sync/atomic"

	"github.com/northfold/taskpool/api"
)

// HashFunc computes a bucket-selection hash for a key. Implementations do
// not need to be cryptographically strong, only well-distributed.
type HashFunc[K any] func(K) uint64

type pair[K any, V any] struct {
	key   K
	value V
}

// bucket pairs a List with the mutex that guards every operation on it.
// The List's own node-level locking still runs underneath -- the bucket
// mutex is what makes the match-then-mutate sequence atomic from the
// hashtable's point of view, the same double layer the source's
// threadsafe_hashtable::bucket has over threadsafe_list.
type bucket[K comparable, V any] struct {
	mu   sync.RWMutex
	list *List[pair[K, V]]
}

// Hashtable is a thread-safe, fixed-size-bucket-array map from K to V.
//
// Invariant: a key appears in at most one (key, value) pair across all
// buckets at any time; which bucket a key lives in is fixed for the life
// of the table (bucketCount never changes).
type Hashtable[K comparable, V any] struct {
	buckets []*bucket[K, V]
	hash    HashFunc[K]
	eq      func(K, K) bool
	count   atomic.Int64
}

// NewHashtable constructs a Hashtable with the given fixed bucket count and
// hash function. bucketCount should be prime-ish to spread hashes evenly;
// 61 is a reasonable default for small-to-medium tables.
func NewHashtable[K comparable, V any](bucketCount int, hash HashFunc[K]) *Hashtable[K, V] {
	if bucketCount <= 0 {
		panic("container: NewHashtable requires a positive bucketCount")
	}
	if hash == nil {
		panic("container: NewHashtable requires a non-nil hash function")
	}
	buckets := make([]*bucket[K, V], bucketCount)
	for i := range buckets {
		buckets[i] = &bucket[K, V]{list: NewList[pair[K, V]]()}
	}
	return &Hashtable[K, V]{
		buckets: buckets,
		hash:    hash,
		eq:      func(a, b K) bool { return a == b },
	}
}

func (h *Hashtable[K, V]) bucketFor(key K) *bucket[K, V] {
	idx := h.hash(key) % uint64(len(h.buckets))
	return h.buckets[idx]
}

func (h *Hashtable[K, V]) keyEquals(key K) func(pair[K, V]) bool {
	return func(p pair[K, V]) bool { return h.eq(p.key, key) }
}

// Get returns the value stored for key. ok is false if key is absent.
func (h *Hashtable[K, V]) Get(key K) (v V, ok bool) {
	b := h.bucketFor(key)
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, found := b.list.FindFirstIf(h.keyEquals(key))
	if !found {
		return v, false
	}
	return p.value, true
}

// Has reports whether key is present in the table.
func (h *Hashtable[K, V]) Has(key K) bool {
	b := h.bucketFor(key)
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.list.MatchAny(h.keyEquals(key))
}

// Insert adds key/value if key is absent, and reports whether it inserted
// (false if key was already present -- the existing value is left
// untouched).
func (h *Hashtable[K, V]) Insert(key K, value V) bool {
	b := h.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.list.MatchAny(h.keyEquals(key)) {
		return false
	}
	b.list.PushFront(pair[K, V]{key: key, value: value})
	h.count.Add(1)
	return true
}

// Replace overwrites the value for key if key is present, and reports
// whether it replaced anything.
func (h *Hashtable[K, V]) Replace(key K, value V) bool {
	b := h.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.list.ReplaceIf(h.keyEquals(key), func() pair[K, V] { return pair[K, V]{key: key, value: value} })
	return n > 0
}

// InsertOrReplace inserts key/value if key is absent, or overwrites the
// existing value if present. It reports true if a new entry was inserted,
// false if an existing one was overwritten.
func (h *Hashtable[K, V]) InsertOrReplace(key K, value V) bool {
	b := h.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := b.list.ReplaceIf(h.keyEquals(key), func() pair[K, V] { return pair[K, V]{key: key, value: value} }); n > 0 {
		return false
	}
	b.list.PushFront(pair[K, V]{key: key, value: value})
	h.count.Add(1)
	return true
}

// GetOrInsert returns the existing value for key if present, otherwise
// computes one from supplier, inserts it, and returns it. inserted reports
// whether the returned value was newly inserted.
func (h *Hashtable[K, V]) GetOrInsert(key K, supplier func() V) (v V, inserted bool) {
	if v, found := h.Get(key); found {
		return v, false
	}

	b := h.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	// Re-check under the writer lock: another goroutine may have inserted
	// key between the fast-path Get above and acquiring this lock.
	if p, found := b.list.FindFirstIf(h.keyEquals(key)); found {
		return p.value, false
	}

	newValue := supplier()
	b.list.PushFront(pair[K, V]{key: key, value: newValue})
	h.count.Add(1)
	return newValue, true
}

// Remove deletes key from the table and reports whether it was present.
func (h *Hashtable[K, V]) Remove(key K) bool {
	b := h.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.list.RemoveIf(h.keyEquals(key), 1)
	if n > 0 {
		h.count.Add(-1)
		return true
	}
	return false
}

// Size returns the total number of entries across all buckets.
func (h *Hashtable[K, V]) Size() int {
	return int(h.count.Load())
}

// Empty reports whether the table currently has no entries.
func (h *Hashtable[K, V]) Empty() bool {
	return h.Size() == 0
}

// Clear removes every entry from the table.
func (h *Hashtable[K, V]) Clear() {
	for _, b := range h.buckets {
		b.mu.Lock()
		h.count.Add(-int64(b.list.Size()))
		b.list.Clear()
		b.mu.Unlock()
	}
}

// ReadAndMap returns a snapshot slice built by applying fn to every value
// in the table, scanning each bucket under its reader lock.
func (h *Hashtable[K, V]) ReadAndMap(fn func(K, V) any) []any {
	out := make([]any, 0, h.Size())
	for _, b := range h.buckets {
		b.mu.RLock()
		b.list.ForEachRead(func(p pair[K, V]) {
			out = append(out, fn(p.key, p.value))
		})
		b.mu.RUnlock()
	}
	return out
}

// WriteAndMap mutates every value in place via fn, scanning each bucket
// under its writer lock.
func (h *Hashtable[K, V]) WriteAndMap(fn func(K, *V)) {
	for _, b := range h.buckets {
		b.mu.Lock()
		b.list.ForEachWrite(func(p *pair[K, V]) {
			fn(p.key, &p.value)
		})
		b.mu.Unlock()
	}
}

// ForEachRead runs fn on every (key, value) pair under each bucket's
// reader lock.
func (h *Hashtable[K, V]) ForEachRead(fn func(K, V)) {
	for _, b := range h.buckets {
		b.mu.RLock()
		b.list.ForEachRead(func(p pair[K, V]) {
			fn(p.key, p.value)
		})
		b.mu.RUnlock()
	}
}

// ForEachWrite runs fn on every (key, value) pair under each bucket's
// writer lock, allowing in-place mutation of the value.
func (h *Hashtable[K, V]) ForEachWrite(fn func(K, *V)) {
	h.WriteAndMap(fn)
}

var (
	_ api.Sized     = (*Hashtable[int, int])(nil)
	_ api.Clearable = (*Hashtable[int, int])(nil)
)
