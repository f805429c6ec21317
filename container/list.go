// File: container/list.go
// Author: momentics <momentics@gmail.com>
//
// List is a singly linked list with one reader/writer mutex per node,
// traversed hand-over-hand: a scan holds at most two adjacent node locks at
// once, always acquired in traversal (head-to-tail) order, which is what
// makes two concurrent traversals incapable of deadlocking against each
// other. Hashtable buckets are built from List.

package container

import (
	"sync"
	"sync/atomic"

	"github.com/northfold/taskpool/api"
)

type listNode[T any] struct {
	mu    sync.RWMutex
	value T
	next  *listNode[T]
}

// List is a thread-safe singly linked list of T with a persistent,
// valueless dummy head node; real values begin at head.next.
//
// Invariant: traversal from head via next always terminates; head.next ==
// nil iff the list is empty.
//
// Callers must never re-enter the same List from inside a predicate,
// supplier, or consumer passed to one of its methods while that method
// holds a node lock -- doing so deadlocks.
type List[T any] struct {
	head listNode[T]
	size atomic.Int64
}

// NewList constructs an empty List.
func NewList[T any]() *List[T] {
	return &List[T]{}
}

// PushFront adds a new value to the front of the list.
func (l *List[T]) PushFront(v T) {
	n := &listNode[T]{value: v}
	l.head.mu.Lock()
	n.next = l.head.next
	l.head.next = n
	l.size.Add(1)
	l.head.mu.Unlock()
}

// MatchAny reports whether any value in the list satisfies pred, scanning
// under reader locks.
func (l *List[T]) MatchAny(pred func(T) bool) bool {
	current := &l.head
	current.mu.RLock()
	for current.next != nil {
		next := current.next
		next.mu.RLock()
		if pred(next.value) {
			next.mu.RUnlock()
			current.mu.RUnlock()
			return true
		}
		current.mu.RUnlock()
		current = next
	}
	current.mu.RUnlock()
	return false
}

// RemoveIf unlinks every value satisfying pred, up to limit removals (pass
// a non-positive limit, or math.MaxInt, to remove every match), and reports
// the count removed.
func (l *List[T]) RemoveIf(pred func(T) bool, limit int) int {
	if limit <= 0 {
		limit = int(^uint(0) >> 1)
	}
	removed := 0
	current := &l.head
	current.mu.Lock()
	for current.next != nil && removed < limit {
		next := current.next
		next.mu.Lock()
		if pred(next.value) {
			toRemove := next
			current.next = next.next
			// Unlock the removed node's mutex before it becomes
			// unreachable -- never hold a lock longer than necessary,
			// and never rely on the garbage collector to release it.
			toRemove.mu.Unlock()
			l.size.Add(-1)
			removed++
			continue
		}
		current.mu.Unlock()
		current = next
	}
	current.mu.Unlock()
	return removed
}

// ReplaceIf replaces, with a value from supplier, every value satisfying
// pred, and reports the count replaced.
func (l *List[T]) ReplaceIf(pred func(T) bool, supplier func() T) int {
	replaced := 0
	current := &l.head
	current.mu.Lock()
	for current.next != nil {
		next := current.next
		next.mu.Lock()
		if pred(next.value) {
			next.value = supplier()
			replaced++
		}
		current.mu.Unlock()
		current = next
	}
	current.mu.Unlock()
	return replaced
}

// FindFirstIf returns the first value satisfying pred, scanning under
// reader locks. ok is false if no value matches.
func (l *List[T]) FindFirstIf(pred func(T) bool) (v T, ok bool) {
	current := &l.head
	current.mu.RLock()
	for current.next != nil {
		next := current.next
		next.mu.RLock()
		if pred(next.value) {
			v = next.value
			next.mu.RUnlock()
			current.mu.RUnlock()
			return v, true
		}
		current.mu.RUnlock()
		current = next
	}
	current.mu.RUnlock()
	return v, false
}

// FindFirstIfForWrite is the mutating-overload counterpart of FindFirstIf:
// it scans under writer locks because the caller may go on to mutate the
// returned value through a handle that aliases list-owned storage.
func (l *List[T]) FindFirstIfForWrite(pred func(T) bool) (v T, ok bool) {
	current := &l.head
	current.mu.Lock()
	for current.next != nil {
		next := current.next
		next.mu.Lock()
		if pred(next.value) {
			v = next.value
			next.mu.Unlock()
			current.mu.Unlock()
			return v, true
		}
		current.mu.Unlock()
		current = next
	}
	current.mu.Unlock()
	return v, false
}

// ForEachRead runs fn on every value in the list under reader locks.
func (l *List[T]) ForEachRead(fn func(T)) {
	current := &l.head
	current.mu.RLock()
	for current.next != nil {
		next := current.next
		next.mu.RLock()
		fn(next.value)
		current.mu.RUnlock()
		current = next
	}
	current.mu.RUnlock()
}

// ForEachWrite runs fn on every value in the list under writer locks,
// allowing fn to mutate the value in place via the pointer it's given.
func (l *List[T]) ForEachWrite(fn func(*T)) {
	current := &l.head
	current.mu.Lock()
	for current.next != nil {
		next := current.next
		next.mu.Lock()
		fn(&next.value)
		current.mu.Unlock()
		current = next
	}
	current.mu.Unlock()
}

// Clear removes every element from the list.
func (l *List[T]) Clear() {
	l.head.mu.Lock()
	for l.head.next != nil {
		toRemove := l.head.next
		toRemove.mu.Lock()
		l.head.next = toRemove.next
		toRemove.mu.Unlock()
		l.size.Add(-1)
	}
	l.head.mu.Unlock()
}

// Size returns the number of elements currently in the list.
//
// size is a dedicated atomic counter, not a value read under a node
// lock: PushFront and Clear work under head's mutex, but RemoveIf
// decrements under whichever node it is positioned at, so no single
// lock is ever held across every mutation site the way head.mu alone
// would need to be. The counter matches the source's
// std::atomic_size_t element count for the same reason.
func (l *List[T]) Size() int {
	return int(l.size.Load())
}

// Empty reports whether the list currently has no elements.
func (l *List[T]) Empty() bool {
	return l.Size() == 0
}

var (
	_ api.Sized     = (*List[int])(nil)
	_ api.Clearable = (*List[int])(nil)
)
