// File: container/queue.go
// Author: momentics <momentics@gmail.com>
//
// Queue is a two-lock Michael-Scott-style FIFO with a dummy tail node, used
// as pool.Pool's single global queue for tasks submitted from non-worker
// goroutines. Splitting head and tail mutexes lets a concurrent push and pop
// proceed without contending on the same lock whenever the queue holds two
// or more elements.

package container

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/northfold/taskpool/api"
	"github.com/northfold/taskpool/internal/objpool"
)

type queueNode[T any] struct {
	value T
	next  *queueNode[T]
}

// Queue is a thread-safe FIFO queue of T.
//
// Invariants: tail.next == nil; head == tail iff the queue is empty. Pushes
// link under tailMu and take headMu only briefly, after releasing tailMu, to
// signal waiters; pops hold headMu and take tailMu only briefly to read tail.
type Queue[T any] struct {
	headMu   sync.Mutex
	tailMu   sync.Mutex
	cond     *sync.Cond
	head     *queueNode[T]
	tail     *queueNode[T]
	size     atomic.Int64
	nodePool *objpool.SyncPool[*queueNode[T]]
}

// NewQueue constructs an empty Queue with a dummy tail node.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{
		nodePool: objpool.NewSyncPool(func() *queueNode[T] { return &queueNode[T]{} }),
	}
	dummy := &queueNode[T]{}
	q.head, q.tail = dummy, dummy
	q.cond = sync.NewCond(&q.headMu)
	return q
}

func (q *Queue[T]) getTail() *queueNode[T] {
	q.tailMu.Lock()
	defer q.tailMu.Unlock()
	return q.tail
}

// Push adds a new value to the tail of the queue and wakes one waiter, if any.
func (q *Queue[T]) Push(v T) {
	dummy := q.nodePool.Get()
	q.tailMu.Lock()
	q.tail.value = v
	q.tail.next = dummy
	q.tail = dummy
	q.size.Add(1)
	q.tailMu.Unlock()

	q.headMu.Lock()
	q.headMu.Unlock()
	q.cond.Signal()
}

// TryPop removes and returns the value at the head of the queue. ok is
// false if the queue is empty -- it never blocks.
func (q *Queue[T]) TryPop() (v T, ok bool) {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	if q.head == q.getTail() {
		return v, false
	}
	return q.popLocked(), true
}

// WaitAndPop blocks until a value is available or ctx is cancelled.
func (q *Queue[T]) WaitAndPop(ctx context.Context) (v T, ok bool) {
	q.headMu.Lock()
	defer q.headMu.Unlock()

	if ctx != nil && ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			q.headMu.Lock()
			q.headMu.Unlock()
			q.cond.Broadcast()
		})
		defer stop()
	}

	for q.head == q.getTail() {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return v, false
			default:
			}
		}
		q.cond.Wait()
	}
	return q.popLocked(), true
}

// popLocked requires headMu to be held and head != tail. The retired head
// node is returned to nodePool, the same allocation-recycling the dummy
// tail node already gets in Push.
func (q *Queue[T]) popLocked() T {
	old := q.head
	q.head = old.next
	q.size.Add(-1)
	v := old.value
	var zero T
	old.value = zero
	old.next = nil
	q.nodePool.Put(old)
	return v
}

// Clear removes every element from the queue.
func (q *Queue[T]) Clear() {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	q.tailMu.Lock()
	defer q.tailMu.Unlock()
	for q.head != q.tail {
		q.popLocked()
	}
}

// Size returns the number of elements currently in the queue.
func (q *Queue[T]) Size() int {
	return int(q.size.Load())
}

// Empty reports whether the queue currently has no elements.
func (q *Queue[T]) Empty() bool {
	return q.Size() == 0
}

var (
	_ api.Sized     = (*Queue[int])(nil)
	_ api.Clearable = (*Queue[int])(nil)
)
