// File: container/stack.go
// Author: momentics <momentics@gmail.com>
//
// Stack is a single-lock LIFO used as each worker's local task queue in
// pool.Pool, preferred over a FIFO so a worker's freshly-submitted subtasks
// (still warm in that worker's cache) are the first ones it picks back up.

package container

import (
	"context"
	"sync"

	"github.com/northfold/taskpool/api"
	"github.com/northfold/taskpool/internal/objpool"
)

type stackNode[T any] struct {
	value T
	next  *stackNode[T]
}

// Stack is a thread-safe LIFO stack of T.
//
// Invariant: top == nil iff the stack is empty; traversing top.next always
// terminates at the bottom node.
type Stack[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	top      *stackNode[T]
	size     int
	nodePool *objpool.SyncPool[*stackNode[T]]
}

// NewStack constructs an empty Stack.
func NewStack[T any]() *Stack[T] {
	s := &Stack[T]{
		nodePool: objpool.NewSyncPool(func() *stackNode[T] { return &stackNode[T]{} }),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Push adds a new value to the top of the stack and wakes one waiter, if any.
func (s *Stack[T]) Push(v T) {
	n := s.nodePool.Get()
	n.value = v
	s.mu.Lock()
	n.next = s.top
	s.top = n
	s.size++
	s.mu.Unlock()
	s.cond.Signal()
}

// TryPop removes and returns the top value. ok is false if the stack is
// empty -- it never blocks.
func (s *Stack[T]) TryPop() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.top == nil {
		return v, false
	}
	return s.popLocked(), true
}

// WaitAndPop blocks until a value is available or ctx is cancelled. The
// FIFO order of multiple waiters woken by the same Push is not guaranteed
// (spurious wakeups are tolerated, matching the source condition_variable
// contract).
func (s *Stack[T]) WaitAndPop(ctx context.Context) (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx != nil && ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			s.mu.Lock()
			s.mu.Unlock()
			s.cond.Broadcast()
		})
		defer stop()
	}

	for s.top == nil {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return v, false
			default:
			}
		}
		s.cond.Wait()
	}
	return s.popLocked(), true
}

// popLocked requires mu to be held and top != nil. The popped node is
// returned to nodePool once its value has been lifted out, so a
// Push/TryPop cycle under steady load reuses node allocations instead of
// round-tripping through the garbage collector.
func (s *Stack[T]) popLocked() T {
	n := s.top
	s.top = n.next
	s.size--
	v := n.value
	var zero T
	n.value = zero
	n.next = nil
	s.nodePool.Put(n)
	return v
}

// Clear removes every element from the stack.
func (s *Stack[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.top != nil {
		n := s.top
		s.top = n.next
		var zero T
		n.value = zero
		n.next = nil
		s.nodePool.Put(n)
	}
	s.size = 0
}

// Size returns the number of elements currently on the stack.
func (s *Stack[T]) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Empty reports whether the stack currently has no elements.
func (s *Stack[T]) Empty() bool {
	return s.Size() == 0
}

var (
	_ api.Sized     = (*Stack[int])(nil)
	_ api.Clearable = (*Stack[int])(nil)
)
