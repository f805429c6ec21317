// File: pool/future.go
// Author: momentics <momentics@gmail.com>
//
// Future is the one-shot handle a submitter uses to retrieve a task's
// result. Go has no std::future analogue, so a done channel closed exactly
// once plays that role: the result is stored in the Future's fields before
// the channel is closed, and every later Wait observes that same result.

package pool

import "github.com/northfold/taskpool/api"

// Future is the result handle returned by Submit.
type Future[R any] struct {
	done  chan struct{}
	value R
	err   error
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

func (f *Future[R]) deliver(v R, err error) {
	f.value = v
	f.err = err
	close(f.done)
}

func (f *Future[R]) abandon() {
	var zero R
	f.deliver(zero, api.ErrFutureAbandoned)
}

// Wait blocks until the task completes (successfully, with an error, or
// abandoned at pool shutdown) and returns its result.
func (f *Future[R]) Wait() (R, error) {
	<-f.done
	return f.value, f.err
}

// ready reports whether the future's result is available, without
// blocking. Used by RunPendingTasks's poll loop.
func (f *Future[R]) ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// anyFuture is the type-erased view of Future[R] that RunPendingTasks
// accepts, since a generic method cannot itself be generic in Go.
type anyFuture interface {
	ready() bool
}

var _ anyFuture = (*Future[int])(nil)
