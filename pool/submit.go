// File: pool/submit.go
// Author: momentics <momentics@gmail.com>
//
// Submit wraps a callable into a Future and a container.Task, then routes
// it per spec.md §4.6: if the calling goroutine is a registered worker,
// push onto that worker's own local stack (hot-cache path, LIFO so the
// most recently produced subtask is the next one that worker picks back
// up); otherwise push onto the shared global queue.

package pool

import (
	"github.com/northfold/taskpool/api"
	"github.com/northfold/taskpool/container"
)

// Submit schedules fn for execution and returns a handle for its result.
// fn's panics are recovered and delivered to the Future as an error
// instead of crashing the worker, matching spec.md §7's "user-callable
// error" class.
func Submit[R any](p *Pool, fn func() R) *Future[R] {
	future := newFuture[R]()
	p.submitted.Add(1)

	runFn := func() {
		defer func() {
			if r := recover(); r != nil {
				var zero R
				future.deliver(zero, api.NewError(api.ErrCodeTaskPanic, errString(r)))
			}
		}()
		future.deliver(fn(), nil)
	}

	pt := poolTask{
		task:    container.NewTask(runFn),
		abandon: future.abandon,
	}

	if p.closed.Load() {
		pt.abandon()
		return future
	}

	if idx, ok := p.index.Get(currentGoroutineID()); ok {
		p.workers[idx].local.Push(pt)
	} else {
		p.global.Push(pt)
	}

	return future
}

func errString(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "panic in submitted task"
}
