// File: pool/drain.go
// Author: momentics <momentics@gmail.com>
//
// RunPendingTasks is the reentrant-drain primitive that makes fork/join
// recursion safe: a worker that just submitted subtasks and is now
// waiting on their futures calls RunPendingTasks instead of blocking, so
// it keeps making progress on other pending work in the meantime. Without
// this, W workers each waiting on a subtask submitted to the same pool
// can deadlock the moment every worker is simultaneously blocked.

package pool

import "runtime"

// RunPendingTask makes one attempt to find and execute a task -- from the
// calling goroutine's own local stack if it is a registered worker, then
// the global queue, then a steal -- and reports whether it found one.
func (p *Pool) RunPendingTask() bool {
	idx, hasIdx := p.index.Get(currentGoroutineID())
	return p.runOnce(idx, hasIdx)
}

// RunPendingTasks calls RunPendingTask repeatedly until f is ready. It
// never blocks on f directly, so a worker parked here still contributes
// work to the pool instead of holding a goroutine idle; an attempt that
// finds nothing to run yields via runtime.Gosched. f is the
// type-erased anyFuture view of a Future[R], since a method cannot itself
// carry a type parameter the way a Future[R] handle does.
func (p *Pool) RunPendingTasks(f anyFuture) {
	for !f.ready() {
		if !p.RunPendingTask() {
			runtime.Gosched()
		}
	}
}
