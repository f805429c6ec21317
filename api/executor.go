// Package api
// Author: momentics
//
// Executor contract for parallel task dispatch. An external consumer such as
// an event dispatcher needs only this much of the pool's surface to hand it
// work; the dispatcher itself is not part of this module.

package api

// Executor abstracts submission of fire-and-forget work to a worker pool.
// *pool.Pool satisfies this trivially via its untyped Submit wrapper.
type Executor interface {
	// Submit schedules fn for execution on some worker and returns an error
	// only if the executor has already been closed.
	Submit(fn func()) error

	// NumWorkers returns the fixed number of worker goroutines.
	NumWorkers() int
}
