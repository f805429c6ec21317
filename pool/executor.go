// File: pool/executor.go
// Author: momentics <momentics@gmail.com>
//
// (*Pool).Submit is the untyped fire-and-forget entry point satisfying
// api.Executor, for callers that don't need a result handle. The generic
// Submit[R] function (submit.go) is the typed entry point -- Go methods
// cannot themselves carry type parameters, so the generic form has to be
// a package-level function taking *Pool explicitly.

package pool

import "github.com/northfold/taskpool/api"

// Submit schedules fn for execution, discarding its result. It satisfies
// api.Executor.
func (p *Pool) Submit(fn func()) error {
	if p.closed.Load() {
		return api.ErrPoolClosed
	}
	_ = Submit(p, func() struct{} {
		fn()
		return struct{}{}
	})
	return nil
}

// NumWorkers satisfies api.Executor; it is an alias for NumThreads.
func (p *Pool) NumWorkers() int {
	return p.NumThreads()
}

var _ api.Executor = (*Pool)(nil)
