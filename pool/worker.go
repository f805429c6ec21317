// File: pool/worker.go
// Author: momentics <momentics@gmail.com>
//
// Each worker runs a plain loop that repeats runOnce: try its own local
// stack, then the global queue, then steal from peers in circular order
// starting just past its own index; if all three come up empty it yields
// and tries again. There is no blocking wait on the global queue -- per
// spec.md §9's open question, busy-polling-with-yield is kept rather than
// introducing a condition variable that could miss a wakeup during a
// steal race. RunPendingTask (drain.go) reuses runOnce for a single
// attempt instead of looping.

package pool

import (
	"log"
	"runtime"
	"time"

	"github.com/northfold/taskpool/affinity"
)

func (p *Pool) runWorker(idx int, pinAffinity bool) {
	defer p.wg.Done()

	<-p.startGate

	if pinAffinity {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := affinity.SetAffinity(idx % affinity.NumCPU()); err != nil {
			log.Printf("pool: affinity pin failed for worker %d: %v", idx, err)
		}
	}

	w := p.workers[idx]
	w.identity = currentGoroutineID()
	p.index.InsertOrReplace(w.identity, idx)

	for !p.closed.Load() {
		if p.runOnce(idx, true) {
			continue
		}
		runtime.Gosched()
	}
}

// runOnce makes a single attempt to find and execute one task, following
// spec.md §4.6's run_pending_task policy: if the caller has a registered
// worker index, try local -> global -> steal(idx); otherwise global ->
// steal(0). It reports whether it ran a task.
func (p *Pool) runOnce(idx int, hasIdx bool) bool {
	if hasIdx {
		if pt, ok := p.workers[idx].local.TryPop(); ok {
			p.execute(pt)
			return true
		}
	}
	if pt, ok := p.global.TryPop(); ok {
		p.execute(pt)
		return true
	}
	stealIdx := idx
	if !hasIdx {
		stealIdx = 0
	}
	if pt, ok := p.stealFrom(stealIdx); ok {
		p.execute(pt)
		return true
	}
	return false
}

// stealFrom probes peers in circular order starting at (idx+1) mod W,
// stopping at the first successful try-pop. A worker never steals from
// itself through this path -- its own local path already has priority.
func (p *Pool) stealFrom(idx int) (poolTask, bool) {
	w := len(p.workers)
	for i := 1; i < w; i++ {
		victim := (idx + i) % w
		if pt, ok := p.workers[victim].local.TryPop(); ok {
			return pt, true
		}
	}
	return poolTask{}, false
}

func (p *Pool) execute(pt poolTask) {
	if !pt.task.Valid() {
		panic("pool: worker picked up a poolTask wrapping a zero-value Task")
	}
	start := time.Now()
	pt.task.Invoke()
	p.completed.Add(1)
	p.history.record(time.Since(start))
}
