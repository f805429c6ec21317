// File: pool/pool.go
// Author: momentics <momentics@gmail.com>
//
// Pool is a fixed-size work-stealing thread pool. Each worker owns a local
// LIFO (container.Stack[poolTask]) fed by its own submissions and by
// steals from peers; a single shared FIFO (container.Queue[poolTask])
// absorbs submissions from goroutines that are not workers. A
// container.Hashtable maps a worker goroutine's identity (see
// goroutineid.go) to its worker index, so Submit can tell a worker's own
// submission (hot-cache local push) from an external one (global push)
// without threading an explicit handle through every call site.

package pool

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/northfold/taskpool/api"
	"github.com/northfold/taskpool/container"
)

// poolTask pairs the boxed callable a worker invokes (the container.Task,
// C1) with the cleanup a dropped-at-shutdown task needs to run instead:
// resolving its submitter's Future with api.ErrFutureAbandoned rather than
// leaving it blocked forever.
type poolTask struct {
	task    container.Task
	abandon func()
}

// Pool is a fixed-size work-stealing thread pool.
type Pool struct {
	workers []*workerState
	global  *container.Queue[poolTask]
	// index maps a worker goroutine's identity to its slot in workers.
	// Each worker inserts its own entry once, at its startup in runWorker;
	// entries are not changed after that.
	index *container.Hashtable[int64, int]

	startGate chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup

	submitted atomic.Int64
	completed atomic.Int64
	history   *latencyHistory
}

type workerState struct {
	id    int
	local *container.Stack[poolTask]
	// identity is the goroutine id this worker registered itself under in
	// Pool.index, set once at worker startup (see runWorker).
	identity int64
}

// New constructs a Pool and spawns its workers. Construction in Go cannot
// fail the way a std::thread spawn can (go func(){}() never errors), so
// unlike the source's constructor, New has no error return; a
// less-than-1 worker count falls back to the default count (see
// WithWorkers) rather than being rejected.
func New(opts ...Option) *Pool {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	n := cfg.workers
	if cfg.workers < 0 {
		log.Printf("pool: %v: %d, falling back to the default worker count", api.ErrInvalidWorkerCount, cfg.workers)
		n = 0
	}
	if n == 0 {
		n = runtime.NumCPU() - 1
	}
	if n < 1 {
		n = 1
	}

	p := &Pool{
		global:    container.NewQueue[poolTask](),
		index:     container.NewHashtable[int64, int](workerIndexBuckets(n), hashInt64),
		startGate: make(chan struct{}),
		history:   newLatencyHistory(cfg.historySize),
	}

	p.workers = make([]*workerState, n)
	for i := 0; i < n; i++ {
		p.workers[i] = &workerState{
			id:    i,
			local: container.NewStack[poolTask](),
		}
	}

	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.runWorker(i, cfg.affinity)
	}

	close(p.startGate)
	return p
}

func workerIndexBuckets(n int) int {
	// The smallest listed prime larger than twice the worker count (257
	// once n exceeds 128) keeps the worker-index table's per-bucket chains
	// short without ever rehashing.
	candidates := []int{17, 31, 61, 127, 257}
	for _, c := range candidates {
		if c > n*2 {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

func hashInt64(k int64) uint64 {
	return uint64(k)
}

// NumThreads reports the fixed number of worker goroutines owned by the pool.
func (p *Pool) NumThreads() int {
	return len(p.workers)
}

// Stats returns a point-in-time snapshot of pool activity.
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted:       p.submitted.Load(),
		Completed:       p.completed.Load(),
		NumWorkers:      len(p.workers),
		RecentLatencies: p.history.snapshot(),
	}
}

// Close signals every worker to exit after its current task and waits for
// them to drain. Close does not wait for queued-but-not-started tasks:
// their futures resolve with api.ErrFutureAbandoned.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.wg.Wait()
		p.abandonRemaining()
	})
}

func (p *Pool) abandonRemaining() {
	for {
		pt, ok := p.global.TryPop()
		if !ok {
			break
		}
		pt.abandon()
	}
	for _, w := range p.workers {
		for {
			pt, ok := w.local.TryPop()
			if !ok {
				break
			}
			pt.abandon()
		}
	}
}
