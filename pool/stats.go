// File: pool/stats.go
// Author: momentics <momentics@gmail.com>
//
// Stats is an ambient observability feature, not part of the core C6
// contract: an optional rolling history of completed-task latencies,
// backed by eapache/queue's ring buffer so the history drops its oldest
// sample in O(1) instead of reslicing. Disabled unless WithTaskHistory is
// passed to New.

package pool

import (
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/northfold/taskpool/api"
)

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Submitted  int64
	Completed  int64
	NumWorkers int
	// RecentLatencies holds up to the configured history size of the most
	// recently completed tasks' run durations, oldest first. Empty if task
	// history was not enabled via WithTaskHistory.
	RecentLatencies []time.Duration
}

// QueueDepths reports the current size of the global queue and of each
// worker's local stack, addressed generically through api.Sized rather
// than the containers' concrete generic types.
func (p *Pool) QueueDepths() (global int, local []int) {
	global = sizeOf(p.global)
	local = make([]int, len(p.workers))
	for i, w := range p.workers {
		local[i] = sizeOf(w.local)
	}
	return global, local
}

func sizeOf(c api.Sized) int {
	return c.Size()
}

type latencyHistory struct {
	mu       sync.Mutex
	q        *queue.Queue
	capacity int
}

func newLatencyHistory(capacity int) *latencyHistory {
	if capacity <= 0 {
		return nil
	}
	return &latencyHistory{q: queue.New(), capacity: capacity}
}

func (h *latencyHistory) record(d time.Duration) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.q.Add(d)
	for h.q.Length() > h.capacity {
		h.q.Remove()
	}
}

func (h *latencyHistory) snapshot() []time.Duration {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]time.Duration, h.q.Length())
	for i := range out {
		out[i] = h.q.Get(i).(time.Duration)
	}
	return out
}
