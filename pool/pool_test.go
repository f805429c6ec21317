package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_NoLostWork(t *testing.T) {
	p := New(WithWorkers(4))
	defer p.Close()

	const m = 2000
	var completed atomic.Int64
	futures := make([]*Future[struct{}], m)
	for i := 0; i < m; i++ {
		futures[i] = Submit(p, func() struct{} {
			completed.Add(1)
			return struct{}{}
		})
	}
	for _, f := range futures {
		if _, err := f.Wait(); err != nil {
			t.Fatalf("unexpected task error: %v", err)
		}
	}
	if completed.Load() != m {
		t.Fatalf("expected %d completions, got %d", m, completed.Load())
	}
}

// TestPool_StealProgress is the literal invariant from spec.md §8: with W
// workers and only one populated local stack holding T tasks, all T tasks
// eventually complete. A single top-level task runs on whichever worker
// picks it up, then pushes all T subtasks -- those land on that one
// worker's local stack, never the global queue, so they are served only by
// that worker's own loop and by the other W-1 workers stealing from it.
func TestPool_StealProgress(t *testing.T) {
	p := New(WithWorkers(4))
	defer p.Close()

	const tasksPerBatch = 500
	var completed atomic.Int64
	var wg sync.WaitGroup
	wg.Add(tasksPerBatch)

	seed := Submit(p, func() struct{} {
		for i := 0; i < tasksPerBatch; i++ {
			Submit(p, func() struct{} {
				completed.Add(1)
				wg.Done()
				return struct{}{}
			})
		}
		return struct{}{}
	})
	seed.Wait()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("steal progress stalled: %d/%d completed", completed.Load(), tasksPerBatch)
	}
}

// TestPool_ReentrantDrainAvoidsDeadlock is the literal reentrant-drain
// scenario: each of W workers recursively submits two subtasks and waits
// on them via RunPendingTasks; without the reentrant drain all W workers
// could end up simultaneously blocked on their own forks.
func TestPool_ReentrantDrainAvoidsDeadlock(t *testing.T) {
	const workers = 4
	p := New(WithWorkers(workers))
	defer p.Close()

	var outer sync.WaitGroup
	outer.Add(workers)
	for i := 0; i < workers; i++ {
		f := Submit(p, func() int {
			a := Submit(p, func() int { return 1 })
			b := Submit(p, func() int { return 2 })
			p.RunPendingTasks(a)
			p.RunPendingTasks(b)
			av, _ := a.Wait()
			bv, _ := b.Wait()
			return av + bv
		})
		go func(f *Future[int]) {
			defer outer.Done()
			v, err := f.Wait()
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if v != 3 {
				t.Errorf("expected 3, got %d", v)
			}
		}(f)
	}

	done := make(chan struct{})
	go func() {
		outer.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("reentrant drain did not avoid deadlock within timeout")
	}
}

// TestPool_WorkerExceptionIsolation is end-to-end scenario 5: T1 panics,
// T0 and T2 still deliver their results, and the pool remains usable
// afterward.
func TestPool_WorkerExceptionIsolation(t *testing.T) {
	p := New(WithWorkers(2))
	defer p.Close()

	t0 := Submit(p, func() int { return 7 })
	t1 := Submit(p, func() int { panic("boom") })
	t2 := Submit(p, func() int { return 9 })

	v0, err0 := t0.Wait()
	if err0 != nil || v0 != 7 {
		t.Fatalf("expected (7, nil), got (%d, %v)", v0, err0)
	}

	_, err1 := t1.Wait()
	if err1 == nil {
		t.Fatal("expected T1's future to deliver an error")
	}

	v2, err2 := t2.Wait()
	if err2 != nil || v2 != 9 {
		t.Fatalf("expected (9, nil), got (%d, %v)", v2, err2)
	}

	t3 := Submit(p, func() int { return 42 })
	v3, err3 := t3.Wait()
	if err3 != nil || v3 != 42 {
		t.Fatalf("expected pool to remain usable: got (%d, %v)", v3, err3)
	}
}

// TestPool_NonWorkerSubmissionPath is end-to-end scenario 6: from a
// goroutine not registered in the worker-index map, submit 10000 trivial
// tasks; all complete, and the global queue empties back out.
func TestPool_NonWorkerSubmissionPath(t *testing.T) {
	p := New(WithWorkers(4))
	defer p.Close()

	const m = 10000
	var sideEffect atomic.Int64
	futures := make([]*Future[struct{}], m)
	for i := 0; i < m; i++ {
		futures[i] = Submit(p, func() struct{} {
			sideEffect.Add(1)
			return struct{}{}
		})
	}
	for _, f := range futures {
		if _, err := f.Wait(); err != nil {
			t.Fatalf("unexpected task error: %v", err)
		}
	}

	if sideEffect.Load() != m {
		t.Fatalf("expected side effect %d, got %d", m, sideEffect.Load())
	}
	if p.global.Size() != 0 {
		t.Fatalf("expected global queue to drain to 0, got %d", p.global.Size())
	}
}

func TestPool_NumThreadsReflectsConfiguredWorkers(t *testing.T) {
	p := New(WithWorkers(6))
	defer p.Close()
	if p.NumThreads() != 6 {
		t.Fatalf("expected 6 worker threads, got %d", p.NumThreads())
	}
}

func TestPool_DefaultWorkerCountIsHardwareConcurrencyMinusOne(t *testing.T) {
	p := New()
	defer p.Close()
	want := runtime.NumCPU() - 1
	if want < 1 {
		want = 1
	}
	if p.NumThreads() != want {
		t.Fatalf("expected %d workers (runtime.NumCPU()-1, at least 1), got %d", want, p.NumThreads())
	}
}

func TestPool_CloseAbandonsQueuedTasks(t *testing.T) {
	p := New(WithWorkers(1))

	// Occupy the one worker with a task that blocks until told to
	// proceed, so the second submission queues up behind it on the
	// global queue (submitted from this non-worker goroutine) instead of
	// running immediately.
	block := make(chan struct{})
	started := make(chan struct{})
	Submit(p, func() struct{} {
		close(started)
		<-block
		return struct{}{}
	})
	<-started

	stuck := Submit(p, func() struct{} { return struct{}{} })

	closeDone := make(chan struct{})
	go func() {
		p.Close()
		close(closeDone)
	}()

	// Close sets the closed flag as its first action, before it blocks
	// waiting for the occupied worker to finish. Give that store a head
	// start before unblocking the worker, so the worker's next loop
	// iteration observes the closed flag and never touches the
	// still-queued stuck task.
	time.Sleep(50 * time.Millisecond)
	close(block)
	<-closeDone

	_, err := stuck.Wait()
	if err == nil {
		t.Fatal("expected abandoned future to report an error after Close")
	}
}
