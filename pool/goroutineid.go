// File: pool/goroutineid.go
// Author: momentics <momentics@gmail.com>
//
// The source identifies "am I running on a worker thread" by comparing
// std::this_thread::get_id() against the worker-index hashtable. Go's
// goroutines have no OS thread identity worth comparing -- the runtime
// freely migrates a goroutine between OS threads between blocking calls --
// so each worker instead registers a synthetic identity under
// currentGoroutineID(), the calling goroutine's numeric id parsed out of
// runtime.Stack. This is the standard workaround for the Go runtime's
// deliberate lack of an exported goroutine-id API; it costs one small
// allocation-free stack walk per lookup, paid on every Submit and
// RunPendingTask call.

package pool

import (
	"runtime"
	"strconv"
)

func currentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// The first line looks like "goroutine 123 [running]:".
	b := buf[:n]
	const prefix = "goroutine "
	if len(b) < len(prefix) {
		return -1
	}
	b = b[len(prefix):]
	i := 0
	for i < len(b) && b[i] != ' ' {
		i++
	}
	id, err := strconv.ParseInt(string(b[:i]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
