// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT
//
// Generic object pool used internally to recycle Stack and Queue node
// allocations instead of round-tripping through the GC on every
// push/pop under heavy contention.

package objpool

import (
	"sync"

	"github.com/northfold/taskpool/api"
)

// SyncPool wraps sync.Pool for generic usage, satisfying api.ObjectPool[T].
type SyncPool[T any] struct {
	pool *sync.Pool
}

var _ api.ObjectPool[int] = (*SyncPool[int])(nil)

// NewSyncPool creates a new SyncPool with a creator function.
func NewSyncPool[T any](creator func() T) *SyncPool[T] {
	return &SyncPool[T]{
		pool: &sync.Pool{New: func() any { return creator() }},
	}
}

func (sp *SyncPool[T]) Get() T {
	return sp.pool.Get().(T)
}

func (sp *SyncPool[T]) Put(obj T) {
	sp.pool.Put(obj)
}
