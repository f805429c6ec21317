// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines the generic object-pool abstraction used to recycle internal
// container node allocations.

package api

// ObjectPool provides generic pooling of Go objects allocated transiently.
type ObjectPool[T any] interface {
	// Get returns an available instance from the pool.
	Get() T

	// Put returns an instance for reuse.
	Put(obj T)
}
