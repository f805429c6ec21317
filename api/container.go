// File: api/container.go
// Author: momentics <momentics@gmail.com>
//
// Common contract shared by every concurrent container in container/. Not
// strictly required by any one container's generic type, but documents the
// shape a caller can rely on across Stack, Queue, List and Hashtable.

package api

// Sized is implemented by every concurrent container: Size and Empty are
// consistent with the node chain under the container's own lock, never an
// approximation.
type Sized interface {
	Size() int
	Empty() bool
}

// Clearable is implemented by every concurrent container.
type Clearable interface {
	Clear()
}
