// File: container/task.go
// Author: momentics <momentics@gmail.com>
//
// Task is a type-erased, no-argument, one-shot callable. It is the unit of
// work stored in Stack[Task] and Queue[Task] inside pool.Pool.

package container

// Task wraps one heterogeneous callable behind a single field so that
// Stack[Task] and Queue[Task] can hold arbitrary submitted work without
// knowing its concrete type. The wrapped closure is never required to be
// comparable or movable on its own -- Task itself is an ordinary struct and
// is "moved" by plain assignment, the boxed closure underneath never moves.
//
// A Task must be invoked at most once. Invoking a zero-value Task panics.
type Task struct {
	run func()
}

// NewTask constructs a Task from any no-argument callable.
func NewTask(fn func()) Task {
	if fn == nil {
		panic("container: NewTask called with a nil callable")
	}
	return Task{run: fn}
}

// Invoke runs the wrapped callable. Calling Invoke on a zero-value Task, or
// invoking the same Task twice concurrently, is a contract violation and
// left unspecified by design (see spec's error taxonomy) -- Invoke does not
// guard against it.
func (t Task) Invoke() {
	t.run()
}

// Valid reports whether the Task wraps a callable (false for the zero value).
func (t Task) Valid() bool {
	return t.run != nil
}
