package parallex

import "sync"

// SharedTask is the refcounted, multi-continuation variant of Task used for
// DAG steps (spec.md §3.1b): a compiled DAG step can have several
// dependants, each of which awaits the same underlying computation exactly
// once, and the step's resources are released only once every dependant
// (plus the scheduler itself) has released its reference.
type SharedTask[T any] struct {
	mu    sync.Mutex
	refs  int32
	state taskState
	ready chan struct{}
	cont  []func()

	value T
	err   error

	fn func(ctx Context) (T, error)
}

// NewShared constructs a SharedTask with an initial reference count of 1,
// owned by the caller. The caller must Release its reference when done.
func NewShared[T any](fn func(ctx Context) (T, error)) *SharedTask[T] {
	return &SharedTask[T]{
		ready: make(chan struct{}),
		fn:    fn,
		refs:  1,
	}
}

// Retain increments the reference count and returns the same SharedTask, so
// call sites can write `dep := step.Retain()` at the point they store a
// reference.
func (t *SharedTask[T]) Retain() *SharedTask[T] {
	t.mu.Lock()
	t.refs++
	t.mu.Unlock()
	return t
}

// Release decrements the reference count. It never frees Go memory
// explicitly (the garbage collector does that); it exists so callers can
// reason about "last dependant done with this step" the way the spec's DAG
// step lifecycle does, e.g. to release a pooled scratch buffer a step holds.
func (t *SharedTask[T]) Release() {
	t.mu.Lock()
	t.refs--
	t.mu.Unlock()
}

// Eject starts the underlying computation exactly once, regardless of how
// many goroutines call Eject concurrently.
func (t *SharedTask[T]) Eject(ctx Context) *SharedTask[T] {
	t.mu.Lock()
	if t.state != taskCreated {
		t.mu.Unlock()
		return t
	}
	t.state = taskRunning
	t.mu.Unlock()
	go t.run(ctx)
	return t
}

func (t *SharedTask[T]) run(ctx Context) {
	var v T
	var err error
	if t.fn != nil {
		v, err = t.fn(ctx)
	}
	t.complete(v, err)
}

func (t *SharedTask[T]) complete(v T, err error) {
	t.mu.Lock()
	t.value = v
	t.err = err
	t.state = taskReady
	conts := t.cont
	t.cont = nil
	t.mu.Unlock()
	close(t.ready)
	for _, c := range conts {
		c()
	}
}

func (t *SharedTask[T]) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == taskReady
}

func (t *SharedTask[T]) Suspend(continuation func()) bool {
	t.mu.Lock()
	if t.state == taskReady {
		t.mu.Unlock()
		return false
	}
	t.cont = append(t.cont, continuation)
	t.mu.Unlock()
	return true
}

func (t *SharedTask[T]) Resume() T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

func (t *SharedTask[T]) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *SharedTask[T]) WhenReady() { <-t.ready }

func (t *SharedTask[T]) Await() (T, error) {
	t.WhenReady()
	return t.value, t.err
}

var _ Awaitable[Unit] = (*SharedTask[Unit])(nil)
