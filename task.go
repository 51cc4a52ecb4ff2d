package parallex

import "sync"

// Unit is the empty value type, used wherever the C++ original's coroutine
// returns void (spec.md §3: "Task<void> is a Task[Unit] in Go").
type Unit struct{}

// Awaitable is the suspend/resume contract every join primitive in this
// package implements (spec.md §3.2). IsReady reports completion without
// blocking. Suspend registers continuation to run exactly once, on whatever
// goroutine eventually completes the awaitable; it returns false (and does
// not register continuation) if the awaitable was already ready, the
// "coroutine suspension was elided" case. Resume returns the produced value
// and must only be called after IsReady (or after continuation has fired).
type Awaitable[T any] interface {
	IsReady() bool
	Suspend(continuation func()) bool
	Resume() T
}

// taskState mirrors spec.md §3.1's lifecycle: created, running, suspended,
// ready. Go's goroutine scheduler owns "running"/"suspended" internally
// (parked on a channel receive); Task only needs to distinguish
// not-yet-started from done.
type taskState int32

const (
	taskCreated taskState = iota
	taskRunning
	taskReady
)

// Task is a one-shot, lazily-started asynchronous computation producing a
// T (spec.md §3: "Task<T>, a one-shot lazy async computation"). Eject
// starts the underlying goroutine; a Task created but never Ejected never
// runs, matching the spec's "lazy" requirement.
type Task[T any] struct {
	mu    sync.Mutex
	state taskState
	ready chan struct{}
	cont  []func()

	value T
	err   error

	fn func(ctx Context) (T, error)
}

// New constructs a Task that will run fn when Ejected. fn receives the
// Context the Task is ejected with.
func New[T any](fn func(ctx Context) (T, error)) *Task[T] {
	return &Task[T]{
		ready: make(chan struct{}),
		fn:    fn,
	}
}

// Value constructs a Task that is immediately ready with v, no goroutine
// ever spawned. Used to lift an already-known result into the Awaitable
// contract (e.g. a WhenAll over zero awaitables, spec.md §3.3's N=0 case).
func Value[T any](v T) *Task[T] {
	t := &Task[T]{ready: make(chan struct{}), state: taskReady, value: v}
	close(t.ready)
	return t
}

// Eject starts the task's underlying goroutine if it has not already been
// started. Calling Eject more than once on the same Task is a no-op after
// the first call, matching "one-shot".
func (t *Task[T]) Eject(ctx Context) *Task[T] {
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

func (t *Task[T]) run(ctx Context) {
	var v T
	var err error
	if t.fn != nil {
		v, err = t.fn(ctx)
	}
	t.complete(v, err)
}

// complete marks the task ready and invokes every registered continuation
// on the calling goroutine — the goroutine that produced the result, per
// spec.md §3.2's "resumed on the thread that effected completion".
func (t *Task[T]) complete(v T, err error) {
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

// IsReady implements Awaitable.
func (t *Task[T]) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == taskReady
}

// Suspend implements Awaitable: it registers continuation to run when the
// task completes, returning false (without registering) if the task is
// already ready.
func (t *Task[T]) Suspend(continuation func()) bool {
	t.mu.Lock()
	if t.state == taskReady {
		t.mu.Unlock()
		return false
	}
	t.cont = append(t.cont, continuation)
	t.mu.Unlock()
	return true
}

// Resume implements Awaitable: it returns the task's produced value. Callers
// must ensure the task is ready (via IsReady or a completed Suspend
// continuation) before calling Resume.
func (t *Task[T]) Resume() T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// Err returns the error produced by the task's function, if any. Valid only
// once the task is ready.
func (t *Task[T]) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Poll returns the task's value and error without blocking, and whether the
// task was ready at the time of the call.
func (t *Task[T]) Poll() (value T, err error, ready bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != taskReady {
		return value, nil, false
	}
	return t.value, t.err, true
}

// WhenReady blocks the calling goroutine until the task completes. It is the
// one OS-thread-blocking primitive exposed directly on Task, layered the
// same way SyncWait is layered on top of Awaitable: a plain channel receive,
// no condition variable needed since ready is closed exactly once.
func (t *Task[T]) WhenReady() {
	<-t.ready
}

// Await blocks until the task is ready and returns its result, combining
// WhenReady and Poll. It is a convenience for code that has a Context but
// does not need cooperative suspension (e.g. top-level glue, tests).
func (t *Task[T]) Await() (T, error) {
	t.WhenReady()
	return t.value, t.err
}

var _ Awaitable[Unit] = (*Task[Unit])(nil)
