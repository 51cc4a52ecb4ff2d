package parallex

// Joinable is the minimal interface WhenAll needs from each participant: an
// Awaitable over Unit that can be Ejected to start running. *Task[T] and
// *SharedTask[T] both satisfy it via a thin adapter (see joinView), so
// WhenAll can join heterogeneous Task[T] instances without forcing a
// common T.
type Joinable interface {
	Awaitable[Unit]
	eject(ctx Context)
}

// joinView adapts a *Task[T] to Joinable (sharedJoinView below does the same
// for *SharedTask[T]), erasing T the
// way spec.md §3.3 describes WhenAll as joining "a heterogeneous list of
// awaitables, discarding their individual result types".
type joinView[T any] struct {
	t *Task[T]
}

func (v joinView[T]) IsReady() bool                   { return v.t.IsReady() }
func (v joinView[T]) Suspend(continuation func()) bool { return v.t.Suspend(continuation) }
func (v joinView[T]) Resume() Unit                     { return Unit{} }
func (v joinView[T]) eject(ctx Context)                { v.t.Eject(ctx) }

// Joinable wraps t for use with WhenAll.
func (t *Task[T]) Joinable() Joinable { return joinView[T]{t: t} }

type sharedJoinView[T any] struct {
	t *SharedTask[T]
}

func (v sharedJoinView[T]) IsReady() bool                   { return v.t.IsReady() }
func (v sharedJoinView[T]) Suspend(continuation func()) bool { return v.t.Suspend(continuation) }
func (v sharedJoinView[T]) Resume() Unit                     { return Unit{} }
func (v sharedJoinView[T]) eject(ctx Context)                { v.t.Eject(ctx) }

// Joinable wraps t for use with WhenAll.
func (t *SharedTask[T]) Joinable() Joinable { return sharedJoinView[T]{t: t} }

// WhenAll returns a Task[Unit] that completes once every awaitable in items
// has completed (spec.md §3.3). It special-cases small N the way the
// original does:
//   - N==0: an already-ready task, no goroutine spawned.
//   - N==1: the single item is simply ejected and awaited directly.
//   - N==2: a FlagTrigger is used instead of a counter, and the second
//     arrival resumes inline rather than scheduling an extra trigger task
//     (original_source/engine/include/genebits/engine/parallel/when_all.h).
//   - N>2: a CounterTrigger fans in one "trigger" continuation per item.
func WhenAll(items ...Joinable) *Task[Unit] {
	switch len(items) {
	case 0:
		return Value(Unit{})
	case 1:
		item := items[0]
		return New(func(ctx Context) (Unit, error) {
			item.eject(ctx)
			if !item.IsReady() {
				done := make(chan struct{})
				if item.Suspend(func() { close(done) }) {
					<-done
				}
			}
			return Unit{}, nil
		})
	case 2:
		a, b := items[0], items[1]
		return New(func(ctx Context) (Unit, error) {
			flag := NewFlagTrigger()
			done := make(chan struct{})
			flag.Suspend(func() { close(done) })
			a.eject(ctx)
			b.eject(ctx)
			notify := func(item Joinable) {
				if item.IsReady() || !item.Suspend(func() { flag.Notify() }) {
					flag.Notify()
				}
			}
			notify(a)
			notify(b)
			<-done
			return Unit{}, nil
		})
	default:
		list := items
		return New(func(ctx Context) (Unit, error) {
			counter := NewCounterTrigger(len(list))
			for _, item := range list {
				item.eject(ctx)
				it := item
				if it.IsReady() || !it.Suspend(func() { counter.Notify() }) {
					counter.Notify()
				}
			}
			if !counter.IsReady() {
				done := make(chan struct{})
				if counter.Suspend(func() { close(done) }) {
					<-done
				}
			}
			return Unit{}, nil
		})
	}
}
