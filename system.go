package parallex

import "context"

// Context is the scheduler's opaque dependency-injection bag (spec.md §6:
// "Context: opaque DI container, passed by reference to every System.Run").
// It is a plain alias of context.Context, the way the teacher threads
// context.Context through ExecutionContext and jobRequest: callers get
// cancellation, deadlines, and values for free without the core inventing
// its own container type.
type Context = context.Context

// SystemID names a System within a Stage. Spec.md leaves the identifier
// representation open; a string matches the teacher's SystemDescriptor.Name
// and is what AddExplicitOrder/conflict-error messages print.
type SystemID string

// TickInterval mirrors the teacher's api.go cadence gate: a system only
// runs on ticks where TickIndex % Every == 0 (Every == 0 or 1 means "every
// tick").
type TickInterval struct {
	Every uint64
}

// ShouldRun reports whether a system gated by this interval runs on the
// given tick index.
func (t TickInterval) ShouldRun(tick uint64) bool {
	if t.Every <= 1 {
		return true
	}
	return tick%t.Every == 0
}

// SystemResult is returned by System.Run. A non-nil Err marks a kind-2
// (recoverable, per-system) failure per spec.md §7; RunAll wraps it with
// newSystemError and continues with the remaining independent systems in
// the same DAG level.
type SystemResult struct {
	Err error
}

// ExecutionContext is the per-run handle a System.Run receives: it exposes
// the tick index plus the ambient Logger/Tracer a production system needs.
// Implementations may carry more (e.g. a storage engine's views) for their
// systems to type-assert, without the core depending on any concrete
// storage engine.
type ExecutionContext interface {
	Tick() uint64
	Logger() Logger
	Tracer() Tracer
}

// System is the unit of work scheduled by a Stage (spec.md §5). ID names it
// within its Stage; Access declares the AccessDescriptor list used for
// conflict analysis; RunEvery gates which ticks it runs on; Run performs
// the work.
type System interface {
	ID() SystemID
	Access() []AccessDescriptor
	RunEvery() TickInterval
	Run(ctx Context, exec ExecutionContext) SystemResult
}

// SystemObject is a convenience base a concrete System can embed to get a
// default RunEvery of "every tick", matching the teacher's zero-value
// TickInterval meaning "every tick".
type SystemObject struct {
	Interval TickInterval
}

func (s SystemObject) RunEvery() TickInterval { return s.Interval }

// FuncSystem adapts a plain function plus static metadata into a System,
// for the common case of a system with no extra state, the way the
// teacher's docs/examples register closures via a small adapter.
type FuncSystem struct {
	SystemObject
	IDValue     SystemID
	AccessValue []AccessDescriptor
	RunFunc     func(ctx Context, exec ExecutionContext) SystemResult
}

func (f FuncSystem) ID() SystemID                { return f.IDValue }
func (f FuncSystem) Access() []AccessDescriptor  { return f.AccessValue }
func (f FuncSystem) Run(ctx Context, exec ExecutionContext) SystemResult {
	return f.RunFunc(ctx, exec)
}
