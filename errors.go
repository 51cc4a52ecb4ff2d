package parallex

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for conditions spec.md §7 calls out as matchable via
// errors.Is. Kept flat, one per condition, the way the teacher's own
// errors.go (now worldkit/errors.go) lists its sentinels.
var (
	// ErrPoolClosed names scheduling onto a ThreadPool that has already been
	// shut down. Kind 3 (fatal, unexpected) per spec.md §7. No function in
	// this package returns it: ThreadPool.Schedule's awaiter reports the
	// condition by Suspend returning false.
	ErrPoolClosed = errors.New("parallex: thread pool closed")

	// ErrSchedulerEmpty is returned by Scheduler.RunAll when no stages have
	// been registered.
	ErrSchedulerEmpty = errors.New("parallex: scheduler has no stages")

	// ErrDuplicateSystemID is returned by Stage.AddSystem when a system with
	// the same SystemID has already been added to the stage.
	ErrDuplicateSystemID = errors.New("parallex: duplicate system id in stage")

	// ErrUnknownSystemID is returned by Stage.AddExplicitOrder when either
	// endpoint does not name a system already added to the stage.
	ErrUnknownSystemID = errors.New("parallex: explicit order references unknown system id")
)

// CycleError reports a cycle detected during DAG compilation (spec.md §6,
// kind 1: fatal, unexpected).
type CycleError struct {
	// Cycle lists the SystemIDs participating in the detected cycle, in
	// discovery order. Not guaranteed to be the shortest cycle.
	Cycle []SystemID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("parallex: dependency cycle detected among systems %v", e.Cycle)
}

// newCycleError wraps a *CycleError with a stack trace via pkg/errors, the
// way 88lin-divinesense wraps its own fatal repository-layer errors: kind
// 1/3 errors are unexpected by construction, so a caller debugging a cycle
// gets a frame pointing into CompileDAG rather than just the error string.
func newCycleError(cycle []SystemID) error {
	return errors.WithStack(&CycleError{Cycle: cycle})
}

// SystemError wraps a single System's Run failure (spec.md §7, kind 2:
// recoverable, per-system). Unlike CycleError and ErrPoolClosed, it is
// deliberately left un-stacktraced and %w-wrapped so errors.Is/errors.As
// keep working against whatever sentinel the System itself returned.
type SystemError struct {
	SystemID SystemID
	Err      error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("parallex: system %q failed: %v", e.SystemID, e.Err)
}

func (e *SystemError) Unwrap() error { return e.Err }

func newSystemError(id SystemID, err error) error {
	if err == nil {
		return nil
	}
	return &SystemError{SystemID: id, Err: err}
}
