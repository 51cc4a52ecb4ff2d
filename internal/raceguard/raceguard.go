// Package raceguard provides a debug-only, build-tag-gated assertion helper
// ported from the original's thread validator
// (original_source/engine/include/plex/debug/thread_validator.h): rather
// than asserting every call lands on one fixed OS thread (the C++ original's
// design, predating this port's goroutine-as-coroutine model), Guard asserts
// that no two goroutines hold conflicting access to the same resource
// concurrently. The scheduler enters it around every DAG step's
// System.Run, keyed by each declared access's Source/Section.
//
// Guard is a no-op unless built with -tags raceguard; see guard_enabled.go
// and guard_disabled.go.
package raceguard

// Guard asserts exclusive or shared access to a named resource, matching
// the read/write access rules AccessDescriptor already encodes in the core
// (conflicting accesses must not overlap in time).
type Guard interface {
	// Enter records entry into a critical section for name with the given
	// write flag. It panics if another goroutine is already inside a
	// conflicting section for the same name.
	Enter(name string, write bool) (exit func())
}
