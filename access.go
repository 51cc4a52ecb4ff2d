package parallex

import "reflect"

// TypeID is a stable, comparable identifier for a resource "section" (a
// component type, a shared resource, anything a System declares access to).
// Spec.md §4.1 calls for "an opaque stable identifier ... compared for
// equality only"; reflect.Type already satisfies Go's comparable contract
// and is stable for the lifetime of a process, so TypeID simply wraps it
// rather than minting a parallel identity scheme.
type TypeID struct {
	t    reflect.Type
	name string
}

// Wildcard is the zero-value TypeID. Used as a Section, it matches every
// Section of the same Source (including another Wildcard), the way a
// system declaring access to a whole source overlaps every part of it. As
// a Source it only equals another Wildcard Source.
var Wildcard TypeID

// TypeIDOf returns the TypeID for the static type T.
func TypeIDOf[T any]() TypeID {
	var zero T
	return TypeID{t: reflect.TypeOf(zero)}
}

// TypeIDFor returns the TypeID for the dynamic type of v. Useful when a
// collaborator (e.g. worldkit.ComponentType) only has a runtime value to
// identify, not a static Go type.
func TypeIDFor(v any) TypeID {
	return TypeID{t: reflect.TypeOf(v)}
}

// TypeIDForName returns the TypeID identified by name rather than by Go
// type. Collaborators whose distinct identities collapse to a single Go
// type under reflect.TypeOf (e.g. worldkit.ComponentType, a defined string
// type where every component name shares one reflect.Type) must mint their
// TypeID from the runtime name instead of TypeIDFor.
func TypeIDForName(name string) TypeID {
	return TypeID{name: name}
}

func (id TypeID) String() string {
	if id.name != "" {
		return id.name
	}
	if id.t == nil {
		return "*"
	}
	return id.t.String()
}

// AccessDescriptor declares one System's access to one resource section, the
// unit spec.md §4 builds conflict analysis from.
type AccessDescriptor struct {
	// Source identifies the storage/resource family (e.g. "this is a
	// worldkit component store" vs "this is a named shared resource").
	Source TypeID
	// Section identifies the specific resource within Source (a component
	// type, a resource key's TypeID, ...).
	Section TypeID
	// ReadOnly marks a read access. Two read accesses to the same
	// Source/Section never conflict.
	ReadOnly bool
	// ThreadSafe marks an access whose underlying storage is safe to read
	// and write concurrently from multiple systems without scheduler-level
	// exclusion (spec.md §4.4's escape hatch for lock-free/atomic stores).
	ThreadSafe bool
}

// Conflict reports whether two access descriptors must not run concurrently,
// per spec.md §4.4's canonical rule: descriptors to different Source/Section
// pairs never conflict; the Wildcard Section conflicts with everything in
// the same Source; two read-only accesses never conflict; an access marked
// ThreadSafe on EITHER side suppresses the conflict (the side making the
// claim is vouching that its own store tolerates concurrent use); otherwise,
// a write involved on either side conflicts.
func Conflict(a, b AccessDescriptor) bool {
	if a.Source != b.Source {
		return false
	}
	if a.Section != Wildcard && b.Section != Wildcard && a.Section != b.Section {
		return false
	}
	if a.ReadOnly && b.ReadOnly {
		return false
	}
	if a.ThreadSafe || b.ThreadSafe {
		return false
	}
	return true
}

// SystemConflict reports whether any descriptor in a conflicts with any
// descriptor in b. A system's declared access list is treated as a set of
// independent descriptors, matching spec.md §5's "a system declares a list
// of AccessDescriptors".
func SystemConflict(a, b []AccessDescriptor) bool {
	for _, da := range a {
		for _, db := range b {
			if Conflict(da, db) {
				return true
			}
		}
	}
	return false
}
