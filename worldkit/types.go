package worldkit

import "github.com/forgekit/parallex"

// ComponentType names a kind of component. It is the opaque stable
// identifier spec.md §6 expects an external collaborator to supply for
// conflict analysis: TypeID converts it into a parallex.TypeID so a
// System's AccessDescriptor.Section can name "this component type" without
// the core importing worldkit.
type ComponentType string

// TypeID returns the parallex.TypeID for this component type, so systems
// operating on a worldkit.World can build AccessDescriptors directly:
//
//	AccessDescriptor{Source: worldkitSource, Section: t.TypeID(), ReadOnly: true}
//
// ComponentType is a defined string type, so every value shares the same
// reflect.Type; TypeIDFor(t) would collapse all component names onto one
// TypeID. TypeIDForName keys off the string value itself instead.
func (t ComponentType) TypeID() parallex.TypeID {
	return parallex.TypeIDForName(string(t))
}

// Source is the shared AccessDescriptor.Source value for every
// worldkit-backed component access, so conflict analysis groups all
// component accesses into one storage family distinct from any other
// external collaborator a System might also touch (e.g. a named resource).
var Source = parallex.TypeIDOf[ComponentType]()

// ComponentView is the read side of a component store: the opaque "view
// object" spec.md §6 says a System consumes to iterate entities carrying a
// component, without knowing the storage strategy behind it. TypeID exposes
// the same identity a System's AccessDescriptor.Section names, so a caller
// holding a view can self-check it against the access it declared without
// recomputing ComponentType().TypeID() itself.
type ComponentView interface {
	ComponentType() ComponentType
	TypeID() parallex.TypeID
	Len() int
	Has(id EntityID) bool
	Get(id EntityID) (any, bool)
	Iterate(fn func(EntityID, any) bool)
}

// ComponentStore extends ComponentView with the mutations a Command applies.
type ComponentStore interface {
	ComponentView
	Set(id EntityID, value any) error
	Remove(id EntityID) bool
	Clear()
}

// StorageStrategy constructs a ComponentStore for a newly-registered
// component type, the pluggable-backing-store seam worldkit/storage's
// dense and shared strategies implement.
type StorageStrategy interface {
	Name() string
	NewStore(t ComponentType) ComponentStore
}

// StorageProvider owns the registered component stores for a World.
type StorageProvider interface {
	RegisterComponent(t ComponentType, strategy StorageStrategy) error
	View(t ComponentType) (ComponentView, error)
	Apply(world *World, commands []Command) error
}

// ResourceContainer is a simple named-value bag for singleton resources
// (e.g. a shared RNG, a game clock) that aren't per-entity components.
type ResourceContainer interface {
	Get(name string) (any, bool)
	Set(name string, value any)
	Delete(name string)
	Range(fn func(string, any) bool)
}

// Command is a deferred mutation applied to a World after a tick's systems
// have all run, the way CommandBuffer accumulates Commands during a tick
// for conflict-free application afterward.
type Command interface {
	Apply(world *World) error
}

// World is the External ECS Storage Collaborator's root object (SPEC_FULL.md
// §4): entities, registered component stores, and named resources. It
// exists entirely outside the scheduler core; parallex only ever sees it
// through ComponentView/ComponentType.TypeID.
type World struct {
	registry  *EntityRegistry
	storage   StorageProvider
	resources ResourceContainer
}

// AccessDescriptor builds the parallex.AccessDescriptor a System declares
// for its access to component type t, so a collaborator declaring a
// System's static Access() list never has to hand-assemble Source/Section
// itself (Source is always the shared worldkit.Source, Section is always
// t.TypeID()). A package-level function rather than a World method, since
// Access() is declared independently of any particular World instance.
func AccessDescriptor(t ComponentType, readOnly bool) parallex.AccessDescriptor {
	return parallex.AccessDescriptor{Source: Source, Section: t.TypeID(), ReadOnly: readOnly}
}
