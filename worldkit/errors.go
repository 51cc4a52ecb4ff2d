package worldkit

import "errors"

var (
	// ErrComponentAlreadyRegistered indicates an attempt to register the same component twice.
	ErrComponentAlreadyRegistered = errors.New("ecs: component already registered")
	// ErrComponentNotRegistered signals lookup on an unknown component type.
	ErrComponentNotRegistered = errors.New("ecs: component not registered")
	// ErrNilStorageStrategy is returned when storage registration receives a nil strategy.
	ErrNilStorageStrategy = errors.New("ecs: nil storage strategy")
	// ErrNilComponentStore is returned when a strategy produces a nil store.
	ErrNilComponentStore = errors.New("ecs: strategy returned nil store")
	// ErrZeroEntity is returned when a Command targets the zero EntityID.
	ErrZeroEntity = errors.New("ecs: zero entity")
	// ErrStaleEntity is returned when the destroy Command targets an entity
	// whose generation no longer matches the registry (already destroyed,
	// or never allocated).
	ErrStaleEntity = errors.New("ecs: stale entity")
	// ErrComponentNotWritable is returned when a registered ComponentView
	// does not also implement ComponentStore (no registered strategy should
	// produce this; it guards against a malformed StorageProvider).
	ErrComponentNotWritable = errors.New("ecs: component not writable")
)
