package worldkit

import (
	"sync"

	"github.com/forgekit/parallex"
)

// storageProvider keys its stores by the component's parallex.TypeID rather
// than the ComponentType value itself, so registration/lookup routes
// through the same stable identity a System's AccessDescriptor.Section
// already carries for that component (types.go's ComponentType.TypeID),
// instead of a second, independent string-equality scheme.
type storageProvider struct {
	mu     sync.RWMutex
	stores map[parallex.TypeID]ComponentStore
}

func newStorageProvider() *storageProvider {
	return &storageProvider{stores: make(map[parallex.TypeID]ComponentStore)}
}

func (p *storageProvider) RegisterComponent(t ComponentType, strategy StorageStrategy) error {
	if strategy == nil {
		return ErrNilStorageStrategy
	}

	store := strategy.NewStore(t)
	if store == nil {
		return ErrNilComponentStore
	}

	id := t.TypeID()

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.stores[id]; exists {
		return ErrComponentAlreadyRegistered
	}

	p.stores[id] = store
	return nil
}

func (p *storageProvider) View(t ComponentType) (ComponentView, error) {
	id := t.TypeID()

	p.mu.RLock()
	store, ok := p.stores[id]
	p.mu.RUnlock()

	if !ok {
		return nil, ErrComponentNotRegistered
	}

	return store, nil
}

func (p *storageProvider) Apply(world *World, commands []Command) error {
	for _, cmd := range commands {
		if cmd == nil {
			continue
		}
		if err := cmd.Apply(world); err != nil {
			return err
		}
	}
	return nil
}

var _ StorageProvider = (*storageProvider)(nil)
