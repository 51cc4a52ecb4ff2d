//go:build raceguard

package raceguard

import (
	"fmt"
	"sync"
)

type section struct {
	writers int
	readers int
}

type mapGuard struct {
	mu       sync.Mutex
	sections map[string]*section
}

// New constructs the enabled Guard implementation, active only in builds
// compiled with -tags raceguard.
func New() Guard {
	return &mapGuard{sections: make(map[string]*section)}
}

func (g *mapGuard) Enter(name string, write bool) func() {
	g.mu.Lock()
	s, ok := g.sections[name]
	if !ok {
		s = &section{}
		g.sections[name] = s
	}
	if write {
		if s.writers > 0 || s.readers > 0 {
			g.mu.Unlock()
			panic(fmt.Sprintf("raceguard: concurrent conflicting access to %q", name))
		}
		s.writers++
	} else {
		if s.writers > 0 {
			g.mu.Unlock()
			panic(fmt.Sprintf("raceguard: concurrent conflicting access to %q", name))
		}
		s.readers++
	}
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		if write {
			s.writers--
		} else {
			s.readers--
		}
		g.mu.Unlock()
	}
}
