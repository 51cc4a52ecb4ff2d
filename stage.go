package parallex

// Stage is a named registry of systems plus any explicit ordering
// constraints between them (spec.md §5). A Stage is compiled into a DAG by
// CompileDAG; the compiled DAG is cached by Scheduler keyed on the Stage's
// identity.
type Stage struct {
	id       string
	systems  []System
	index    map[SystemID]int
	explicit []orderEdge
}

// orderEdge records an explicit "before runs before after" constraint added
// via AddExplicitOrder. It is recorded whether or not the two systems'
// access descriptors conflict; CompileDAG only turns it into an edge when
// they do.
type orderEdge struct {
	before SystemID
	after  SystemID
}

// NewStage constructs an empty stage identified by id. The id is used only
// for diagnostics; the Scheduler cache keys on the *Stage pointer itself,
// not on id (see scheduler.go).
func NewStage(id string) *Stage {
	return &Stage{id: id, index: make(map[SystemID]int)}
}

// ID returns the stage's diagnostic identifier.
func (s *Stage) ID() string { return s.id }

// AddSystem registers sys in the stage. It returns ErrDuplicateSystemID if a
// system with the same SystemID has already been added.
func (s *Stage) AddSystem(sys System) error {
	if _, exists := s.index[sys.ID()]; exists {
		return ErrDuplicateSystemID
	}
	s.index[sys.ID()] = len(s.systems)
	s.systems = append(s.systems, sys)
	return nil
}

// AddExplicitOrder records that before must run strictly before after. The
// order takes effect only if the two systems' access descriptors conflict;
// otherwise CompileDAG adds no edge and they may run concurrently. Both
// must already have been added via AddSystem, or ErrUnknownSystemID is
// returned.
func (s *Stage) AddExplicitOrder(before, after SystemID) error {
	if _, ok := s.index[before]; !ok {
		return ErrUnknownSystemID
	}
	if _, ok := s.index[after]; !ok {
		return ErrUnknownSystemID
	}
	s.explicit = append(s.explicit, orderEdge{before: before, after: after})
	return nil
}

// Systems returns the stage's registered systems in registration order.
func (s *Stage) Systems() []System {
	out := make([]System, len(s.systems))
	copy(out, s.systems)
	return out
}

func (s *Stage) hasExplicitOrder(before, after SystemID) bool {
	for _, e := range s.explicit {
		if e.before == before && e.after == after {
			return true
		}
	}
	return false
}
