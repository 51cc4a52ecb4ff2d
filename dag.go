package parallex

// Step is one node of a compiled DAG: the System it runs, plus the indices
// (into the DAG's Steps slice) of the predecessors that must complete
// before it can run. Spec.md §4.6 calls this the "minimal" DAG: no edge in
// Dependencies is transitively implied by another.
type Step struct {
	System       System
	Dependencies []int // indices into DAG.Steps
}

// DAG is the compiled, minimal dependency graph for a scheduled sequence of
// stages (spec.md §4.6).
type DAG struct {
	Steps []Step
}

type flatSystem struct {
	sys   System
	stage int
}

// CompileDAG compiles an ordered sequence of stages into one minimal DAG,
// in three phases matching spec.md §4.6 exactly:
//
//  1. Enumerate (Phase A): walk stages in order, systems within a stage in
//     registration order, flattening them into a single indexed list.
//  2. Raw dependants (Phase B): a system depends unconditionally on every
//     earlier-stage system whose access conflicts with it, explicit order
//     or not — crossing a stage boundary always serializes a conflict.
//     Within the same stage, an edge only exists when an explicit order is
//     declared between the pair AND their access conflicts; a same-stage
//     conflict with no explicit order is left as two independently
//     runnable systems, which is the design choice that makes a stage a
//     parallelism unit rather than an implicit ordering unit.
//  3. Topological order (Kahn's algorithm, detecting cycles) followed by
//     transitive reduction: a raw dependency i -> j is dropped if some
//     other kept predecessor k of j can already reach i.
func CompileDAG(stages []*Stage) (*DAG, error) {
	var flat []flatSystem
	stageIndices := make([][]int, len(stages))
	for si, stage := range stages {
		for _, sys := range stage.Systems() {
			stageIndices[si] = append(stageIndices[si], len(flat))
			flat = append(flat, flatSystem{sys: sys, stage: si})
		}
	}
	n := len(flat)

	// Phase B: raw dependants. rawDeps[j] holds every raw predecessor of j.
	rawDeps := make([][]int, n)
	addRawEdge := func(from, to int) {
		for _, existing := range rawDeps[to] {
			if existing == from {
				return
			}
		}
		rawDeps[to] = append(rawDeps[to], from)
	}

	// Cross-stage: unconditional on conflict, earlier stage -> later system.
	for i := 0; i < n; i++ {
		for sj := 0; sj < flat[i].stage; sj++ {
			for _, p := range stageIndices[sj] {
				if SystemConflict(flat[p].sys.Access(), flat[i].sys.Access()) {
					addRawEdge(p, i)
				}
			}
		}
	}

	// Same-stage: explicit order AND conflict, checked in both directions so
	// a genuine two-way contradiction (spec.md §8 scenario 7) surfaces as a
	// cycle in phase 3a rather than being silently resolved one way.
	for si, stage := range stages {
		indices := stageIndices[si]
		for a := 0; a < len(indices); a++ {
			for b := a + 1; b < len(indices); b++ {
				p, q := indices[a], indices[b]
				if !SystemConflict(flat[p].sys.Access(), flat[q].sys.Access()) {
					continue
				}
				if stage.hasExplicitOrder(flat[p].sys.ID(), flat[q].sys.ID()) {
					addRawEdge(p, q)
				}
				if stage.hasExplicitOrder(flat[q].sys.ID(), flat[p].sys.ID()) {
					addRawEdge(q, p)
				}
			}
		}
	}

	// Phase 3a: Kahn's algorithm over the raw edges, for cycle detection and
	// a deterministic topological order.
	indegree := make([]int, n)
	for j := range rawDeps {
		indegree[j] = len(rawDeps[j])
	}
	dependants := make([][]int, n)
	for j, deps := range rawDeps {
		for _, i := range deps {
			dependants[i] = append(dependants[i], j)
		}
	}

	order := make([]int, 0, n)
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	remaining := make([]int, n)
	copy(remaining, indegree)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		for _, dep := range dependants[node] {
			remaining[dep]--
			if remaining[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if len(order) != n {
		cycle := make([]SystemID, 0, n-len(order))
		seen := make(map[int]bool, len(order))
		for _, o := range order {
			seen[o] = true
		}
		for i := 0; i < n; i++ {
			if !seen[i] {
				cycle = append(cycle, flat[i].sys.ID())
			}
		}
		return nil, newCycleError(cycle)
	}

	// Phase 3b: transitive reduction. Walk nodes in topological order,
	// accumulating each node's full ancestor-reachability set from its kept
	// predecessors; a raw predecessor i of j is redundant if it is already
	// reachable via another raw predecessor of j.
	reach := make([]map[int]bool, n)
	minimalDeps := make([][]int, n)
	for _, j := range order {
		reach[j] = make(map[int]bool)
		var kept []int
		for _, i := range rawDeps[j] {
			redundant := false
			for _, k := range rawDeps[j] {
				if k != i && reach[k][i] {
					redundant = true
					break
				}
			}
			if !redundant {
				kept = append(kept, i)
			}
		}
		minimalDeps[j] = kept
		for _, i := range kept {
			reach[j][i] = true
			for a := range reach[i] {
				reach[j][a] = true
			}
		}
	}

	steps := make([]Step, n)
	for i, fs := range flat {
		steps[i] = Step{System: fs.sys, Dependencies: minimalDeps[i]}
	}
	return &DAG{Steps: steps}, nil
}
