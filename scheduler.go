package parallex

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/forgekit/parallex/internal/raceguard"
)

// Scheduler is the frontend spec.md §4.7 describes: it owns a ThreadPool, a
// cache trie of compiled DAGs keyed by scheduled-sequence identity, and
// drives ticks by compiling one combined cross-stage DAG for the current
// sequence of registered stages and running it to completion. Concurrent
// first-time compiles for the same sequence collapse into one CompileDAG
// call via singleflight, matching spec.md §4.7's "cache trie ... inserted
// on first observation" under concurrent ticks.
type Scheduler struct {
	pool   *ThreadPool
	logger Logger
	tracer Tracer
	group  singleflight.Group

	mu     sync.Mutex // guards stages and the trie's shape (children maps)
	stages []*Stage
	root   *cacheNode

	tick    uint64
	metrics *Metrics

	// guard only asserts anything when the binary is built with
	// -tags raceguard; it is otherwise a free no-op (internal/raceguard).
	// It panics when two steps running at the same time hold a write and
	// another access on the same Source/Section key. CompileDAG leaves
	// same-stage conflicting systems without an explicit order unordered,
	// so such a pair can trip it.
	guard raceguard.Guard
}

// cacheNode is one node of the scheduler's cache trie (spec.md §4.7): it is
// reached by a specific ordered sequence of *Stage pointers (stages, the
// path from the root), and caches the DAG compiled for exactly that
// sequence. Two different sequences that happen to share a Stage pointer at
// some position share that prefix's node but diverge into separate nodes
// afterward, so the cache is keyed on sequence identity, not on any single
// *Stage pointer.
type cacheNode struct {
	children map[*Stage]*cacheNode
	stages   []*Stage

	mu   sync.Mutex // guards dag/err/done for this node only
	dag  *DAG
	err  error
	done bool
}

func newCacheNode(stages []*Stage) *cacheNode {
	return &cacheNode{children: make(map[*Stage]*cacheNode), stages: stages}
}

// SchedulerOption configures a Scheduler at construction time, the same
// functional-options shape the teacher's schedulerBuilder uses.
type SchedulerOption func(*Scheduler)

// WithLogger overrides the Scheduler's default NoopLogger.
func WithLogger(l Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// WithTracer overrides the Scheduler's default NoopTracer.
func WithTracer(t Tracer) SchedulerOption {
	return func(s *Scheduler) { s.tracer = t }
}

// WithMetrics attaches a Metrics sink (see metrics.go) counting each run's
// executed and failed steps.
func WithMetrics(m *Metrics) SchedulerOption {
	return func(s *Scheduler) { s.metrics = m }
}

// WithThreadPool supplies a pre-built ThreadPool instead of the default
// NewDefaultThreadPool(). Useful for tests that want a single-worker pool.
func WithThreadPool(p *ThreadPool) SchedulerOption {
	return func(s *Scheduler) { s.pool = p }
}

// NewScheduler constructs a Scheduler. By default it owns a pool sized to
// runtime.NumCPU(), a NoopLogger, and a NoopTracer.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		logger: NoopLogger(),
		tracer: NoopTracer(),
		root:   newCacheNode(nil),
		guard:  raceguard.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pool == nil {
		s.pool = NewDefaultThreadPool()
	}
	return s
}

// AddStage registers stage with the scheduler so RunAll will execute it on
// every tick.
func (s *Scheduler) AddStage(stage *Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(s.stages, stage)
}

// child descends the trie from parent along stage, creating the child node
// on first observation of that edge.
func (s *Scheduler) child(parent *cacheNode, stage *Stage) *cacheNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := parent.children[stage]
	if !ok {
		path := make([]*Stage, len(parent.stages)+1)
		copy(path, parent.stages)
		path[len(parent.stages)] = stage
		node = newCacheNode(path)
		parent.children[stage] = node
	}
	return node
}

// resolveSequence descends the trie through stages in order, returning the
// node at the end of the path without compiling it.
func (s *Scheduler) resolveSequence(stages []*Stage) *cacheNode {
	node := s.root
	for _, stage := range stages {
		node = s.child(node, stage)
	}
	return node
}

// compile bakes node's DAG at most once. The fast path (node.done) avoids
// re-entering singleflight once a node has been baked; the first compile
// for a given node is deduped across concurrent callers by singleflight
// keyed on the node's own identity — i.e. on the scheduled-sequence the
// node represents, not on any single *Stage.
func (s *Scheduler) compile(node *cacheNode) (*DAG, error) {
	node.mu.Lock()
	if node.done {
		dag, err := node.dag, node.err
		node.mu.Unlock()
		return dag, err
	}
	node.mu.Unlock()

	key := fmt.Sprintf("%p", node)
	_, _, _ = s.group.Do(key, func() (any, error) {
		node.mu.Lock()
		defer node.mu.Unlock()
		if !node.done {
			node.dag, node.err = CompileDAG(node.stages)
			node.done = true
		}
		return nil, nil
	})

	node.mu.Lock()
	dag, err := node.dag, node.err
	node.mu.Unlock()
	return dag, err
}

// Schedule returns the compiled DAG for the single-stage sequence [stage],
// compiling it (once) if this is the first time that sequence has been
// seen. Concurrent calls for the same stage share one CompileDAG invocation
// via singleflight.
func (s *Scheduler) Schedule(stage *Stage) (*DAG, error) {
	node := s.child(s.root, stage)
	return s.compile(node)
}

// RunAll runs one tick: it resolves the cache trie node for the full
// ordered sequence of registered stages, compiling (once, cached
// thereafter) a single combined DAG whose edges span stage boundaries per
// spec.md §4.6's cross-stage rule, then dispatches every step of that DAG
// across the Scheduler's ThreadPool respecting the DAG's dependency edges.
// Unlike running each stage's DAG to completion before starting the next,
// this lets independent steps in different stages run concurrently. It
// returns ErrSchedulerEmpty if no stages have been registered.
func (s *Scheduler) RunAll(ctx Context, exec func(tick uint64) ExecutionContext) error {
	s.mu.Lock()
	stages := make([]*Stage, len(s.stages))
	copy(stages, s.stages)
	s.mu.Unlock()
	if len(stages) == 0 {
		return ErrSchedulerEmpty
	}

	tick := atomic.AddUint64(&s.tick, 1) - 1
	runID := uuid.New().String()
	ctx, span := s.tracer.Start(ctx, "parallex.tick")
	span.SetAttribute("tick", tick)
	span.SetAttribute("run_id", runID)
	defer span.End()

	node := s.resolveSequence(stages)
	dag, err := s.compile(node)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.runDAG(ctx, dag, tick, exec); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// runDAG ejects one SharedTask per Step, wired to its Dependencies via
// WhenAll, and blocks on a final WhenAll over every step. Steps whose AccessDescriptors and
// explicit order never conflict have no edge between them and so run
// concurrently on the pool, exactly as spec.md §4.6 describes.
func (s *Scheduler) runDAG(ctx Context, dag *DAG, tick uint64, exec func(tick uint64) ExecutionContext) error {
	n := len(dag.Steps)
	if n == 0 {
		return nil
	}
	tasks := make([]*SharedTask[error], n)
	var recordErr func(i int) *SharedTask[error]
	recordErr = func(i int) *SharedTask[error] {
		if tasks[i] != nil {
			return tasks[i]
		}
		step := dag.Steps[i]
		deps := make([]*SharedTask[error], len(step.Dependencies))
		for k, d := range step.Dependencies {
			deps[k] = recordErr(d)
		}
		t := NewShared(func(ctx Context) (error, error) {
			joinables := make([]Joinable, len(deps))
			for k, d := range deps {
				joinables[k] = d.Joinable()
			}
			WhenAll(joinables...).Eject(ctx).WhenReady()

			if !step.System.RunEvery().ShouldRun(tick) {
				return nil, nil
			}
			pool := s.pool
			<-schedulePool(ctx, pool)
			exits := s.enterGuard(step.System.Access())
			result := step.System.Run(ctx, exec(tick))
			for _, exit := range exits {
				exit()
			}
			if result.Err != nil {
				wrapped := newSystemError(step.System.ID(), result.Err)
				s.logger.Error("system failed", "system", step.System.ID(), "error", wrapped)
				if s.metrics != nil {
					s.metrics.ObserveStepError(step.System.ID())
				}
				return wrapped, nil
			}
			if s.metrics != nil {
				s.metrics.ObserveStepOK(step.System.ID())
			}
			return nil, nil
		})
		tasks[i] = t
		return t
	}

	for i := range dag.Steps {
		recordErr(i)
	}
	joinables := make([]Joinable, n)
	for i, t := range tasks {
		t.Eject(ctx)
		joinables[i] = t.Joinable()
	}
	WhenAll(joinables...).Eject(ctx).WhenReady()

	for _, t := range tasks {
		if err, _ := t.Await(); err != nil {
			return err
		}
	}
	return nil
}

// schedulePool returns a channel that closes once the calling step has been
// handed to a pool worker, so that each DAG step's System.Run actually
// executes on the ThreadPool rather than inline on whichever goroutine
// ejected its Task. If the pool has been closed, the channel is closed at
// once and the step runs on the calling goroutine.
func schedulePool(ctx Context, pool *ThreadPool) <-chan struct{} {
	done := make(chan struct{})
	awaiter := pool.Schedule()
	if !awaiter.Suspend(func() { close(done) }) {
		close(done)
	}
	return done
}

// enterGuard enters the race guard for every section a step declares access
// to, returning the exit functions the caller must run once the step's
// System.Run has returned. With the default (non-raceguard) build this costs
// nothing; built with -tags raceguard, it panics if two concurrently
// dispatched steps hold a write and another access under the same
// Source/Section key. Wildcard sections get their own key, so they are not
// matched against named sections.
func (s *Scheduler) enterGuard(access []AccessDescriptor) []func() {
	if len(access) == 0 {
		return nil
	}
	exits := make([]func(), len(access))
	for i, a := range access {
		key := a.Source.String() + "/" + a.Section.String()
		exits[i] = s.guard.Enter(key, !a.ReadOnly && !a.ThreadSafe)
	}
	return exits
}
