package parallex_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/forgekit/parallex"
)

type fakeExecContext struct {
	tick uint64
}

func (c fakeExecContext) Tick() uint64            { return c.tick }
func (c fakeExecContext) Logger() parallex.Logger { return parallex.NoopLogger() }
func (c fakeExecContext) Tracer() parallex.Tracer { return parallex.NoopTracer() }

func newExec(tick uint64) parallex.ExecutionContext { return fakeExecContext{tick: tick} }

func TestSchedulerRunAllExecutesAllIndependentSystems(t *testing.T) {
	pool := parallex.NewThreadPool(4, false)
	defer pool.Close()
	scheduler := parallex.NewScheduler(parallex.WithThreadPool(pool))

	var order []string
	var mu sync.Mutex
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	stage := parallex.NewStage("independent")
	stage.AddSystem(fakeSystem{id: "a", run: func(ctx parallex.Context, exec parallex.ExecutionContext) parallex.SystemResult {
		record("a")
		return parallex.SystemResult{}
	}})
	stage.AddSystem(fakeSystem{id: "b", run: func(ctx parallex.Context, exec parallex.ExecutionContext) parallex.SystemResult {
		record("b")
		return parallex.SystemResult{}
	}})
	scheduler.AddStage(stage)

	if err := scheduler.RunAll(context.Background(), newExec); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("order = %v, want 2 entries", order)
	}
}

func TestSchedulerRunAllRespectsCrossStageConflictOrdering(t *testing.T) {
	// spec.md §8 scenario 6: a conflict that crosses a stage boundary is
	// ordered unconditionally, with no explicit order declared anywhere.
	source := parallex.TypeIDOf[int]()
	section := parallex.TypeIDOf[int]()

	scheduler := parallex.NewScheduler()
	var order []string
	var mu sync.Mutex
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	writeStage := parallex.NewStage("write")
	writeStage.AddSystem(fakeSystem{
		id:     "writer",
		access: []parallex.AccessDescriptor{{Source: source, Section: section}},
		run: func(ctx parallex.Context, exec parallex.ExecutionContext) parallex.SystemResult {
			record("writer")
			return parallex.SystemResult{}
		},
	})
	readStage := parallex.NewStage("read")
	readStage.AddSystem(fakeSystem{
		id:     "reader",
		access: []parallex.AccessDescriptor{{Source: source, Section: section, ReadOnly: true}},
		run: func(ctx parallex.Context, exec parallex.ExecutionContext) parallex.SystemResult {
			record("reader")
			return parallex.SystemResult{}
		},
	})
	scheduler.AddStage(writeStage)
	scheduler.AddStage(readStage)

	if err := scheduler.RunAll(context.Background(), newExec); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "writer" || order[1] != "reader" {
		t.Fatalf("order = %v, want [writer reader]", order)
	}
}

func TestSchedulerRunAllRunsIndependentCrossStageSystemsConcurrently(t *testing.T) {
	// Two stages, each with one system touching an unrelated section: no
	// edge should connect them, so RunAll must not barrier-complete the
	// first stage before starting the second.
	pool := parallex.NewThreadPool(4, false)
	defer pool.Close()
	scheduler := parallex.NewScheduler(parallex.WithThreadPool(pool))

	var order []string
	var mu sync.Mutex
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	first := parallex.NewStage("first")
	first.AddSystem(fakeSystem{id: "a", access: []parallex.AccessDescriptor{
		{Source: parallex.TypeIDOf[int](), Section: parallex.TypeIDOf[int]()},
	}, run: func(ctx parallex.Context, exec parallex.ExecutionContext) parallex.SystemResult {
		record("a")
		return parallex.SystemResult{}
	}})
	second := parallex.NewStage("second")
	second.AddSystem(fakeSystem{id: "b", access: []parallex.AccessDescriptor{
		{Source: parallex.TypeIDOf[string](), Section: parallex.TypeIDOf[string]()},
	}, run: func(ctx parallex.Context, exec parallex.ExecutionContext) parallex.SystemResult {
		record("b")
		return parallex.SystemResult{}
	}})
	scheduler.AddStage(first)
	scheduler.AddStage(second)

	dag, err := parallex.CompileDAG([]*parallex.Stage{first, second})
	if err != nil {
		t.Fatalf("CompileDAG failed: %v", err)
	}
	for i, step := range dag.Steps {
		if len(step.Dependencies) != 0 {
			t.Fatalf("step %d (%s) has dependencies %v, want none", i, step.System.ID(), step.Dependencies)
		}
	}

	if err := scheduler.RunAll(context.Background(), newExec); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("order = %v, want 2 entries", order)
	}
}

func TestSchedulerRunAllPropagatesSystemError(t *testing.T) {
	scheduler := parallex.NewScheduler()
	sentinel := errors.New("system broke")

	stage := parallex.NewStage("failing")
	stage.AddSystem(fakeSystem{id: "bad", run: func(ctx parallex.Context, exec parallex.ExecutionContext) parallex.SystemResult {
		return parallex.SystemResult{Err: sentinel}
	}})
	scheduler.AddStage(stage)

	err := scheduler.RunAll(context.Background(), newExec)
	if err == nil {
		t.Fatalf("expected an error")
	}
	var sysErr *parallex.SystemError
	if !errors.As(err, &sysErr) {
		t.Fatalf("err = %v, want *SystemError", err)
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("err does not wrap sentinel: %v", err)
	}
}

func TestSchedulerRunAllRequiresStages(t *testing.T) {
	scheduler := parallex.NewScheduler()
	err := scheduler.RunAll(context.Background(), newExec)
	if !errors.Is(err, parallex.ErrSchedulerEmpty) {
		t.Fatalf("err = %v, want ErrSchedulerEmpty", err)
	}
}

func TestSchedulerRunAllHonorsTickInterval(t *testing.T) {
	scheduler := parallex.NewScheduler()
	var runs int32

	stage := parallex.NewStage("interval")
	stage.AddSystem(fakeSystem{
		id:    "every-third",
		every: parallex.TickInterval{Every: 3},
		run: func(ctx parallex.Context, exec parallex.ExecutionContext) parallex.SystemResult {
			atomic.AddInt32(&runs, 1)
			return parallex.SystemResult{}
		},
	})
	scheduler.AddStage(stage)

	for i := 0; i < 6; i++ {
		if err := scheduler.RunAll(context.Background(), newExec); err != nil {
			t.Fatalf("RunAll failed on tick %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&runs); got != 2 {
		t.Fatalf("runs = %d, want 2 (ticks 0 and 3)", got)
	}
}

func TestSchedulerScheduleCachesCompiledDAG(t *testing.T) {
	scheduler := parallex.NewScheduler()
	stage := parallex.NewStage("cached")
	stage.AddSystem(fakeSystem{id: "a"})
	scheduler.AddStage(stage)

	first, err := scheduler.Schedule(stage)
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	second, err := scheduler.Schedule(stage)
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if first != second {
		t.Fatalf("Schedule returned different *DAG pointers for the same Stage")
	}
}

func TestSchedulerScheduleConcurrentCallsDedup(t *testing.T) {
	scheduler := parallex.NewScheduler()
	stage := parallex.NewStage("concurrent")
	stage.AddSystem(fakeSystem{id: "a"})
	scheduler.AddStage(stage)

	const n = 32
	results := make([]*parallex.DAG, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			dag, err := scheduler.Schedule(stage)
			if err != nil {
				t.Errorf("Schedule failed: %v", err)
				return
			}
			results[i] = dag
		}()
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatalf("concurrent Schedule calls returned different *DAG instances")
		}
	}
}

func TestSchedulerCompileDAGCycleSurfacesFromRunAll(t *testing.T) {
	source := parallex.TypeIDOf[int]()
	section := parallex.TypeIDOf[int]()

	scheduler := parallex.NewScheduler()
	stage := parallex.NewStage("cyclic")
	stage.AddSystem(fakeSystem{id: "a", access: []parallex.AccessDescriptor{{Source: source, Section: section}}})
	stage.AddSystem(fakeSystem{id: "b", access: []parallex.AccessDescriptor{{Source: source, Section: section}}})
	stage.AddExplicitOrder("a", "b")
	stage.AddExplicitOrder("b", "a")
	scheduler.AddStage(stage)

	err := scheduler.RunAll(context.Background(), newExec)
	var cycleErr *parallex.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("err = %v, want *CycleError", err)
	}
}
