package parallex_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/forgekit/parallex"
)

func TestWhenAllZero(t *testing.T) {
	task := parallex.WhenAll()
	if !task.IsReady() {
		t.Fatalf("WhenAll() with no items should be immediately ready")
	}
}

func TestWhenAllOne(t *testing.T) {
	var ran int32
	item := parallex.New(func(ctx parallex.Context) (int, error) {
		atomic.AddInt32(&ran, 1)
		return 1, nil
	})
	join := parallex.WhenAll(item.Joinable())
	join.Eject(context.Background())
	join.WhenReady()
	if atomic.LoadInt32(&ran) != 1 {
		t.Fatalf("underlying task did not run")
	}
}

func TestWhenAllTwo(t *testing.T) {
	a := parallex.New(func(ctx parallex.Context) (int, error) { return 1, nil })
	b := parallex.New(func(ctx parallex.Context) (int, error) { return 2, nil })

	join := parallex.WhenAll(a.Joinable(), b.Joinable())
	join.Eject(context.Background())
	join.WhenReady()

	if !a.IsReady() || !b.IsReady() {
		t.Fatalf("WhenAll(2) completed before both items were ready")
	}
}

func TestWhenAllMany(t *testing.T) {
	const n = 10
	var completed int32
	items := make([]parallex.Joinable, n)
	for i := 0; i < n; i++ {
		task := parallex.New(func(ctx parallex.Context) (int, error) {
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&completed, 1)
			return 0, nil
		})
		items[i] = task.Joinable()
	}

	join := parallex.WhenAll(items...)
	join.Eject(context.Background())
	join.WhenReady()

	if got := atomic.LoadInt32(&completed); got != n {
		t.Fatalf("completed = %d, want %d", got, n)
	}
}

func TestWhenAllSharedTasks(t *testing.T) {
	a := parallex.NewShared(func(ctx parallex.Context) (int, error) { return 1, nil })
	b := parallex.NewShared(func(ctx parallex.Context) (int, error) { return 2, nil })
	defer a.Release()
	defer b.Release()

	join := parallex.WhenAll(a.Joinable(), b.Joinable())
	join.Eject(context.Background())
	join.WhenReady()

	if !a.IsReady() || !b.IsReady() {
		t.Fatalf("WhenAll over shared tasks did not wait for both")
	}
}
