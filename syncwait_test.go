package parallex_test

import (
	"context"
	"errors"
	"testing"

	"github.com/forgekit/parallex"
)

func TestSyncWaitBlocksUntilComplete(t *testing.T) {
	task := parallex.New(func(ctx parallex.Context) (string, error) {
		return "done", nil
	})
	v, err := parallex.SyncWait(context.Background(), task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "done" {
		t.Fatalf("v = %q, want done", v)
	}
}

func TestSyncWaitPropagatesError(t *testing.T) {
	sentinel := errors.New("broke")
	task := parallex.New(func(ctx parallex.Context) (int, error) {
		return 0, sentinel
	})
	_, err := parallex.SyncWait(context.Background(), task)
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want %v", err, sentinel)
	}
}

func TestSyncWaitShared(t *testing.T) {
	task := parallex.NewShared(func(ctx parallex.Context) (int, error) {
		return 3, nil
	})
	defer task.Release()

	v, err := parallex.SyncWaitShared(context.Background(), task)
	if err != nil || v != 3 {
		t.Fatalf("SyncWaitShared() = %d, %v", v, err)
	}
}
