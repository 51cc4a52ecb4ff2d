package parallex

import (
	"sync"
	"sync/atomic"
)

// CounterTrigger is a fan-in awaitable that becomes ready after exactly N
// calls to Notify, ported from the original's WhenAllCounter
// (original_source/engine/include/genebits/engine/parallel/when_all.h): an
// atomic decrement-to-zero on the hot path, with the rare "last one in"
// transition guarded by a mutex so the registered continuation is invoked
// exactly once, race-free against a concurrent Suspend.
type CounterTrigger struct {
	remaining int64
	mu        sync.Mutex
	done      bool
	cont      func()
}

// NewCounterTrigger constructs a trigger that becomes ready after n calls to
// Notify. n must be >= 1.
func NewCounterTrigger(n int) *CounterTrigger {
	return &CounterTrigger{remaining: int64(n)}
}

// Notify records one completion. The final call (the one that observes the
// counter reach zero) invokes the registered continuation, if any was
// registered via Suspend before that point.
func (c *CounterTrigger) Notify() {
	if atomic.AddInt64(&c.remaining, -1) != 0 {
		return
	}
	c.mu.Lock()
	c.done = true
	cont := c.cont
	c.cont = nil
	c.mu.Unlock()
	if cont != nil {
		cont()
	}
}

// IsReady implements Awaitable[Unit].
func (c *CounterTrigger) IsReady() bool {
	return atomic.LoadInt64(&c.remaining) <= 0
}

// Suspend implements Awaitable[Unit]. It registers continuation to run when
// the last Notify fires; if the counter has already reached zero, it
// returns false without registering.
func (c *CounterTrigger) Suspend(continuation func()) bool {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return false
	}
	c.cont = continuation
	c.mu.Unlock()
	return true
}

// Resume implements Awaitable[Unit].
func (c *CounterTrigger) Resume() Unit { return Unit{} }

var _ Awaitable[Unit] = (*CounterTrigger)(nil)

// FlagTrigger is a one-shot fan-in awaitable for exactly two participants,
// ported from the original's WhenAllFlag: the first of two racing
// completions flips the flag and does nothing further; the second observes
// the flag already set and is the one that proceeds (resumes the
// continuation or, in the N==2 WhenAll optimization, lets the caller poll
// inline on its own frame instead of scheduling a continuation at all).
type FlagTrigger struct {
	mu   sync.Mutex
	flag bool
	cont func()
}

// NewFlagTrigger constructs an unset FlagTrigger.
func NewFlagTrigger() *FlagTrigger { return &FlagTrigger{} }

// Notify flips the flag. It reports whether this call was the one that
// transitioned it from unset to set (i.e. whether this was the first
// caller); the second caller gets false back and is responsible for
// proceeding.
func (f *FlagTrigger) Notify() (wasFirst bool) {
	f.mu.Lock()
	if f.flag {
		// Second arrival: the trigger is already satisfied, so this call is
		// responsible for resuming whatever was waiting on it.
		cont := f.cont
		f.cont = nil
		f.mu.Unlock()
		if cont != nil {
			cont()
		}
		return false
	}
	f.flag = true
	f.mu.Unlock()
	return true
}

func (f *FlagTrigger) IsReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flag
}

func (f *FlagTrigger) Suspend(continuation func()) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flag {
		return false
	}
	f.cont = continuation
	return true
}

func (f *FlagTrigger) Resume() Unit { return Unit{} }

var _ Awaitable[Unit] = (*FlagTrigger)(nil)
