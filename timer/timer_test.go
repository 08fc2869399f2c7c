package timer

import (
	"testing"
	"time"

	"go-mackie/state"
)

func newCtx(id string) (*state.Context, *state.ManualClock) {
	clock := state.NewManualClock(time.Unix(1000, 0))
	return state.NewContext(id, clock), clock
}

func TestSetTimeout_StartsTrigger(t *testing.T) {
	tm := New()
	ctx, _ := newCtx("s")

	if tm.Running(ctx) {
		t.Fatal("Running() = true before anything was scheduled")
	}

	tm.SetTimeout(ctx, "a", func(*state.Context) {}, 1)

	if !tm.Running(ctx) {
		t.Error("Running() = false after SetTimeout")
	}
	if tm.Pending(ctx) != 1 {
		t.Errorf("Pending() = %d, want 1", tm.Pending(ctx))
	}
}

func TestTick_NeverFiresEarly(t *testing.T) {
	tm := New()
	ctx, clock := newCtx("s")
	fired := 0
	tm.SetTimeout(ctx, "a", func(*state.Context) { fired++ }, 1)

	clock.Advance(999 * time.Millisecond)
	tm.Tick(ctx)
	if fired != 0 {
		t.Fatal("fired before due time")
	}

	clock.Advance(time.Millisecond)
	tm.Tick(ctx)
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
	if tm.Running(ctx) {
		t.Error("trigger still set with empty registry")
	}
}

func TestSetTimeout_ReplacesSameID(t *testing.T) {
	tm := New()
	ctx, clock := newCtx("s")
	var fired []string

	tm.SetTimeout(ctx, "a", func(*state.Context) { fired = append(fired, "cb1") }, 1)
	tm.SetTimeout(ctx, "a", func(*state.Context) { fired = append(fired, "cb2") }, 2)

	clock.Advance(1500 * time.Millisecond)
	tm.Tick(ctx)
	if len(fired) != 0 {
		t.Fatalf("fired %v before 2s", fired)
	}

	clock.Advance(500 * time.Millisecond)
	tm.Tick(ctx)
	if len(fired) != 1 || fired[0] != "cb2" {
		t.Errorf("fired = %v, want [cb2]", fired)
	}
}

func TestTick_InsertionOrder(t *testing.T) {
	tm := New()
	ctx, clock := newCtx("s")
	var fired []string
	for _, id := range []string{"c", "a", "b"} {
		tm.SetTimeout(ctx, id, func(*state.Context) { fired = append(fired, id) }, 1)
	}

	clock.Advance(time.Second)
	tm.Tick(ctx)

	want := []string{"c", "a", "b"}
	for i := range want {
		if i >= len(fired) || fired[i] != want[i] {
			t.Fatalf("fired = %v, want %v", fired, want)
		}
	}
}

func TestTick_CallbackSchedulesForNextTick(t *testing.T) {
	tm := New()
	ctx, clock := newCtx("s")
	var fired []string

	tm.SetTimeout(ctx, "first", func(c *state.Context) {
		fired = append(fired, "first")
		tm.SetTimeout(c, "second", func(*state.Context) { fired = append(fired, "second") }, 0)
	}, 1)

	clock.Advance(time.Second)
	tm.Tick(ctx)
	if len(fired) != 1 {
		t.Fatalf("fired = %v after first tick", fired)
	}
	if !tm.Running(ctx) {
		t.Fatal("trigger cleared while a timeout is pending")
	}

	tm.Tick(ctx)
	if len(fired) != 2 || fired[1] != "second" {
		t.Errorf("fired = %v, want [first second]", fired)
	}
	if tm.Running(ctx) {
		t.Error("trigger still set after registry drained")
	}
}

func TestTimer_ContextsAreIsolated(t *testing.T) {
	tm := New()
	a, clockA := newCtx("a")
	b, _ := newCtx("b")
	var fired []string

	tm.SetTimeout(a, "x", func(*state.Context) { fired = append(fired, "a") }, 1)
	tm.SetTimeout(b, "x", func(*state.Context) { fired = append(fired, "b") }, 1)

	clockA.Advance(time.Second)
	tm.Tick(a)

	if len(fired) != 1 || fired[0] != "a" {
		t.Errorf("fired = %v, want [a]", fired)
	}
	if tm.Pending(b) != 1 || !tm.Running(b) {
		t.Error("context b lost its timeout")
	}
}

func TestReset(t *testing.T) {
	tm := New()
	ctx, _ := newCtx("s")
	tm.SetTimeout(ctx, "a", func(*state.Context) {}, 1)

	tm.Reset(ctx)

	if tm.Pending(ctx) != 0 || tm.Running(ctx) {
		t.Error("Reset left timeouts behind")
	}
}
