// Package timer emulates delayed callbacks in an environment that only
// runs code when a value changes.
//
// A trigger value is switched to 1 while anything is scheduled. The host
// side calls Tick at a fixed cadence for as long as the trigger is nonzero,
// and Tick fires whatever is due. Registries are kept per context, so two
// sessions never see each other's timers.
package timer

import (
	"time"

	"go-mackie/control"
	"go-mackie/debug"
	"go-mackie/state"
)

// DefaultCadence is how often the host re-invokes Tick while the trigger is set.
const DefaultCadence = time.Second

// Callback runs when a timeout is due.
type Callback func(ctx *state.Context)

type entry struct {
	id string
	at time.Time
	cb Callback
}

type registry struct {
	entries []entry
}

func (r *registry) remove(id string) {
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Timer schedules callbacks by id.
type Timer struct {
	// Trigger is nonzero while the timer needs ticks.
	Trigger *control.Value

	registries map[*state.Context]*registry
}

// New creates a timer with its trigger value.
func New() *Timer {
	return &Timer{
		Trigger:    control.NewValue("timer/trigger"),
		registries: make(map[*state.Context]*registry),
	}
}

func (t *Timer) registry(ctx *state.Context) *registry {
	r, ok := t.registries[ctx]
	if !ok {
		r = &registry{}
		t.registries[ctx] = r
	}
	return r
}

// Running reports whether the trigger is set for ctx.
func (t *Timer) Running(ctx *state.Context) bool {
	return t.Trigger.Get(ctx) != 0
}

// SetTimeout schedules cb to run delaySeconds from now. Registering an id
// that is still pending replaces the earlier callback and its due time.
func (t *Timer) SetTimeout(ctx *state.Context, id string, cb Callback, delaySeconds float64) {
	if !t.Running(ctx) {
		t.Trigger.Input(ctx, 1)
	}
	r := t.registry(ctx)
	r.remove(id)
	r.entries = append(r.entries, entry{
		id: id,
		at: ctx.Now().Add(time.Duration(delaySeconds * float64(time.Second))),
		cb: cb,
	})
}

// Pending returns the number of scheduled callbacks for ctx.
func (t *Timer) Pending(ctx *state.Context) int {
	if r, ok := t.registries[ctx]; ok {
		return len(r.entries)
	}
	return 0
}

// Tick fires every due callback in registration order and stops the
// trigger once nothing is left. Callbacks may schedule new timeouts; those
// are considered from the next tick on.
func (t *Timer) Tick(ctx *state.Context) {
	r := t.registry(ctx)
	now := ctx.Now()

	var due []entry
	kept := r.entries[:0]
	for _, e := range r.entries {
		if !e.at.After(now) {
			due = append(due, e)
		} else {
			kept = append(kept, e)
		}
	}
	r.entries = append([]entry(nil), kept...)

	for _, e := range due {
		debug.Log("timer", "%s: fire %q", ctx.ID(), e.id)
		e.cb(ctx)
	}

	if len(r.entries) == 0 && t.Running(ctx) {
		t.Trigger.Input(ctx, 0)
	}
}

// Reset drops every registration for ctx and clears its trigger.
func (t *Timer) Reset(ctx *state.Context) {
	delete(t.registries, ctx)
	if ctx.Active() {
		t.Trigger.Store(ctx, 0)
	}
}
