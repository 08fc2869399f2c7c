// Package fader keeps motorized faders in sync with host values without
// fighting the user's hand.
//
// Per channel the fader is Idle, Touched or Unassigned. Position frames are
// suppressed while touched and never repeated for an unchanged value; the
// fader is resynchronized on release, on unassignment and when motors are
// switched back on.
package fader

import (
	"fmt"

	"go-mackie/control"
	"go-mackie/debug"
	"go-mackie/midi"
	"go-mackie/state"
)

// State is the controller state of one fader.
type State int

const (
	Idle State = iota
	Touched
	Unassigned
)

func (s State) String() string {
	switch s {
	case Touched:
		return "touched"
	case Unassigned:
		return "unassigned"
	}
	return "idle"
}

// Fader drives one motorized fader.
type Fader struct {
	Unit    *midi.PortPair
	Channel uint8

	// Value is the position, Touch the touch sense (nonzero while touched).
	Value *control.Value
	Touch *control.Value

	group   *Group
	touched state.Slot[bool]
	force   state.Slot[bool]
	last    state.Slot[float64]
}

// Group holds the faders that share the global motor enable.
type Group struct {
	motors state.Slot[bool]
	faders []*Fader
}

// NewGroup creates a group with motors enabled.
func NewGroup() *Group {
	return &Group{motors: state.Bool("fader.motors", true)}
}

// Add creates a fader on unit/channel and wires its callbacks onto value and touch.
func (g *Group) Add(unit *midi.PortPair, channel uint8, value, touch *control.Value) *Fader {
	prefix := fmt.Sprintf("fader.%d.%d.", unit.Index, channel)
	f := &Fader{
		Unit:    unit,
		Channel: channel,
		Value:   value,
		Touch:   touch,
		group:   g,
		touched: state.Bool(prefix+"touched", false),
		force:   state.Bool(prefix+"force", false),
		last:    state.Float(prefix+"last", 0),
	}

	value.OnValueChange = func(ctx *state.Context, v, _ float64) { f.OnPosition(ctx, v) }
	value.OnTitle = func(ctx *state.Context, title, _ string) { f.OnTitle(ctx, title) }
	if touch != nil {
		touch.OnValueChange = func(ctx *state.Context, v, _ float64) { f.OnTouch(ctx, v > 0) }
	}

	g.faders = append(g.faders, f)
	return f
}

// Faders returns every fader in the group.
func (g *Group) Faders() []*Fader { return g.faders }

// MotorsEnabled reports the global motor flag.
func (g *Group) MotorsEnabled(ctx *state.Context) bool { return g.motors.Get(ctx) }

// SetMotorsEnabled sets the global motor flag. Switching motors on drives
// every untouched fader to its last known value; touched faders catch up
// on release.
func (g *Group) SetMotorsEnabled(ctx *state.Context, on bool) {
	was := g.motors.Get(ctx)
	g.motors.Set(ctx, on)
	if on && !was {
		for _, f := range g.faders {
			f.Resync(ctx)
		}
	}
}

// State returns the fader's controller state.
func (f *Fader) State(ctx *state.Context) State {
	if f.touched.Get(ctx) {
		return Touched
	}
	if f.Value.Title(ctx) == "" {
		return Unassigned
	}
	return Idle
}

// Last returns the last position recorded for the fader.
func (f *Fader) Last(ctx *state.Context) float64 { return f.last.Get(ctx) }

// OnPosition handles a position change of the bound value.
func (f *Fader) OnPosition(ctx *state.Context, v float64) {
	if !f.touched.Get(ctx) && f.group.MotorsEnabled(ctx) {
		last := f.last.Get(ctx)
		if v != last || last == 0 || f.force.Get(ctx) {
			f.emit(ctx, v)
			f.force.Set(ctx, false)
		}
	}
	f.last.Set(ctx, v)
}

// OnTouch handles the touch sense. Release resends the last position.
func (f *Fader) OnTouch(ctx *state.Context, touched bool) {
	f.touched.Set(ctx, touched)
	if !touched {
		f.emit(ctx, f.last.Get(ctx))
	}
}

// OnTitle handles the parameter title. An empty title means the fader lost
// its parameter: it is parked at zero and forced to resend on reassignment.
func (f *Fader) OnTitle(ctx *state.Context, title string) {
	if title != "" {
		return
	}
	f.force.Set(ctx, true)
	f.Value.Store(ctx, 0)
	f.last.Set(ctx, 0)
	if f.group.MotorsEnabled(ctx) && !f.touched.Get(ctx) {
		f.emit(ctx, 0)
	}
}

// Resync drives the fader to its last position if motors are on.
func (f *Fader) Resync(ctx *state.Context) {
	if f.group.MotorsEnabled(ctx) && !f.touched.Get(ctx) {
		f.emit(ctx, f.last.Get(ctx))
	}
}

func (f *Fader) emit(ctx *state.Context, v float64) {
	debug.LogEvery(50, "fader", "unit %d ch %d -> %.4f", f.Unit.Index, f.Channel, v)
	f.Unit.SendPitchBend(ctx, f.Channel, v)
}
