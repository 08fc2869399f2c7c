package surface

import (
	"go-mackie/control"
	"go-mackie/midi"
	"go-mackie/state"
)

// Latch turns presses into flips of a state owned by the surface.
type Latch struct {
	Get func(ctx *state.Context) bool
	Set func(ctx *state.Context, on bool)
}

// Button is one lit button.
//
// Value carries the state the host owns; Shadow decodes the same note and
// only tracks whether the button is held. The LED is lit while the state
// is on or the button is held. A button with a Latch has no host state:
// each press flips the latch instead.
type Button struct {
	Unit   *midi.PortPair
	Note   uint8
	Value  *control.Value
	Shadow *control.Value
	Latch  *Latch
}

func newButton(unit *midi.PortPair, note uint8, value, shadow *control.Value) *Button {
	b := &Button{Unit: unit, Note: note, Value: value, Shadow: shadow}
	if value != nil {
		value.OnValueChange = func(ctx *state.Context, _, _ float64) { b.Render(ctx) }
		value.OnColor = func(ctx *state.Context, _ control.Color, active bool) {
			value.Store(ctx, boolValue(active))
			b.Render(ctx)
		}
	}
	shadow.OnValueChange = func(ctx *state.Context, v, _ float64) {
		if v > 0 && b.Latch != nil {
			b.Flip(ctx)
			return
		}
		b.Render(ctx)
	}
	return b
}

// On reports the button's state, ignoring whether it is held.
func (b *Button) On(ctx *state.Context) bool {
	if b.Latch != nil {
		return b.Latch.Get(ctx)
	}
	return b.Value != nil && b.Value.Get(ctx) > 0
}

// Held reports whether the button is pressed.
func (b *Button) Held(ctx *state.Context) bool { return b.Shadow.Get(ctx) > 0 }

// Lit reports whether the LED should be on.
func (b *Button) Lit(ctx *state.Context) bool { return b.On(ctx) || b.Held(ctx) }

// Render writes the LED.
func (b *Button) Render(ctx *state.Context) {
	b.Unit.SendLED(ctx, b.Note, b.Lit(ctx))
}

// Flip toggles a latch button. It does nothing for host buttons.
func (b *Button) Flip(ctx *state.Context) {
	if b.Latch == nil {
		return
	}
	b.Latch.Set(ctx, !b.Latch.Get(ctx))
	b.Render(ctx)
}

func boolValue(on bool) float64 {
	if on {
		return 1
	}
	return 0
}
