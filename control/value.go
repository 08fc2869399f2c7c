// Package control holds the bound values that connect host parameters to
// surface controls.
package control

import (
	"errors"
	"fmt"

	"go-mackie/midi"
	"go-mackie/state"
)

// ErrAlreadyBound is returned when a value is given a second decode rule.
var ErrAlreadyBound = errors.New("control: value already has a wire binding")

// Color is an RGBA color reported by the host, each channel in [0,1].
type Color struct {
	R, G, B, A float64
}

// Value is a host-facing value endpoint created once at wiring time.
//
// Callbacks fire synchronously, once per triggering event. Inputs from the
// surface are written back to the host through Sink before OnValueChange
// fires, the way a host echoes a parameter it just accepted.
type Value struct {
	Name string

	OnValueChange func(ctx *state.Context, value, diff float64)
	OnDisplayText func(ctx *state.Context, text, units string)
	OnTitle       func(ctx *state.Context, title, secondary string)
	OnColor       func(ctx *state.Context, c Color, active bool)

	// Sink receives surface-originated changes for the host.
	Sink func(ctx *state.Context, value float64)

	// Forward passes decoded input to Sink only. The stored value and the
	// callbacks then follow host updates alone, for controls whose state
	// the host owns (a mute the host toggles on each press).
	Forward bool

	binding *midi.Binding
	value   state.Slot[float64]
	title   state.Slot[string]
	text    state.Slot[string]
}

// NewValue declares a value whose state lives under name.
func NewValue(name string) *Value {
	return &Value{
		Name:  name,
		value: state.Float("value."+name, 0),
		title: state.String("value."+name+".title", ""),
		text:  state.String("value."+name+".text", ""),
	}
}

// Bind sets the value's inbound decode rule and registers it with r.
// Relative bindings add their delta to the current value, clamped to [0,1].
func (v *Value) Bind(r *midi.Router, b midi.Binding, ctx func() *state.Context) error {
	if v.binding != nil {
		return fmt.Errorf("%w: %s has %s", ErrAlreadyBound, v.Name, v.binding)
	}
	v.binding = &b
	r.Add(b, func(x float64) {
		c := ctx()
		if c == nil {
			return
		}
		if b.Relative() {
			x = clamp01(v.Get(c) + x)
		}
		if v.Forward {
			if v.Sink != nil {
				v.Sink(c, x)
			}
			return
		}
		v.Input(c, x)
	})
	return nil
}

// Binding returns the decode rule, or nil when unbound.
func (v *Value) Binding() *midi.Binding { return v.binding }

// Get returns the current value.
func (v *Value) Get(ctx *state.Context) float64 { return v.value.Get(ctx) }

// Title returns the last title reported by the host.
func (v *Value) Title(ctx *state.Context) string { return v.title.Get(ctx) }

// DisplayText returns the last display text reported by the host.
func (v *Value) DisplayText(ctx *state.Context) string { return v.text.Get(ctx) }

// Store sets the value without notifying anyone.
func (v *Value) Store(ctx *state.Context, x float64) { v.value.Set(ctx, x) }

// Update applies a host-originated value change.
func (v *Value) Update(ctx *state.Context, x float64) {
	old := v.value.Get(ctx)
	v.value.Set(ctx, x)
	if v.OnValueChange != nil {
		v.OnValueChange(ctx, x, x-old)
	}
}

// Input applies a surface-originated value change and writes it back to the host.
func (v *Value) Input(ctx *state.Context, x float64) {
	old := v.value.Get(ctx)
	v.value.Set(ctx, x)
	if v.Sink != nil {
		v.Sink(ctx, x)
	}
	if v.OnValueChange != nil {
		v.OnValueChange(ctx, x, x-old)
	}
}

// SetDisplayText applies a host display text change.
func (v *Value) SetDisplayText(ctx *state.Context, text, units string) {
	v.text.Set(ctx, text)
	if v.OnDisplayText != nil {
		v.OnDisplayText(ctx, text, units)
	}
}

// SetTitle applies a host title change.
func (v *Value) SetTitle(ctx *state.Context, title, secondary string) {
	v.title.Set(ctx, title)
	if v.OnTitle != nil {
		v.OnTitle(ctx, title, secondary)
	}
}

// SetColor applies a host color change.
func (v *Value) SetColor(ctx *state.Context, c Color, active bool) {
	if v.OnColor != nil {
		v.OnColor(ctx, c, active)
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
