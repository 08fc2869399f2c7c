// Package encoder renders V-Pot LED rings and channel meters, and decodes
// the jog wheel.
package encoder

import (
	"fmt"
	"math"

	"go-mackie/control"
	"go-mackie/midi"
	"go-mackie/state"
)

// Mode selects how a ring lays out its LEDs.
type Mode uint8

const (
	SingleDot Mode = iota
	BoostCut
	Wrap
	Spread
)

func (m Mode) String() string {
	switch m {
	case BoostCut:
		return "boost/cut"
	case Wrap:
		return "wrap"
	case Spread:
		return "spread"
	}
	return "single"
}

// ParseMode parses the names printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	for m := SingleDot; m <= Spread; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return SingleDot, fmt.Errorf("encoder: unknown ring mode %q", s)
}

// RingByte packs a value into the ring frame data byte:
// bit 6 center LED, bits 4-5 mode, bits 0-3 position.
func RingByte(mode Mode, v float64) uint8 {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	center := 0.5
	steps := 10.0
	if mode == Spread {
		center, steps = 0, 5
	}

	var b uint8
	if v == center {
		b |= 0x40
	}
	b |= uint8(mode&0x03) << 4
	b |= uint8(1+math.Round(v*steps)) & 0x0F
	return b
}

// Ring drives one V-Pot LED ring from a value.
type Ring struct {
	Unit    *midi.PortPair
	Channel uint8
	Value   *control.Value

	mode state.Slot[int64]
	def  Mode
}

// NewRing creates a ring and takes over value's change callback.
func NewRing(unit *midi.PortPair, channel uint8, mode Mode, value *control.Value) *Ring {
	r := &Ring{
		Unit:    unit,
		Channel: channel,
		Value:   value,
		mode:    state.Int(fmt.Sprintf("ring.%d.%d.mode", unit.Index, channel), int64(mode)),
		def:     mode,
	}
	value.OnValueChange = func(ctx *state.Context, v, _ float64) { r.Render(ctx, v) }
	return r
}

// Mode returns the ring mode in effect for ctx.
func (r *Ring) Mode(ctx *state.Context) Mode {
	m := r.mode.Get(ctx)
	if m < int64(SingleDot) || m > int64(Spread) {
		return r.def
	}
	return Mode(m)
}

// SetMode changes the ring mode and redraws the ring.
func (r *Ring) SetMode(ctx *state.Context, m Mode) {
	r.mode.Set(ctx, int64(m))
	r.Render(ctx, r.Value.Get(ctx))
}

// Render emits the ring frame for v.
func (r *Ring) Render(ctx *state.Context, v float64) {
	r.Unit.SendControlChange(ctx, midi.CCRing+r.Channel, RingByte(r.Mode(ctx), v))
}
