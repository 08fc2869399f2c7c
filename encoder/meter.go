package encoder

import (
	"fmt"
	"math"
	"time"

	"go-mackie/control"
	"go-mackie/debug"
	"go-mackie/midi"
	"go-mackie/state"
)

// DefaultThrottle is the minimum spacing of meter frames on one channel.
const DefaultThrottle = 125 * time.Millisecond

// MaxLevel is the highest meter level.
const MaxLevel = 14

// Level compresses a linear meter value into 0..MaxLevel. The double log
// curve follows the host's own meter scale.
func Level(x float64) uint8 {
	y := 1 + math.Log10(0.1+0.9*(1+math.Log10(0.1+0.9*x)))
	l := math.Ceil(y*MaxLevel - 0.25)
	switch {
	case math.IsNaN(l) || l < 0:
		return 0
	case l > MaxLevel:
		return MaxLevel
	}
	return uint8(l)
}

// Meter drives one channel's VU meter. Updates arriving faster than
// Throttle are dropped, not queued.
type Meter struct {
	Unit     *midi.PortPair
	Channel  uint8
	Value    *control.Value
	Throttle time.Duration

	last state.Slot[int64]
}

// NewMeter creates a meter and takes over value's change callback.
func NewMeter(unit *midi.PortPair, channel uint8, value *control.Value) *Meter {
	m := &Meter{
		Unit:     unit,
		Channel:  channel,
		Value:    value,
		Throttle: DefaultThrottle,
		last:     state.Int(fmt.Sprintf("meter.%d.%d.last", unit.Index, channel), -1),
	}
	value.OnValueChange = func(ctx *state.Context, v, _ float64) { m.OnValue(ctx, v) }
	return m
}

// OnValue emits a meter frame unless one was sent within the throttle window.
// The frame is channel pressure [0xD0, channel<<4 | level], not a CC.
func (m *Meter) OnValue(ctx *state.Context, x float64) {
	now := ctx.Now().UnixMilli()
	if last := m.last.Get(ctx); last >= 0 && now-last < m.Throttle.Milliseconds() {
		return
	}
	m.last.Set(ctx, now)

	level := Level(x)
	debug.LogEvery(200, "meter", "unit %d ch %d level %d", m.Unit.Index, m.Channel, level)
	m.Unit.SendChannelPressure(ctx, m.Channel<<4|level)
}
