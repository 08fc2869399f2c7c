package encoder

import (
	"math"

	"go-mackie/control"
	"go-mackie/midi"
	"go-mackie/state"
)

// DefaultSnap is how close the proxy may get to either end before it is
// moved back toward the middle.
const DefaultSnap = 0.4

// Jog decodes the jog wheel's relative stream.
//
// Deltas move a proxy position that starts at 0.5. Before a delta is
// applied, a proxy within Snap of either end is moved back by Snap, no
// further than the middle, and the move is not counted as motion. In knob
// mode the motion is added to Knob; otherwise each event sends one pulse
// to Left or Right.
type Jog struct {
	Snap float64

	// Mode is nonzero for knob mode.
	Mode  *control.Value
	Knob  *control.Value
	Left  *control.Value
	Right *control.Value

	proxy state.Slot[float64]
}

// NewJog creates a jog decoder over its four values.
func NewJog(mode, knob, left, right *control.Value) *Jog {
	return &Jog{
		Snap:  DefaultSnap,
		Mode:  mode,
		Knob:  knob,
		Left:  left,
		Right: right,
		proxy: state.Float("jog.proxy", 0.5),
	}
}

// Bind routes the wheel's signed-bit controller to the decoder.
func (j *Jog) Bind(r *midi.Router, ctx func() *state.Context) {
	r.Add(midi.RelativeBinding(0, midi.CCJog), func(delta float64) {
		if c := ctx(); c != nil {
			j.OnDelta(c, delta)
		}
	})
}

// Proxy returns the current proxy position.
func (j *Jog) Proxy(ctx *state.Context) float64 { return j.proxy.Get(ctx) }

// KnobMode reports whether motion is applied to Knob.
func (j *Jog) KnobMode(ctx *state.Context) bool { return j.Mode.Get(ctx) > 0 }

// OnDelta handles one relative event.
func (j *Jog) OnDelta(ctx *state.Context, delta float64) {
	proxy := j.proxy.Get(ctx)
	switch {
	case proxy < j.Snap:
		proxy = math.Min(proxy+j.Snap, 0.5)
	case proxy > 1-j.Snap:
		proxy = math.Max(proxy-j.Snap, 0.5)
	}
	next := clamp01(proxy + delta)
	diff := next - proxy
	j.proxy.Set(ctx, next)

	if diff == 0 {
		return
	}
	if j.KnobMode(ctx) {
		j.Knob.Input(ctx, clamp01(j.Knob.Get(ctx)+diff))
		return
	}
	if diff < 0 {
		j.Left.Input(ctx, 1)
	} else {
		j.Right.Input(ctx, 1)
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
