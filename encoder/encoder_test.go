package encoder

import (
	"bytes"
	"math"
	"testing"
	"time"

	"go-mackie/control"
	"go-mackie/midi"
	"go-mackie/state"
)

func newUnit() (*midi.PortPair, *midi.Recorder) {
	rec := &midi.Recorder{}
	return midi.NewPortPair(0, midi.Primary, "test", rec), rec
}

func TestRingByte(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		v    float64
		want uint8
	}{
		{"single zero", SingleDot, 0, 0x01},
		{"single center", SingleDot, 0.5, 0x40 | 0x06},
		{"single full", SingleDot, 1, 0x0B},
		{"boost/cut center", BoostCut, 0.5, 0x40 | 0x10 | 0x06},
		{"wrap quarter", Wrap, 0.25, 0x20 | 0x04},
		{"spread zero lights center", Spread, 0, 0x40 | 0x30 | 0x01},
		{"spread full", Spread, 1, 0x30 | 0x06},
		{"spread half", Spread, 0.5, 0x30 | 0x04},
		{"clamped above", SingleDot, 2, 0x0B},
		{"clamped below", SingleDot, -1, 0x01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RingByte(tt.mode, tt.v); got != tt.want {
				t.Errorf("RingByte(%v, %v) = %#02x, want %#02x", tt.mode, tt.v, got, tt.want)
			}
		})
	}
}

func TestRing_Render(t *testing.T) {
	unit, rec := newUnit()
	ctx := state.NewContext("s", nil)
	pan := control.NewValue("strip/3/pan")
	r := NewRing(unit, 3, BoostCut, pan)

	pan.Update(ctx, 0.5)
	if want := []byte{0xB0, 0x33, 0x56}; !bytes.Equal(rec.Last(), want) {
		t.Fatalf("frame = % X, want % X", rec.Last(), want)
	}

	r.SetMode(ctx, Spread)
	if want := []byte{0xB0, 0x33, 0x34}; !bytes.Equal(rec.Last(), want) {
		t.Errorf("after SetMode frame = % X, want % X", rec.Last(), want)
	}
	if got := r.Mode(ctx); got != Spread {
		t.Errorf("Mode() = %v, want spread", got)
	}
}

func TestParseMode(t *testing.T) {
	for m := SingleDot; m <= Spread; m++ {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("zigzag"); err == nil {
		t.Error("ParseMode(zigzag) should fail")
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		x    float64
		want uint8
	}{
		{1, 14},
		{0, 0},
		{-1, 0},
		{math.NaN(), 0},
		{2, 14},
	}
	for _, tt := range tests {
		if got := Level(tt.x); got != tt.want {
			t.Errorf("Level(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}

	// Monotonic over the unit range.
	prev := Level(0)
	for i := 1; i <= 100; i++ {
		l := Level(float64(i) / 100)
		if l < prev {
			t.Fatalf("Level not monotonic at %v: %d < %d", float64(i)/100, l, prev)
		}
		prev = l
	}
}

func TestMeter_Throttle(t *testing.T) {
	unit, rec := newUnit()
	clock := state.NewManualClock(time.Unix(1000, 0))
	ctx := state.NewContext("s", clock)
	v := control.NewValue("strip/2/meter")
	NewMeter(unit, 2, v)

	v.Update(ctx, 0.2)
	clock.Advance(50 * time.Millisecond)
	v.Update(ctx, 0.5)

	if rec.Len() != 1 {
		t.Fatalf("frames = %d, want 1", rec.Len())
	}
	if want := []byte{0xD0, 0x20 | Level(0.2)}; !bytes.Equal(rec.Last(), want) {
		t.Errorf("frame = % X, want % X", rec.Last(), want)
	}

	clock.Advance(75 * time.Millisecond)
	v.Update(ctx, 1)
	if rec.Len() != 2 {
		t.Fatalf("frames after window = %d, want 2", rec.Len())
	}
	if want := []byte{0xD0, 0x2E}; !bytes.Equal(rec.Last(), want) {
		t.Errorf("frame = % X, want % X", rec.Last(), want)
	}
}

func TestMeter_ChannelsThrottleIndependently(t *testing.T) {
	unit, rec := newUnit()
	ctx := state.NewContext("s", state.NewManualClock(time.Unix(0, 0)))
	a := control.NewValue("strip/0/meter")
	b := control.NewValue("strip/1/meter")
	NewMeter(unit, 0, a)
	NewMeter(unit, 1, b)

	a.Update(ctx, 1)
	b.Update(ctx, 1)

	if rec.Len() != 2 {
		t.Errorf("frames = %d, want 2", rec.Len())
	}
}

type jogRig struct {
	ctx  *state.Context
	jog  *Jog
	left *control.Value

	right *control.Value
	knob  *control.Value

	leftPulses  int
	rightPulses int
}

func newJogRig() *jogRig {
	r := &jogRig{
		ctx:   state.NewContext("s", nil),
		left:  control.NewValue("jog/left"),
		right: control.NewValue("jog/right"),
		knob:  control.NewValue("jog/knob"),
	}
	r.left.Sink = func(*state.Context, float64) { r.leftPulses++ }
	r.right.Sink = func(*state.Context, float64) { r.rightPulses++ }
	r.jog = NewJog(control.NewValue("jog/mode"), r.knob, r.left, r.right)
	return r
}

func TestJog_PulsePerEvent(t *testing.T) {
	r := newJogRig()

	r.jog.OnDelta(r.ctx, 5.0/128)
	r.jog.OnDelta(r.ctx, 1.0/128)
	r.jog.OnDelta(r.ctx, -40.0/128)

	if r.rightPulses != 2 || r.leftPulses != 1 {
		t.Errorf("pulses right=%d left=%d, want 2 and 1", r.rightPulses, r.leftPulses)
	}
	if r.knob.Get(r.ctx) != 0 {
		t.Error("knob moved in jog mode")
	}
}

func TestJog_KnobMode(t *testing.T) {
	r := newJogRig()
	r.jog.Mode.Update(r.ctx, 1)
	r.knob.Update(r.ctx, 0.5)

	r.jog.OnDelta(r.ctx, 0.05)
	if got := r.knob.Get(r.ctx); math.Abs(got-0.55) > 1e-9 {
		t.Errorf("knob = %v, want 0.55", got)
	}

	// Saturating the proxy snaps it back without counting the snap as motion.
	for i := 0; i < 20; i++ {
		r.jog.OnDelta(r.ctx, 0.05)
	}
	if got := r.knob.Get(r.ctx); got != 1 {
		t.Errorf("knob = %v, want clamped to 1", got)
	}
	if p := r.jog.Proxy(r.ctx); p <= 0 || p >= 1 {
		t.Errorf("proxy %v saturated", p)
	}
	if r.leftPulses+r.rightPulses != 0 {
		t.Error("pulses sent in knob mode")
	}
}

func TestJog_SnapKeepsMotion(t *testing.T) {
	r := newJogRig()
	r.jog.Mode.Update(r.ctx, 1)

	tests := []struct {
		name  string
		delta float64
		proxy float64
		knob  float64
	}{
		{"inside the band", 0.15, 0.65, 0.15},
		// 0.65 snaps back to 0.5 first, so the fast spin keeps its full size.
		{"fast spin after drift", 0.45, 0.95, 0.60},
		{"spin back from the top", -0.45, 0.10, 0.15},
		// 0.10 snaps up by Snap but no further than the middle.
		{"spin down from the bottom", -0.10, 0.40, 0.05},
	}
	for _, tt := range tests {
		r.jog.OnDelta(r.ctx, tt.delta)
		if got := r.jog.Proxy(r.ctx); math.Abs(got-tt.proxy) > 1e-9 {
			t.Errorf("%s: proxy = %v, want %v", tt.name, got, tt.proxy)
		}
		if got := r.knob.Get(r.ctx); math.Abs(got-tt.knob) > 1e-9 {
			t.Errorf("%s: knob = %v, want %v", tt.name, got, tt.knob)
		}
	}
}

func TestJog_Bind(t *testing.T) {
	r := newJogRig()
	router := midi.NewRouter()
	r.jog.Bind(router, func() *state.Context { return r.ctx })

	router.Dispatch([]byte{0xB0, midi.CCJog, 0x41})
	router.Dispatch([]byte{0xB0, midi.CCJog, 0x01})

	if r.leftPulses != 1 || r.rightPulses != 1 {
		t.Errorf("pulses right=%d left=%d, want 1 and 1", r.rightPulses, r.leftPulses)
	}
}
