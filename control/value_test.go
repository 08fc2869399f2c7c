package control

import (
	"errors"
	"testing"

	"go-mackie/midi"
	"go-mackie/state"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestValue_UpdateFiresOnceWithDiff(t *testing.T) {
	ctx := state.NewContext("s", nil)
	v := NewValue("strip/0/volume")
	v.Store(ctx, 0.25)

	var calls int
	var gotValue, gotDiff float64
	v.OnValueChange = func(_ *state.Context, value, diff float64) {
		calls++
		gotValue, gotDiff = value, diff
	}

	v.Update(ctx, 0.75)

	if calls != 1 {
		t.Fatalf("OnValueChange called %d times, want 1", calls)
	}
	if gotValue != 0.75 || gotDiff != 0.5 {
		t.Errorf("got (%v, %v), want (0.75, 0.5)", gotValue, gotDiff)
	}
}

func TestValue_InputWritesBackBeforeCallback(t *testing.T) {
	ctx := state.NewContext("s", nil)
	v := NewValue("transport/play")

	var order []string
	v.Sink = func(_ *state.Context, x float64) { order = append(order, "sink") }
	v.OnValueChange = func(_ *state.Context, _, _ float64) { order = append(order, "change") }

	v.Input(ctx, 1)

	if len(order) != 2 || order[0] != "sink" || order[1] != "change" {
		t.Errorf("order = %v, want [sink change]", order)
	}
}

func TestValue_BindDecodesBeforeCallback(t *testing.T) {
	ctx := state.NewContext("s", nil)
	r := midi.NewRouter()
	v := NewValue("strip/0/volume")

	var got float64
	v.OnValueChange = func(_ *state.Context, value, _ float64) { got = value }

	if err := v.Bind(r, midi.PitchBendBinding(0), func() *state.Context { return ctx }); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	r.Dispatch(gomidi.Message{0xE0, 0x7F, 0x7F})

	if got != 1 {
		t.Errorf("value = %v, want 1", got)
	}
}

func TestValue_SecondBindingRejected(t *testing.T) {
	r := midi.NewRouter()
	v := NewValue("x")
	ctx := func() *state.Context { return nil }

	if err := v.Bind(r, midi.CCBinding(0, 1), ctx); err != nil {
		t.Fatalf("first Bind: %v", err)
	}
	if err := v.Bind(r, midi.CCBinding(0, 2), ctx); !errors.Is(err, ErrAlreadyBound) {
		t.Errorf("second Bind err = %v, want ErrAlreadyBound", err)
	}
}

func TestValue_RelativeBindingClamps(t *testing.T) {
	ctx := state.NewContext("s", nil)
	r := midi.NewRouter()
	v := NewValue("strip/0/pan")
	v.Store(ctx, 0.99)
	v.Bind(r, midi.RelativeBinding(0, midi.CCVPot), func() *state.Context { return ctx })

	r.Dispatch(gomidi.Message{0xB0, midi.CCVPot, 0x0F})

	if got := v.Get(ctx); got != 1 {
		t.Errorf("value = %v, want clamped 1", got)
	}
}

func TestValue_TitleAndText(t *testing.T) {
	ctx := state.NewContext("s", nil)
	v := NewValue("strip/0/volume")
	var title, secondary, text, units string
	v.OnTitle = func(_ *state.Context, a, b string) { title, secondary = a, b }
	v.OnDisplayText = func(_ *state.Context, a, b string) { text, units = a, b }

	v.SetTitle(ctx, "Volume", "Audio 01")
	v.SetDisplayText(ctx, "-6.0", "dB")

	if title != "Volume" || secondary != "Audio 01" || v.Title(ctx) != "Volume" {
		t.Errorf("title = %q/%q", title, secondary)
	}
	if text != "-6.0" || units != "dB" || v.DisplayText(ctx) != "-6.0" {
		t.Errorf("text = %q/%q", text, units)
	}
}

func TestValue_ForwardLeavesStateToHost(t *testing.T) {
	ctx := state.NewContext("s", nil)
	r := midi.NewRouter()
	v := NewValue("strip/0/mute")
	v.Forward = true

	var sent []float64
	changes := 0
	v.Sink = func(_ *state.Context, x float64) { sent = append(sent, x) }
	v.OnValueChange = func(*state.Context, float64, float64) { changes++ }
	v.Bind(r, midi.NoteBinding(0, midi.NoteMute), func() *state.Context { return ctx })

	r.Dispatch(gomidi.Message{0x90, midi.NoteMute, 0x7F})
	r.Dispatch(gomidi.Message{0x90, midi.NoteMute, 0x00})

	if len(sent) != 2 || sent[0] != 1 || sent[1] != 0 {
		t.Errorf("sent = %v, want [1 0]", sent)
	}
	if changes != 0 || v.Get(ctx) != 0 {
		t.Errorf("forwarded input changed local state (changes=%d value=%v)", changes, v.Get(ctx))
	}

	v.Update(ctx, 1)
	if changes != 1 {
		t.Error("host update did not fire OnValueChange")
	}
}
