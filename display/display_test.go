package display

import (
	"bytes"
	"testing"
	"time"

	"go-mackie/control"
	"go-mackie/midi"
	"go-mackie/state"
	"go-mackie/timer"
)

func TestStripNonASCII(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Volume", "Volume"},
		{"Éteint", "Eteint"},
		{"Lautstärke", "Lautstarke"},
		{"Ça va", "Ca va"},
		{"音量 Vol", " Vol"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripNonASCII(tt.in); got != tt.want {
			t.Errorf("StripNonASCII(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShaper(t *testing.T) {
	s := DefaultShaper
	tests := []struct {
		name, in, want string
	}{
		{"short centered", "Pan", "  Pan  "},
		{"exact", "Volume1", "Volume1"},
		{"spaces removed", "Audio 01", "Audio01"},
		{"vowels removed", "Reverberation", "Rvrbrtn"},
		{"truncated", "XYZXYZXYZ", "XYZXYZX"},
		{"empty", "", "       "},
		{"accent", "Éteint", "Eteint "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Shape(tt.in); got != tt.want {
				t.Errorf("Shape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocalizer(t *testing.T) {
	l := NewLocalizer(map[string]string{"Aus": "OFF"}, map[string]string{"Pegel": "Level"})

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"default value", l.Value("Éteint"), "Off"},
		{"override value", l.Value("Aus"), "OFF"},
		{"unknown value", l.Value("-6.0 dB"), "-6.0 dB"},
		{"trimmed", l.Value(" Ein "), "On"},
		{"default title", l.Title("Lautstärke"), "Volume"},
		{"added title", l.Title("Pegel"), "Level"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}

	var nilLoc *Localizer
	if got := nilLoc.Title("Pan"); got != "Pan" {
		t.Errorf("nil localizer changed text: %q", got)
	}
}

type stripRig struct {
	ctx   *state.Context
	clock *state.ManualClock
	rec   *midi.Recorder
	timer *timer.Timer
	group *Strips
	strip *Strip
	value *control.Value
}

func newStripRig() *stripRig {
	clock := state.NewManualClock(time.Unix(0, 0))
	rec := &midi.Recorder{}
	unit := midi.NewPortPair(0, midi.Primary, "test", rec)
	tm := timer.New()
	g := NewStrips(tm, NewLocalizer(nil, nil))
	v := control.NewValue("strip/1/pan")
	return &stripRig{
		ctx:   state.NewContext("s", clock),
		clock: clock,
		rec:   rec,
		timer: tm,
		group: g,
		strip: g.Add(unit, 1, v),
		value: v,
	}
}

func stripFrame(row, ch int, text string) []byte {
	b := []byte{0xF0, 0x00, 0x00, 0x66, 0x14, 0x12, byte(row*56 + ch*7)}
	b = append(b, text...)
	return append(b, 0xF7)
}

func TestStrip_TitleAndFlash(t *testing.T) {
	r := newStripRig()

	r.value.SetTitle(r.ctx, "Panorama", "Audio 01")
	frames := r.rec.Frames()
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want top and bottom row", len(frames))
	}
	if !bytes.Equal(frames[0], stripFrame(RowTop, 1, "Audio01")) {
		t.Errorf("top row = % X", frames[0])
	}
	if !bytes.Equal(frames[1], stripFrame(RowBottom, 1, "  Pan  ")) {
		t.Errorf("bottom row = % X", frames[1])
	}

	r.value.SetDisplayText(r.ctx, "L 20", "")
	if got := r.strip.Shown(r.ctx); got != " L 20  " {
		t.Errorf("Shown() after value = %q", got)
	}
	if !r.timer.Running(r.ctx) {
		t.Error("flash did not start the timer")
	}

	r.clock.Advance(time.Second)
	r.timer.Tick(r.ctx)
	if got := r.strip.Shown(r.ctx); got != "  Pan  " {
		t.Errorf("Shown() after flash = %q, want name", got)
	}
	if !bytes.Equal(r.rec.Last(), stripFrame(RowBottom, 1, "  Pan  ")) {
		t.Errorf("revert frame = % X", r.rec.Last())
	}
}

func TestStrip_TitleWinsOverPendingFlash(t *testing.T) {
	r := newStripRig()
	r.value.SetTitle(r.ctx, "Pan", "")
	r.value.SetDisplayText(r.ctx, "C", "")

	r.clock.Advance(300 * time.Millisecond)
	r.value.SetTitle(r.ctx, "Send A", "")

	if r.strip.Flashing(r.ctx) {
		t.Error("title change left the flash active")
	}
	if got := r.strip.Shown(r.ctx); got != "Send A " {
		t.Errorf("Shown() = %q, want name", got)
	}

	// The pending revert still fires and keeps the name.
	r.clock.Advance(time.Second)
	r.timer.Tick(r.ctx)
	if got := r.strip.Shown(r.ctx); got != "Send A " {
		t.Errorf("Shown() after revert = %q", got)
	}
}

func TestStrips_ValueMode(t *testing.T) {
	r := newStripRig()
	r.value.SetTitle(r.ctx, "Pan", "")
	r.value.SetDisplayText(r.ctx, "R 10", "")
	r.clock.Advance(time.Second)
	r.timer.Tick(r.ctx)

	r.group.SetValueMode(r.ctx, true)
	if got := r.strip.Shown(r.ctx); got != " R 10  " {
		t.Errorf("Shown() in value mode = %q", got)
	}
	if !bytes.Equal(r.rec.Last(), stripFrame(RowBottom, 1, " R 10  ")) {
		t.Errorf("value mode frame = % X", r.rec.Last())
	}

	n := r.rec.Len()
	r.group.SetValueMode(r.ctx, true)
	if r.rec.Len() != n {
		t.Error("setting the same mode refreshed the strips")
	}
}

func TestCellByte(t *testing.T) {
	tests := []struct {
		digit int
		dot   bool
		want  uint8
	}{
		{0, false, 0x30},
		{9, false, 0x39},
		{5, true, 0x75},
		{-1, false, 0x20},
		{-1, true, 0x60},
		{12, false, 0x20},
	}
	for _, tt := range tests {
		if got := CellByte(tt.digit, tt.dot); got != tt.want {
			t.Errorf("CellByte(%d, %v) = %#02x, want %#02x", tt.digit, tt.dot, got, tt.want)
		}
	}
}

func newSegments() (*Segments, *midi.Recorder, *state.Context) {
	rec := &midi.Recorder{}
	return NewSegments(midi.NewPortPair(0, midi.Primary, "test", rec)), rec, state.NewContext("s", nil)
}

func TestSegments_UpdateIsIdempotent(t *testing.T) {
	s, rec, ctx := newSegments()

	s.Update(ctx, 0, 5, false)
	s.Update(ctx, 0, 5, false)

	if rec.Len() != 1 {
		t.Fatalf("frames = %d, want 1", rec.Len())
	}
	if want := []byte{0xB0, 0x40, 0x35}; !bytes.Equal(rec.Last(), want) {
		t.Errorf("frame = % X, want % X", rec.Last(), want)
	}

	s.Update(ctx, 0, 5, true)
	if rec.Len() != 2 {
		t.Error("dot change not sent")
	}
}

func TestSegments_UpdateByString(t *testing.T) {
	s, rec, ctx := newSegments()

	s.UpdateByString(ctx, 0, TimecodeCells, "1.2.3.04")

	want := []int64{0x34, 0x30, 0x73, 0x72, 0x71, 0x20, 0x20, 0x20, 0x20, 0x20}
	for i, w := range want {
		if got := s.Cell(ctx, i); got != w {
			t.Errorf("cell %d = %#02x, want %#02x", i, got, w)
		}
	}
	if rec.Len() != TimecodeCells {
		t.Errorf("frames = %d, want %d", rec.Len(), TimecodeCells)
	}

	rec.Reset()
	s.UpdateByString(ctx, 0, TimecodeCells, "1.2.3.05")
	if rec.Len() != 1 {
		t.Errorf("frames for one changed digit = %d, want 1", rec.Len())
	}
}

func TestSegments_TimecodeLamps(t *testing.T) {
	s, rec, ctx := newSegments()

	s.Timecode(ctx, "00:01:02:03")
	if s.Format(ctx) != FormatSMPTE {
		t.Fatalf("Format() = %v, want SMPTE", s.Format(ctx))
	}
	frames := rec.Frames()
	if !bytes.Equal(frames[0], []byte{0x90, 0x71, 0xFF}) || !bytes.Equal(frames[1], []byte{0x90, 0x72, 0x00}) {
		t.Errorf("lamp frames = % X % X", frames[0], frames[1])
	}

	rec.Reset()
	s.Timecode(ctx, "00:01:02:04")
	if rec.Len() != 1 {
		t.Errorf("frames = %d, want only the changed digit", rec.Len())
	}

	s.Timecode(ctx, "2.1.1.00")
	if s.Format(ctx) != FormatBeats {
		t.Errorf("Format() = %v, want beats", s.Format(ctx))
	}
}

func TestSegments_Assignment(t *testing.T) {
	s, rec, ctx := newSegments()
	tc := control.NewValue("display/timecode")
	as := control.NewValue("display/assignment")
	s.Follow(tc, as)

	as.SetDisplayText(ctx, "1.2", "")

	if got := s.Cell(ctx, 10); got != 0x32 {
		t.Errorf("cell 10 = %#02x, want 0x32", got)
	}
	if got := s.Cell(ctx, 11); got != 0x71 {
		t.Errorf("cell 11 = %#02x, want 0x71", got)
	}
	if rec.Len() != 2 {
		t.Errorf("frames = %d, want 2", rec.Len())
	}
	if s.Cell(ctx, 0) != -1 {
		t.Error("assignment touched a timecode cell")
	}
}

func TestClassifyTime(t *testing.T) {
	tests := []struct {
		in   string
		want TimeFormat
	}{
		{"00:00:00:00", FormatSMPTE},
		{"01:02:03.456", FormatSMPTE},
		{"1.1.1.00", FormatBeats},
		{"-2.4.1", FormatBeats},
		{"hello", FormatUnknown},
		{"", FormatUnknown},
	}
	for _, tt := range tests {
		if got := ClassifyTime(tt.in); got != tt.want {
			t.Errorf("ClassifyTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
