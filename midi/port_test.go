package midi

import (
	"bytes"
	"testing"

	"go-mackie/state"
)

func assertFrame(t testing.TB, got, want []byte) {
	t.Helper()
	if !bytes.Equal(got, want) {
		t.Errorf("frame = % X, want % X", got, want)
	}
}

func TestPortPair_Frames(t *testing.T) {
	tests := []struct {
		name string
		role UnitRole
		send func(p *PortPair, ctx *state.Context)
		want []byte
	}{
		{
			name: "led on uses 0xFF",
			send: func(p *PortPair, ctx *state.Context) { p.SendLED(ctx, NotePlay, true) },
			want: []byte{0x90, 0x5E, 0xFF},
		},
		{
			name: "led off",
			send: func(p *PortPair, ctx *state.Context) { p.SendLED(ctx, NotePlay, false) },
			want: []byte{0x90, 0x5E, 0x00},
		},
		{
			name: "literal velocity",
			send: func(p *PortPair, ctx *state.Context) { p.SendNoteOn(ctx, 0x10, 0x7F) },
			want: []byte{0x90, 0x10, 0x7F},
		},
		{
			name: "sysex primary",
			send: func(p *PortPair, ctx *state.Context) { p.SendSysex(ctx, []byte{0x12, 0x00, 'A'}) },
			want: []byte{0xF0, 0x00, 0x00, 0x66, 0x14, 0x12, 0x00, 'A', 0xF7},
		},
		{
			name: "sysex extension",
			role: Extension,
			send: func(p *PortPair, ctx *state.Context) { p.SendSysex(ctx, []byte{0x12, 0x00, 'A'}) },
			want: []byte{0xF0, 0x00, 0x00, 0x66, 0x15, 0x12, 0x00, 'A', 0xF7},
		},
		{
			name: "pitch bend full scale",
			send: func(p *PortPair, ctx *state.Context) { p.SendPitchBend(ctx, 3, 1) },
			want: []byte{0xE3, 0x7F, 0x7F},
		},
		{
			name: "pitch bend center",
			send: func(p *PortPair, ctx *state.Context) { p.SendPitchBend(ctx, 0, 0.5) },
			want: []byte{0xE0, 0x00, 0x40},
		},
		{
			name: "pitch bend zero",
			send: func(p *PortPair, ctx *state.Context) { p.SendPitchBend(ctx, 8, 0) },
			want: []byte{0xE8, 0x00, 0x00},
		},
		{
			name: "control change",
			send: func(p *PortPair, ctx *state.Context) { p.SendControlChange(ctx, CCRing, 0x16) },
			want: []byte{0xB0, 0x30, 0x16},
		},
		{
			name: "channel pressure",
			send: func(p *PortPair, ctx *state.Context) { p.SendChannelPressure(ctx, 0x3E) },
			want: []byte{0xD0, 0x3E},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Recorder{}
			p := NewPortPair(0, tt.role, "test", rec)
			tt.send(p, state.NewContext("s", nil))

			if rec.Len() != 1 {
				t.Fatalf("frames = %d, want 1", rec.Len())
			}
			assertFrame(t, rec.Last(), tt.want)
		})
	}
}

func TestPortPair_InactiveContextDropsFrames(t *testing.T) {
	rec := &Recorder{}
	p := NewPortPair(0, Primary, "test", rec)
	ctx := state.NewContext("s", nil)
	ctx.Deactivate()

	p.SendLED(ctx, NotePlay, true)

	if rec.Len() != 0 {
		t.Errorf("frames = %d, want 0 for inactive context", rec.Len())
	}
}

func TestPortPair_GateDropsFrames(t *testing.T) {
	rec := &Recorder{}
	p := NewPortPair(0, Primary, "test", rec)
	focused := state.NewContext("a", nil)
	other := state.NewContext("b", nil)
	p.SetGate(func(ctx *state.Context) bool { return ctx == focused })

	p.SendLED(other, NotePlay, true)
	p.SendLED(focused, NotePlay, true)

	if rec.Len() != 1 {
		t.Errorf("frames = %d, want only the focused context's frame", rec.Len())
	}
}

func TestPortPair_MirrorGetsCopy(t *testing.T) {
	rec := &Recorder{}
	mirror := &Recorder{}
	p := NewPortPair(0, Primary, "test", rec)
	p.SetMirror(mirror)

	p.SendControlChange(nil, CCSegment, 0x35)

	if rec.Len() != 1 || mirror.Len() != 1 {
		t.Errorf("out=%d mirror=%d, want 1 and 1", rec.Len(), mirror.Len())
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    UnitRole
		wantErr bool
	}{
		{"primary", Primary, false},
		{"", Primary, false},
		{"Extension", Extension, false},
		{"xt", Extension, false},
		{"sidecar", Primary, true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
