package display

import (
	"fmt"

	"go-mackie/control"
	"go-mackie/debug"
	"go-mackie/midi"
	"go-mackie/state"
	"go-mackie/timer"
)

// DefaultFlash is how long a value stays on a strip after it changed, in seconds.
const DefaultFlash = 1.0

// Rows of the scribble strip.
const (
	RowTop    = 0
	RowBottom = 1
)

// Strips holds the scribble strips that share the global value mode.
type Strips struct {
	Timer     *timer.Timer
	Shaper    Shaper
	Localizer *Localizer
	Flash     float64

	valueMode state.Slot[bool]
	strips    []*Strip
}

// NewStrips creates a strip group that schedules its flashes on t.
func NewStrips(t *timer.Timer, loc *Localizer) *Strips {
	return &Strips{
		Timer:     t,
		Shaper:    DefaultShaper,
		Localizer: loc,
		Flash:     DefaultFlash,
		valueMode: state.Bool("strip.valuemode", false),
	}
}

// Strip is one channel's two-row text cell.
type Strip struct {
	Unit    *midi.PortPair
	Channel uint8
	Value   *control.Value

	group     *Strips
	timerID   string
	name      state.Slot[string]
	text      state.Slot[string]
	secondary state.Slot[string]
	flashing  state.Slot[bool]
}

// Add creates a strip following value's title and display text.
func (g *Strips) Add(unit *midi.PortPair, channel uint8, value *control.Value) *Strip {
	prefix := fmt.Sprintf("strip.%d.%d.", unit.Index, channel)
	s := &Strip{
		Unit:      unit,
		Channel:   channel,
		Value:     value,
		group:     g,
		timerID:   prefix + "flash",
		name:      state.String(prefix+"name", ""),
		text:      state.String(prefix+"text", ""),
		secondary: state.String(prefix+"secondary", ""),
		flashing:  state.Bool(prefix+"flashing", false),
	}
	value.OnDisplayText = func(ctx *state.Context, text, _ string) { s.OnDisplayText(ctx, text) }
	value.OnTitle = func(ctx *state.Context, title, secondary string) { s.OnTitle(ctx, title, secondary) }
	g.strips = append(g.strips, s)
	return s
}

// Strips returns every strip in the group.
func (g *Strips) Strips() []*Strip { return g.strips }

// ValueMode reports whether every strip shows values.
func (g *Strips) ValueMode(ctx *state.Context) bool { return g.valueMode.Get(ctx) }

// SetValueMode switches all strips between names and values.
func (g *Strips) SetValueMode(ctx *state.Context, on bool) {
	if g.valueMode.Get(ctx) == on {
		return
	}
	g.valueMode.Set(ctx, on)
	for _, s := range g.strips {
		s.Refresh(ctx)
	}
}

// OnDisplayText flashes the new value and schedules the return to the name.
func (s *Strip) OnDisplayText(ctx *state.Context, text string) {
	shaped := s.group.Shaper.Shape(s.group.Localizer.Value(text))
	s.text.Set(ctx, shaped)
	s.flashing.Set(ctx, true)
	s.Refresh(ctx)
	s.group.Timer.SetTimeout(ctx, s.timerID, s.revert, s.group.Flash)
}

// OnTitle shows the new name at once, ending any flash.
func (s *Strip) OnTitle(ctx *state.Context, title, secondary string) {
	s.name.Set(ctx, s.group.Shaper.Shape(s.group.Localizer.Title(title)))
	s.flashing.Set(ctx, false)

	top := s.group.Shaper.Shape(secondary)
	if top != s.secondary.Get(ctx) || !s.secondary.IsSet(ctx) {
		s.secondary.Set(ctx, top)
		s.writeRow(ctx, RowTop, top)
	}
	s.Refresh(ctx)
}

func (s *Strip) revert(ctx *state.Context) {
	s.flashing.Set(ctx, false)
	s.Refresh(ctx)
}

// Flashing reports whether the strip is showing a value change.
func (s *Strip) Flashing(ctx *state.Context) bool { return s.flashing.Get(ctx) }

// Shown returns the bottom row text.
func (s *Strip) Shown(ctx *state.Context) string {
	if s.flashing.Get(ctx) || s.group.ValueMode(ctx) {
		return s.text.Get(ctx)
	}
	return s.name.Get(ctx)
}

// Refresh writes the bottom row.
func (s *Strip) Refresh(ctx *state.Context) {
	s.writeRow(ctx, RowBottom, s.Shown(ctx))
}

// Resync writes both rows regardless of what was sent before.
func (s *Strip) Resync(ctx *state.Context) {
	s.writeRow(ctx, RowTop, s.secondary.Get(ctx))
	s.Refresh(ctx)
}

func (s *Strip) writeRow(ctx *state.Context, row int, text string) {
	text = s.group.Shaper.Center(text)
	offset := row*midi.ChannelsPerUnit*midi.StripWidth + int(s.Channel)*midi.StripWidth

	body := make([]byte, 0, 2+len(text))
	body = append(body, midi.SysExStrip, byte(offset))
	body = append(body, text...)
	debug.Log("strip", "unit %d ch %d row %d %q", s.Unit.Index, s.Channel, row, text)
	s.Unit.SendSysex(ctx, body)
}
