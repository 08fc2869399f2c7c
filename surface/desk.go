// Package surface wires the control graph of a whole desk and runs the
// serialized event loop that drives it.
package surface

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go-mackie/config"
	"go-mackie/control"
	"go-mackie/display"
	"go-mackie/encoder"
	"go-mackie/fader"
	"go-mackie/midi"
	"go-mackie/state"
	"go-mackie/timer"
)

// Options tunes a Desk.
type Options struct {
	RingMode  encoder.Mode
	Throttle  time.Duration
	Snap      float64
	Step      float64
	Flash     float64
	Width     int
	Localizer *display.Localizer
}

// DefaultOptions matches the hardware defaults.
func DefaultOptions() Options {
	return Options{
		RingMode: encoder.SingleDot,
		Throttle: encoder.DefaultThrottle,
		Snap:     encoder.DefaultSnap,
		Step:     midi.RelativeStep,
		Flash:    display.DefaultFlash,
		Width:    midi.StripWidth,
	}
}

// OptionsFromConfig builds options from the display, meter and jog sections.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	mode, err := encoder.ParseMode(cfg.Display.RingMode)
	if err != nil {
		return Options{}, err
	}
	return Options{
		RingMode:  mode,
		Throttle:  cfg.Meter.Throttle,
		Snap:      cfg.Jog.Snap,
		Step:      cfg.Jog.Step,
		Flash:     cfg.Display.Flash,
		Width:     cfg.Display.Width,
		Localizer: display.NewLocalizer(cfg.Display.Values, cfg.Display.Titles),
	}, nil
}

// SinkFunc receives every surface-originated write to a host parameter.
type SinkFunc func(ctx *state.Context, param string, value float64)

// Desk is the control graph of every unit. It is built once; all of its
// state lives in the context passed to each call.
type Desk struct {
	Units    []*midi.PortPair
	Timer    *timer.Timer
	Faders   *fader.Group
	Strips   *display.Strips
	Segments *display.Segments
	Jog      *encoder.Jog
	Rings    []*encoder.Ring
	Meters   []*encoder.Meter
	Buttons  []*Button

	// Surface toggles on the primary unit.
	ValueMode *Button
	Motors    *Button
	KnobMode  *Button

	current func() *state.Context
	sink    SinkFunc
	routers map[int]*midi.Router
	params  map[string]*control.Value
}

// NewDesk wires the controls of units, in desk order. Inbound messages are
// dropped until SetContext is called.
func NewDesk(units []*midi.PortPair, opts Options) (*Desk, error) {
	d := &Desk{
		Units:   units,
		Timer:   timer.New(),
		Faders:  fader.NewGroup(),
		routers: make(map[int]*midi.Router),
		params:  make(map[string]*control.Value),
	}
	d.Strips = display.NewStrips(d.Timer, opts.Localizer)
	d.Strips.Shaper = display.Shaper{Width: opts.Width}
	d.Strips.Flash = opts.Flash

	for _, u := range units {
		r := midi.NewRouter()
		r.SetRelativeStep(opts.Step)
		d.routers[u.Index] = r

		if err := d.wireUnit(u, r, opts); err != nil {
			return nil, err
		}
		if u.Role == midi.Primary {
			if err := d.wirePrimary(u, r, opts); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// param declares a host parameter.
func (d *Desk) param(name string) *control.Value {
	v := control.NewValue(name)
	v.Sink = func(ctx *state.Context, x float64) {
		if d.sink != nil {
			d.sink(ctx, name, x)
		}
	}
	d.params[name] = v
	return v
}

func (d *Desk) bind(r *midi.Router, v *control.Value, b midi.Binding) error {
	if err := v.Bind(r, b, d.context); err != nil {
		return fmt.Errorf("wiring %s: %w", v.Name, err)
	}
	return nil
}

// hostButton declares a button whose state the host owns.
func (d *Desk) hostButton(u *midi.PortPair, r *midi.Router, name string, note uint8) (*Button, error) {
	v := d.param(name)
	v.Forward = true
	shadow := control.NewValue(name + "/press")
	b := newButton(u, note, v, shadow)

	if err := d.bind(r, v, midi.NoteBinding(0, note)); err != nil {
		return nil, err
	}
	if err := d.bind(r, shadow, midi.NoteBinding(0, note)); err != nil {
		return nil, err
	}
	d.Buttons = append(d.Buttons, b)
	return b, nil
}

// latchButton declares a button that flips surface state on each press.
func (d *Desk) latchButton(u *midi.PortPair, r *midi.Router, name string, note uint8, l *Latch) (*Button, error) {
	shadow := control.NewValue(name + "/press")
	b := newButton(u, note, nil, shadow)
	b.Latch = l
	if err := d.bind(r, shadow, midi.NoteBinding(0, note)); err != nil {
		return nil, err
	}
	d.Buttons = append(d.Buttons, b)
	return b, nil
}

func (d *Desk) wireUnit(u *midi.PortPair, r *midi.Router, opts Options) error {
	for ch := uint8(0); ch < midi.ChannelsPerUnit; ch++ {
		n := u.Index*midi.ChannelsPerUnit + int(ch)
		prefix := fmt.Sprintf("strip/%d/", n)

		volume := d.param(prefix + "volume")
		touch := control.NewValue(prefix + "touch")
		d.Faders.Add(u, ch, volume, touch)
		if err := d.bind(r, volume, midi.PitchBendBinding(ch)); err != nil {
			return err
		}
		if err := d.bind(r, touch, midi.NoteBinding(0, midi.NoteTouch+ch)); err != nil {
			return err
		}

		pan := d.param(prefix + "pan")
		d.Rings = append(d.Rings, encoder.NewRing(u, ch, opts.RingMode, pan))
		d.Strips.Add(u, ch, pan)
		if err := d.bind(r, pan, midi.RelativeBinding(0, midi.CCVPot+ch)); err != nil {
			return err
		}

		m := encoder.NewMeter(u, ch, d.param(prefix+"meter"))
		m.Throttle = opts.Throttle
		d.Meters = append(d.Meters, m)

		buttons := []struct {
			name string
			note uint8
		}{
			{"select", midi.NoteSelect},
			{"mute", midi.NoteMute},
			{"solo", midi.NoteSolo},
			{"rec", midi.NoteRec},
			{"push", midi.NoteVPotPush},
		}
		for _, b := range buttons {
			if _, err := d.hostButton(u, r, prefix+b.name, b.note+ch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Desk) wirePrimary(u *midi.PortPair, r *midi.Router, opts Options) error {
	master := d.param("master/volume")
	touch := control.NewValue("master/touch")
	d.Faders.Add(u, midi.MasterChannel, master, touch)
	if err := d.bind(r, master, midi.PitchBendBinding(midi.MasterChannel)); err != nil {
		return err
	}
	if err := d.bind(r, touch, midi.NoteBinding(0, midi.NoteTouchMain)); err != nil {
		return err
	}

	transport := []struct {
		name string
		note uint8
	}{
		{"transport/rewind", midi.NoteRewind},
		{"transport/forward", midi.NoteForward},
		{"transport/stop", midi.NoteStop},
		{"transport/play", midi.NotePlay},
		{"transport/record", midi.NoteRecord},
		{"display/format", midi.NoteSMPTEBeat},
	}
	for _, t := range transport {
		if _, err := d.hostButton(u, r, t.name, t.note); err != nil {
			return err
		}
	}

	d.Segments = display.NewSegments(u)
	d.Segments.Follow(d.param("display/timecode"), d.param("display/assignment"))

	d.Jog = encoder.NewJog(d.param("jog/mode"), d.param("jog/knob"), d.param("jog/left"), d.param("jog/right"))
	d.Jog.Snap = opts.Snap
	d.Jog.Bind(r, d.context)

	var err error
	d.KnobMode, err = d.latchButton(u, r, "jog/mode", midi.NoteScrub, &Latch{
		Get: d.Jog.KnobMode,
		Set: func(ctx *state.Context, on bool) { d.Jog.Mode.Input(ctx, boolValue(on)) },
	})
	if err != nil {
		return err
	}
	d.Jog.Mode.OnValueChange = func(ctx *state.Context, _, _ float64) { d.KnobMode.Render(ctx) }

	d.ValueMode, err = d.latchButton(u, r, "display/valuemode", midi.NoteNameValue, &Latch{
		Get: d.Strips.ValueMode,
		Set: d.Strips.SetValueMode,
	})
	if err != nil {
		return err
	}

	d.Motors, err = d.latchButton(u, r, "fader/motors", midi.NoteMotors, &Latch{
		Get: d.Faders.MotorsEnabled,
		Set: d.Faders.SetMotorsEnabled,
	})
	return err
}

// SetContext sets the function returning the context inbound messages are
// applied to. A nil context drops the message.
func (d *Desk) SetContext(current func() *state.Context) { d.current = current }

func (d *Desk) context() *state.Context {
	if d.current == nil {
		return nil
	}
	return d.current()
}

// SetSink sets where surface-originated parameter writes go.
func (d *Desk) SetSink(sink SinkFunc) { d.sink = sink }

// Param returns a host parameter by id.
func (d *Desk) Param(id string) (*control.Value, bool) {
	v, ok := d.params[id]
	return v, ok
}

// Params returns every parameter id, sorted.
func (d *Desk) Params() []string {
	ids := make([]string, 0, len(d.params))
	for id := range d.params {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Strip returns the parameter ids of one strip.
func (d *Desk) Strip(n int) []string {
	prefix := fmt.Sprintf("strip/%d/", n)
	var ids []string
	for _, id := range d.Params() {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Dispatch decodes one inbound message from a unit. It returns the number
// of controls that received it.
func (d *Desk) Dispatch(unit int, msg []byte) int {
	r, ok := d.routers[unit]
	if !ok {
		return 0
	}
	return r.Dispatch(msg)
}

// Resync rewrites the complete state of one unit, or of every unit when
// unit is negative.
func (d *Desk) Resync(ctx *state.Context, unit int) {
	match := func(p *midi.PortPair) bool { return unit < 0 || p.Index == unit }

	for _, f := range d.Faders.Faders() {
		if match(f.Unit) {
			f.Resync(ctx)
		}
	}
	for _, r := range d.Rings {
		if match(r.Unit) {
			r.Render(ctx, r.Value.Get(ctx))
		}
	}
	for _, s := range d.Strips.Strips() {
		if match(s.Unit) {
			s.Resync(ctx)
		}
	}
	for _, b := range d.Buttons {
		if match(b.Unit) {
			b.Render(ctx)
		}
	}
	if d.Segments != nil && match(d.Segments.Unit) {
		d.Segments.Resync(ctx)
	}
}
