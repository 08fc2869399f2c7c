package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Kind selects how an inbound message is decoded into a value.
type Kind int

const (
	KindNote Kind = iota
	KindCC
	KindCCRelative
	KindCC14
	KindNRPN14
	KindPitchBend
	KindChannelPressure
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindCC:
		return "cc"
	case KindCCRelative:
		return "cc-relative"
	case KindCC14:
		return "cc14"
	case KindNRPN14:
		return "nrpn14"
	case KindPitchBend:
		return "pitchbend"
	case KindChannelPressure:
		return "pressure"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Binding is the inbound decode rule of one bound value.
// Absolute kinds decode to [0,1]; KindCCRelative decodes to a signed delta.
type Binding struct {
	Kind    Kind
	Channel uint8
	Number  uint8  // note or controller (MSB controller for KindCC14)
	Param   uint16 // NRPN parameter for KindNRPN14
}

func NoteBinding(ch, note uint8) Binding  { return Binding{Kind: KindNote, Channel: ch, Number: note} }
func CCBinding(ch, cc uint8) Binding      { return Binding{Kind: KindCC, Channel: ch, Number: cc} }
func RelativeBinding(ch, cc uint8) Binding { return Binding{Kind: KindCCRelative, Channel: ch, Number: cc} }
func CC14Binding(ch, msb uint8) Binding   { return Binding{Kind: KindCC14, Channel: ch, Number: msb} }
func NRPNBinding(ch uint8, param uint16) Binding {
	return Binding{Kind: KindNRPN14, Channel: ch, Param: param}
}
func PitchBendBinding(ch uint8) Binding { return Binding{Kind: KindPitchBend, Channel: ch} }
func PressureBinding(ch uint8) Binding  { return Binding{Kind: KindChannelPressure, Channel: ch} }

// Relative reports whether the binding produces deltas.
func (b Binding) Relative() bool { return b.Kind == KindCCRelative }

func (b Binding) String() string {
	switch b.Kind {
	case KindNRPN14:
		return fmt.Sprintf("%s ch=%d param=%d", b.Kind, b.Channel, b.Param)
	case KindPitchBend, KindChannelPressure:
		return fmt.Sprintf("%s ch=%d", b.Kind, b.Channel)
	}
	return fmt.Sprintf("%s ch=%d #%d", b.Kind, b.Channel, b.Number)
}

// RelativeStep is the value change of one relative tick.
const RelativeStep = 1.0 / 128

// SignedBit decodes a signed-bit relative controller value into ticks.
func SignedBit(v uint8) int {
	if v&0x40 != 0 {
		return -int(v & 0x3F)
	}
	return int(v & 0x3F)
}

// Sink receives a decoded value.
type Sink func(value float64)

type route struct {
	binding Binding
	sink    Sink
}

// Router decodes inbound messages of one unit and feeds the matching sinks.
// Several routes may share one binding; each gets the same decoded value.
type Router struct {
	routes []route
	step   float64

	cc14     map[[2]uint8]uint8 // (channel, msb controller) -> last MSB
	nrpn     [16]uint16
	nrpnData [16]uint8
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		step: RelativeStep,
		cc14: make(map[[2]uint8]uint8),
	}
}

// SetRelativeStep sets the value change of one relative tick.
func (r *Router) SetRelativeStep(step float64) {
	if step > 0 {
		r.step = step
	}
}

// Add registers sink for messages matching b.
func (r *Router) Add(b Binding, sink Sink) {
	r.routes = append(r.routes, route{binding: b, sink: sink})
}

// Len returns the number of routes.
func (r *Router) Len() int { return len(r.routes) }

// Dispatch decodes msg and calls every matching sink. It returns the number
// of sinks called.
func (r *Router) Dispatch(msg gomidi.Message) int {
	var ch, key, vel, cc, val uint8
	var rel int16
	var abs uint16

	var match func(b Binding) (float64, bool)

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		match = func(b Binding) (float64, bool) {
			return float64(vel) / 127, b.Kind == KindNote && b.Channel == ch && b.Number == key
		}
	case msg.GetNoteEnd(&ch, &key):
		match = func(b Binding) (float64, bool) {
			return 0, b.Kind == KindNote && b.Channel == ch && b.Number == key
		}
	case msg.GetControlChange(&ch, &cc, &val):
		match = r.controlChange(ch, cc, val)
	case msg.GetPitchBend(&ch, &rel, &abs):
		match = func(b Binding) (float64, bool) {
			return float64(abs) / 16383, b.Kind == KindPitchBend && b.Channel == ch
		}
	case msg.GetAfterTouch(&ch, &val):
		match = func(b Binding) (float64, bool) {
			return float64(val) / 127, b.Kind == KindChannelPressure && b.Channel == ch
		}
	default:
		return 0
	}

	fired := 0
	for _, rt := range r.routes {
		if v, ok := match(rt.binding); ok {
			rt.sink(v)
			fired++
		}
	}
	return fired
}

func (r *Router) controlChange(ch, cc, val uint8) func(b Binding) (float64, bool) {
	ch &= 0x0F
	// NRPN parameter select and data entry
	switch cc {
	case 99:
		r.nrpn[ch] = uint16(val)<<7 | r.nrpn[ch]&0x7F
	case 98:
		r.nrpn[ch] = r.nrpn[ch]&^0x7F | uint16(val)
	case 6:
		r.nrpnData[ch] = val
	}
	if cc < 32 {
		r.cc14[[2]uint8{ch, cc}] = val
	}

	return func(b Binding) (float64, bool) {
		if b.Channel != ch {
			return 0, false
		}
		switch b.Kind {
		case KindCC:
			return float64(val) / 127, b.Number == cc
		case KindCCRelative:
			return float64(SignedBit(val)) * r.step, b.Number == cc
		case KindCC14:
			if cc != b.Number+32 {
				return 0, false
			}
			msb := r.cc14[[2]uint8{ch, b.Number}]
			return float64(uint16(msb)<<7|uint16(val)) / 16383, true
		case KindNRPN14:
			if cc != 38 || r.nrpn[ch] != b.Param {
				return 0, false
			}
			return float64(uint16(r.nrpnData[ch])<<7|uint16(val)) / 16383, true
		}
		return 0, false
	}
}
