package midi

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"go-mackie/debug"
	"go-mackie/state"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// UnitRole distinguishes the primary unit from extension units.
type UnitRole int

const (
	Primary UnitRole = iota
	Extension
)

// ModelByte is the SysEx device byte for the role.
func (r UnitRole) ModelByte() byte {
	if r == Extension {
		return 0x15
	}
	return 0x14
}

func (r UnitRole) String() string {
	if r == Extension {
		return "extension"
	}
	return "primary"
}

// ParseRole converts a config string to a UnitRole.
func ParseRole(s string) (UnitRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "primary", "main":
		return Primary, nil
	case "extension", "extender", "xt":
		return Extension, nil
	}
	return Primary, fmt.Errorf("unknown unit role %q", s)
}

// sysexManufacturer is the Mackie manufacturer id.
var sysexManufacturer = []byte{0x00, 0x00, 0x66}

// PortPair is one physical unit's input and output.
//
// Frames are fire-and-forget: send errors are logged and dropped. A frame
// sent on behalf of a context that is no longer active, or that the gate
// rejects, is dropped too.
type PortPair struct {
	Index int
	Role  UnitRole
	Name  string

	mu       sync.Mutex
	out      Output
	mirror   Output
	gate     func(ctx *state.Context) bool
	inPort   drivers.In
	outPort  drivers.Out
	stopFunc func()
}

// NewPortPair creates a unit that writes to out (which may be nil).
func NewPortPair(index int, role UnitRole, name string, out Output) *PortPair {
	return &PortPair{
		Index: index,
		Role:  role,
		Name:  name,
		out:   out,
	}
}

// SetMirror sets an output that receives a copy of every frame, attached or not.
func (p *PortPair) SetMirror(o Output) {
	p.mu.Lock()
	p.mirror = o
	p.mu.Unlock()
}

// SetGate sets a filter deciding which contexts may write to the unit.
func (p *PortPair) SetGate(gate func(ctx *state.Context) bool) {
	p.mu.Lock()
	p.gate = gate
	p.mu.Unlock()
}

// Attach opens the hardware ports and routes inbound messages to onMessage.
func (p *PortPair) Attach(inPort drivers.In, outPort drivers.Out, onMessage func(p *PortPair, msg gomidi.Message)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		p.outPort = outPort
		p.out = SendFunc(send)
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			if onMessage != nil {
				onMessage(p, msg)
			}
		}, gomidi.UseSysEx(), gomidi.HandleError(func(err error) {
			debug.Log("wire", "unit %d listener error: %v", p.Index, err)
		}))
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		p.inPort = inPort
		p.stopFunc = stop
	}

	return nil
}

// Attached reports whether hardware ports are open.
func (p *PortPair) Attached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outPort != nil || p.inPort != nil
}

// Detach closes the hardware ports. The mirror keeps receiving frames.
func (p *PortPair) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopFunc != nil {
		p.stopFunc()
		p.stopFunc = nil
	}
	if p.inPort != nil {
		p.inPort.Close()
		p.inPort = nil
	}
	if p.outPort != nil {
		p.outPort.Close()
		p.outPort = nil
		p.out = nil
	}
}

func (p *PortPair) send(ctx *state.Context, msg gomidi.Message) {
	if ctx != nil && !ctx.Active() {
		return
	}
	p.mu.Lock()
	out, mirror, gate := p.out, p.mirror, p.gate
	p.mu.Unlock()

	if gate != nil && ctx != nil && !gate(ctx) {
		return
	}
	if mirror != nil {
		mirror.Send(msg)
	}
	if out == nil {
		return
	}
	if err := out.Send(msg); err != nil {
		debug.Log("wire", "unit %d send % X: %v", p.Index, []byte(msg), err)
	}
}

// SendNoteOn emits a Note On with a literal velocity.
func (p *PortPair) SendNoteOn(ctx *state.Context, pitch, velocity uint8) {
	p.send(ctx, gomidi.Message{NoteOn, pitch & 0x7F, velocity})
}

// SendLED emits a Note On with 0xFF for on and 0x00 for off.
func (p *PortPair) SendLED(ctx *state.Context, pitch uint8, on bool) {
	var v uint8
	if on {
		v = 0xFF
	}
	p.SendNoteOn(ctx, pitch, v)
}

// SendControlChange emits a Control Change on channel 0.
func (p *PortPair) SendControlChange(ctx *state.Context, controller, value uint8) {
	p.send(ctx, gomidi.ControlChange(0, controller, value))
}

// SendChannelPressure emits a channel pressure frame on channel 0.
func (p *PortPair) SendChannelPressure(ctx *state.Context, value uint8) {
	p.send(ctx, gomidi.AfterTouch(0, value))
}

// SendPitchBend scales value01 to 14 bits and emits it on channel.
func (p *PortPair) SendPitchBend(ctx *state.Context, channel uint8, value01 float64) {
	v := PitchBendValue(value01)
	p.send(ctx, gomidi.Message{PitchBend | (channel & 0x0F), byte(v & 0x7F), byte((v >> 7) & 0x7F)})
}

// SendSysex wraps body with the manufacturer and role prefix.
func (p *PortPair) SendSysex(ctx *state.Context, body []byte) {
	data := make([]byte, 0, len(sysexManufacturer)+1+len(body))
	data = append(data, sysexManufacturer...)
	data = append(data, p.Role.ModelByte())
	data = append(data, body...)
	p.send(ctx, gomidi.SysEx(data))
}

// PitchBendValue scales value01 to a 14-bit integer.
func PitchBendValue(value01 float64) int {
	if math.IsNaN(value01) || value01 < 0 {
		value01 = 0
	}
	if value01 > 1 {
		value01 = 1
	}
	return int(math.Round(value01 * 16383))
}

// Close detaches hardware ports.
func (p *PortPair) Close() error {
	p.Detach()
	return nil
}
