package midi

import (
	"sort"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// UnitState is the decoded picture of one unit, rebuilt from outbound frames.
type UnitState struct {
	Index    int
	Role     UnitRole
	Faders   [ChannelsPerUnit + 1]float64
	Rings    [ChannelsPerUnit]uint8
	Meters   [ChannelsPerUnit]uint8
	Strip    [2][ChannelsPerUnit * StripWidth]byte
	Segments [12]uint8
	LEDs     [128]bool
	Frames   uint64
}

// StripText returns the text of one channel on one row.
func (u UnitState) StripText(row, channel int) string {
	start := channel * StripWidth
	return string(u.Strip[row][start : start+StripWidth])
}

// RingPosition returns the lit position (0-11) and whether the center LED is lit.
func (u UnitState) RingPosition(channel int) (pos int, mode int, center bool) {
	v := u.Rings[channel]
	return int(v & 0x0F), int(v>>4) & 0x03, v&0x40 != 0
}

// SegmentText renders cells [from, to) left to right.
func (u UnitState) SegmentText(from, to int) string {
	var b strings.Builder
	for i := to - 1; i >= from; i-- {
		c := u.Segments[i]
		dot := c&0x40 != 0
		c &^= 0x40
		switch {
		case c >= 0x30 && c <= 0x39:
			b.WriteByte(c)
		default:
			b.WriteByte(' ')
		}
		if dot {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// Mirror decodes outbound frames into UnitState for each unit.
// It is safe for concurrent use.
type Mirror struct {
	mu    sync.RWMutex
	units map[int]*UnitState
}

// NewMirror creates an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{units: make(map[int]*UnitState)}
}

// Output returns the Output feeding one unit's state.
func (m *Mirror) Output(index int, role UnitRole) Output {
	m.mu.Lock()
	u, ok := m.units[index]
	if !ok {
		u = newUnitState(index, role)
		m.units[index] = u
	}
	m.mu.Unlock()

	return SendFunc(func(msg gomidi.Message) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		u.apply(msg)
		return nil
	})
}

func newUnitState(index int, role UnitRole) *UnitState {
	u := &UnitState{Index: index, Role: role}
	for row := range u.Strip {
		for i := range u.Strip[row] {
			u.Strip[row][i] = ' '
		}
	}
	for i := range u.Segments {
		u.Segments[i] = 0x20
	}
	return u
}

// Snapshot returns copies of every unit's state, ordered by index.
func (m *Mirror) Snapshot() []UnitState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	indices := make([]int, 0, len(m.units))
	for i := range m.units {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	out := make([]UnitState, 0, len(indices))
	for _, i := range indices {
		out = append(out, *m.units[i])
	}
	return out
}

func (u *UnitState) apply(msg gomidi.Message) {
	u.Frames++

	var ch, key, vel, cc, val uint8
	var rel int16
	var abs uint16
	var data []byte

	switch {
	case len(msg) == 3 && msg[0] == NoteOn:
		// read raw: LED frames use 0xFF as "on", which is not a valid data byte
		u.LEDs[msg[1]&0x7F] = msg[2] != 0
	case msg.GetControlChange(&ch, &cc, &val):
		switch {
		case cc >= CCRing && cc < CCRing+ChannelsPerUnit:
			u.Rings[cc-CCRing] = val
		case cc >= CCSegment && cc < CCSegment+12:
			u.Segments[cc-CCSegment] = val
		}
	case msg.GetPitchBend(&ch, &rel, &abs):
		if int(ch) < len(u.Faders) {
			u.Faders[ch] = float64(abs) / 16383
		}
	case msg.GetAfterTouch(&ch, &val):
		strip := int(val >> 4)
		if strip < ChannelsPerUnit {
			u.Meters[strip] = val & 0x0F
		}
	case msg.GetSysEx(&data):
		u.applySysex(data)
	case msg.GetNoteStart(&ch, &key, &vel):
		u.LEDs[key] = true
	case msg.GetNoteEnd(&ch, &key):
		u.LEDs[key] = false
	}
}

func (u *UnitState) applySysex(data []byte) {
	// 00 00 66 <model> 12 <offset> <chars...>
	if len(data) < 6 || data[4] != SysExStrip {
		return
	}
	offset := int(data[5])
	for i, c := range data[6:] {
		pos := offset + i
		row, col := pos/(ChannelsPerUnit*StripWidth), pos%(ChannelsPerUnit*StripWidth)
		if row > 1 {
			return
		}
		u.Strip[row][col] = c
	}
}
