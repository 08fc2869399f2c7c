package display

import (
	"fmt"
	"regexp"

	"go-mackie/control"
	"go-mackie/midi"
	"go-mackie/state"
)

// Segment display layout. Cell 0 is the rightmost timecode digit.
const (
	Cells           = 12
	TimecodeCells   = 10
	AssignmentFirst = 10
)

// Blank is the cell byte of an unlit digit.
const Blank = 0x30 - 0x10

// TimeFormat is the kind of position shown on the timecode cells.
type TimeFormat int

const (
	FormatUnknown TimeFormat = iota
	FormatSMPTE
	FormatBeats
)

var (
	smptePattern = regexp.MustCompile(`^\s*-?\d+:\d{2}:\d{2}[:.]\d{2,3}\s*$`)
	beatsPattern = regexp.MustCompile(`^\s*-?\d+[.:]\d+[.:]\d+([.:]\d+)?\s*$`)
)

// ClassifyTime detects the format of a position string.
func ClassifyTime(s string) TimeFormat {
	switch {
	case smptePattern.MatchString(s):
		return FormatSMPTE
	case beatsPattern.MatchString(s):
		return FormatBeats
	}
	return FormatUnknown
}

// CellByte encodes one cell. A negative digit is blank.
func CellByte(digit int, dot bool) uint8 {
	b := uint8(Blank)
	if digit >= 0 && digit <= 9 {
		b = 0x30 + uint8(digit)
	}
	if dot {
		b += 0x40
	}
	return b
}

// Segments drives the 12-cell numeric display of the primary unit.
type Segments struct {
	Unit *midi.PortPair

	cells  [Cells]state.Slot[int64]
	format state.Slot[int64]
}

// NewSegments creates the display with an empty cache.
func NewSegments(unit *midi.PortPair) *Segments {
	s := &Segments{
		Unit:   unit,
		format: state.Int("segment.format", int64(FormatUnknown)),
	}
	for i := range s.cells {
		s.cells[i] = state.Int(fmt.Sprintf("segment.%d", i), -1)
	}
	return s
}

// Follow makes timecode and assignment track the display text of two values.
func (s *Segments) Follow(timecode, assignment *control.Value) {
	if timecode != nil {
		timecode.OnDisplayText = func(ctx *state.Context, text, _ string) { s.Timecode(ctx, text) }
	}
	if assignment != nil {
		assignment.OnDisplayText = func(ctx *state.Context, text, _ string) { s.Assignment(ctx, text) }
	}
}

// Update sets one cell. Nothing is sent when the cell already shows b.
func (s *Segments) Update(ctx *state.Context, cell, digit int, dot bool) {
	if cell < 0 || cell >= Cells {
		return
	}
	b := CellByte(digit, dot)
	if s.cells[cell].Get(ctx) == int64(b) {
		return
	}
	s.cells[cell].Set(ctx, int64(b))
	s.Unit.SendControlChange(ctx, midi.CCSegment+uint8(cell), b)
}

// Cell returns the cached byte of a cell, or -1 if never written.
func (s *Segments) Cell(ctx *state.Context, cell int) int64 {
	return s.cells[cell].Get(ctx)
}

// UpdateByString renders text right-aligned into cells [from, to). Dots and
// colons mark the digit before them and take no cell of their own.
func (s *Segments) UpdateByString(ctx *state.Context, from, to int, text string) {
	cell := from
	dot := false
	for i := len(text) - 1; i >= 0 && cell < to; i-- {
		c := text[i]
		if c == '.' || c == ':' {
			dot = true
			continue
		}
		digit := -1
		if c >= '0' && c <= '9' {
			digit = int(c - '0')
		}
		s.Update(ctx, cell, digit, dot)
		dot = false
		cell++
	}
	for ; cell < to; cell++ {
		s.Update(ctx, cell, -1, false)
	}
}

// Timecode shows a position string and lights the lamp of its format.
func (s *Segments) Timecode(ctx *state.Context, text string) {
	if f := ClassifyTime(text); f != FormatUnknown && int64(f) != s.format.Get(ctx) {
		s.format.Set(ctx, int64(f))
		s.Unit.SendLED(ctx, midi.NoteLEDSMPTE, f == FormatSMPTE)
		s.Unit.SendLED(ctx, midi.NoteLEDBeats, f == FormatBeats)
	}
	s.UpdateByString(ctx, 0, TimecodeCells, text)
}

// Format returns the last detected time format.
func (s *Segments) Format(ctx *state.Context) TimeFormat {
	return TimeFormat(s.format.Get(ctx))
}

// Assignment shows a short bank.page string on the two assignment cells.
func (s *Segments) Assignment(ctx *state.Context, text string) {
	s.UpdateByString(ctx, AssignmentFirst, Cells, text)
}

// Resync rewrites every cached cell and the format lamps.
func (s *Segments) Resync(ctx *state.Context) {
	for i := range s.cells {
		b := s.cells[i].Get(ctx)
		if b < 0 {
			continue
		}
		s.Unit.SendControlChange(ctx, midi.CCSegment+uint8(i), uint8(b))
	}
	if f := s.Format(ctx); f != FormatUnknown {
		s.Unit.SendLED(ctx, midi.NoteLEDSMPTE, f == FormatSMPTE)
		s.Unit.SendLED(ctx, midi.NoteLEDBeats, f == FormatBeats)
	}
}
