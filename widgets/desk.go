package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"go-mackie/theme"
)

// RingLEDs is the number of LEDs around a V-Pot.
const RingLEDs = 11

// Fit pads or truncates s to exactly width terminal cells.
func Fit(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, ""), width)
}

// RenderLED renders a single button lamp.
func RenderLED(th *theme.Theme, on bool) string {
	if on {
		return lipgloss.NewStyle().Foreground(th.Active()).Render(string(th.Symbols.LEDOn))
	}
	return lipgloss.NewStyle().Foreground(th.Muted()).Render(string(th.Symbols.LEDOff))
}

// RenderLabeledLED renders "● LABEL".
func RenderLabeledLED(th *theme.Theme, label string, on bool) string {
	return RenderLED(th, on) + " " + label
}

// RenderStripText renders one row of scribble strip text at width cells.
func RenderStripText(th *theme.Theme, text string, width int) string {
	return lipgloss.NewStyle().Foreground(th.FG()).Render(Fit(text, width))
}

// FaderBar returns an unstyled horizontal fader of width cells at v.
func FaderBar(sym theme.Symbols, v float64, width int) string {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	n := int(math.Round(v * float64(width)))
	return strings.Repeat(string(sym.FaderFill), n) + strings.Repeat(string(sym.FaderTrack), width-n)
}

// RenderFader renders a horizontal fader.
func RenderFader(th *theme.Theme, v float64, width int) string {
	return lipgloss.NewStyle().Foreground(th.Cursor()).Render(FaderBar(th.Symbols, v, width))
}

// RingLit reports whether LED i (1-11) is lit for a ring position and mode.
// Mode numbering follows the wire: 0 single dot, 1 boost/cut, 2 wrap, 3 spread.
func RingLit(pos, mode, i int) bool {
	if pos <= 0 || i < 1 || i > RingLEDs {
		return false
	}
	const center = (RingLEDs + 1) / 2
	switch mode {
	case 1:
		lo, hi := center, pos
		if lo > hi {
			lo, hi = hi, lo
		}
		return i >= lo && i <= hi
	case 2:
		return i <= pos
	case 3:
		d := i - center
		if d < 0 {
			d = -d
		}
		return d < pos
	default:
		return i == pos
	}
}

// RingLine returns the unstyled ring LEDs for one V-Pot.
func RingLine(sym theme.Symbols, pos, mode int, center bool) string {
	var b strings.Builder
	for i := 1; i <= RingLEDs; i++ {
		if RingLit(pos, mode, i) {
			b.WriteRune(sym.RingLit)
		} else {
			b.WriteRune(sym.RingDark)
		}
	}
	if center {
		b.WriteRune(sym.RingCenter)
	} else {
		b.WriteRune(' ')
	}
	return b.String()
}

// RenderRing renders a V-Pot ring.
func RenderRing(th *theme.Theme, pos, mode int, center bool) string {
	return lipgloss.NewStyle().Foreground(th.Accent()).Render(RingLine(th.Symbols, pos, mode, center))
}

// RenderMeter renders level out of max as one colored segment per step,
// scaled to width cells.
func RenderMeter(th *theme.Theme, level, max, width int) string {
	if max <= 0 || width <= 0 {
		return ""
	}
	if level > max {
		level = max
	}
	lit := int(math.Round(float64(level) * float64(width) / float64(max)))

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < lit {
			seg := (i + 1) * max / width
			b.WriteString(lipgloss.NewStyle().Foreground(th.Level(seg, max)).Render(string(th.Symbols.MeterFill)))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(th.Muted()).Render(string(th.Symbols.MeterEmpty)))
		}
	}
	return b.String()
}

// RenderSegments renders seven-segment text in a bordered box.
func RenderSegments(th *theme.Theme, label, text string) string {
	box := lipgloss.NewStyle().
		Foreground(th.Success()).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Muted()).
		Padding(0, 1)
	title := lipgloss.NewStyle().Foreground(th.Muted()).Render(label)
	return lipgloss.JoinVertical(lipgloss.Left, title, box.Render(text))
}
