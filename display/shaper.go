// Package display drives the scribble strips and the 7-segment display.
//
// A strip shows either its parameter name or, briefly after a change, the
// parameter value. The segment display keeps the last byte of every cell
// and writes only what changed.
package display

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-mackie/midi"
)

// Shaper fits text into one strip cell.
type Shaper struct {
	Width int
}

// DefaultShaper shapes to the hardware cell width.
var DefaultShaper = Shaper{Width: midi.StripWidth}

func (s Shaper) width() int {
	if s.Width <= 0 {
		return midi.StripWidth
	}
	return s.Width
}

// Shape strips, abbreviates and centers text.
func (s Shaper) Shape(text string) string {
	return s.Center(s.Abbreviate(StripNonASCII(text)))
}

// StripNonASCII removes accents and drops whatever is still outside ASCII.
func StripNonASCII(text string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
		norm.NFC,
	)
	out, _, err := transform.String(t, text)
	if err != nil {
		return ""
	}
	return out
}

// Abbreviate shortens text to the cell width: spaces go first, then inner
// lowercase vowels, then the tail.
func (s Shaper) Abbreviate(text string) string {
	w := s.width()
	text = strings.TrimSpace(text)
	if len(text) <= w {
		return text
	}

	text = strings.Join(strings.Fields(text), "")
	if len(text) <= w {
		return text
	}

	excess := len(text) - w
	b := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if excess > 0 && i > 0 && strings.IndexByte("aeiou", c) >= 0 {
			excess--
			continue
		}
		b = append(b, c)
	}
	if len(b) > w {
		b = b[:w]
	}
	return string(b)
}

// Center pads text with spaces to exactly the cell width.
func (s Shaper) Center(text string) string {
	w := s.width()
	if len(text) >= w {
		return text[:w]
	}
	left := (w - len(text)) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", w-len(text)-left)
}
