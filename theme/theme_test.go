package theme

import (
	"strings"
	"testing"
)

const gpl = `GIMP Palette
Name: two
Columns: 2
# comment
0 0 0	black
255 255 255	white
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(gpl))
	if err != nil {
		t.Fatalf("ParseGPL: %v", err)
	}
	if p.Name != "two" {
		t.Errorf("Name = %q, want two", p.Name)
	}
	if len(p.Colors) != 2 {
		t.Fatalf("got %d colors, want 2", len(p.Colors))
	}
	if got := p.Lookup(0.5); got != (RGB{127, 127, 127}) {
		t.Errorf("Lookup(0.5) = %v", got)
	}
}

func TestParseGPL_Empty(t *testing.T) {
	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n")); err == nil {
		t.Error("expected error for palette without colors")
	}
}

func TestLookupClamps(t *testing.T) {
	p := Default()
	if p.Lookup(-1) != p.Colors[0] {
		t.Error("Lookup below 0 should return the first color")
	}
	if p.Lookup(2) != p.Colors[len(p.Colors)-1] {
		t.Error("Lookup above 1 should return the last color")
	}
	if p.Index(99) != p.Colors[len(p.Colors)-1] {
		t.Error("Index past the end should return the last color")
	}
}

func TestLoad_DefaultWhenEmpty(t *testing.T) {
	th, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if th.Palette.Name != "plasma" {
		t.Errorf("palette = %q, want plasma", th.Palette.Name)
	}
	if th.Level(0, 14) == th.Level(14, 14) {
		t.Error("meter level colors should differ across the range")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/palette.gpl"); err == nil {
		t.Error("expected error for missing palette")
	}
}
