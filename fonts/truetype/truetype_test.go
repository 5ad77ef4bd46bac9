package truetype

import (
	"errors"
	"testing"
	"unicode"

	"github.com/benoitkugler/fontmap/model"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

func TestSniff(t *testing.T) {
	for _, test := range []struct {
		data    []byte
		exp     Outline
		wantErr bool
	}{
		{[]byte{0, 1, 0, 0, 0}, TrueType, false},
		{[]byte("true...."), TrueType, false},
		{[]byte("OTTO...."), CFF, false},
		{[]byte("ttcf...."), 0, true},
		{[]byte{0x80, 0x01, 0, 0, 0, 0}, 0, true}, // PFB
		{[]byte("%!"), 0, true},
	} {
		got, err := Sniff(test.data)
		if test.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("expected ErrUnsupportedFormat for %q, got %v", test.data, err)
			}
			continue
		}
		if err != nil {
			t.Fatal(err)
		}
		if got != test.exp {
			t.Errorf("expected %s, got %s", test.exp, got)
		}
	}
}

func TestParseRegular(t *testing.T) {
	p, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if p.Outline != TrueType {
		t.Errorf("unexpected outline %s", p.Outline)
	}
	if p.PostScriptName == "" {
		t.Error("missing PostScript name")
	}
	if p.UnitsPerEm != 2048 {
		t.Errorf("unexpected units per em %d", p.UnitsPerEm)
	}
	if len(p.Widths) != p.NumGlyphs {
		t.Errorf("expected %d widths, got %d", p.NumGlyphs, len(p.Widths))
	}
	for _, r := range "Hello, world" {
		gid, ok := p.GlyphIndex[r]
		if !ok {
			t.Fatalf("missing glyph for %q", r)
		}
		if p.Widths[gid] <= 0 {
			t.Errorf("invalid width for %q", r)
		}
	}
	if _, ok := p.GlyphIndex[0x1FFFE]; ok {
		t.Error("unexpected glyph")
	}
	if p.Metrics.Ascender <= 0 || p.Metrics.Descender >= 0 {
		t.Errorf("unexpected vertical metrics %v %v", p.Metrics.Ascender, p.Metrics.Descender)
	}
	if p.Metrics.BBox.Ury <= p.Metrics.BBox.Lly {
		t.Errorf("invalid bounding box %s", p.Metrics.BBox)
	}
	if p.Metrics.IsFixedPitch {
		t.Error("GoRegular is not fixed pitch")
	}

	desc := p.Descriptor()
	if desc.FontName != model.Name(p.PostScriptName) || desc.Flags&model.Symbolic == 0 || desc.Flags&model.FixedPitch != 0 {
		t.Errorf("unexpected descriptor %v", desc)
	}
	if desc.Ascent <= 0 || desc.Ascent > 1500 {
		t.Errorf("descriptor is not scaled: %v", desc.Ascent)
	}
	if desc.MaxWidth < desc.AvgWidth {
		t.Errorf("invalid width statistics %v %v", desc.MaxWidth, desc.AvgWidth)
	}
}

func TestParseMono(t *testing.T) {
	p, err := Parse(gomono.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Metrics.IsFixedPitch {
		t.Error("GoMono is fixed pitch")
	}
	if p.Descriptor().Flags&model.FixedPitch == 0 {
		t.Error("missing FixedPitch flag")
	}
	w := p.Widths[p.GlyphIndex['i']]
	if w2 := p.Widths[p.GlyphIndex['W']]; w != w2 {
		t.Errorf("expected equal widths, got %d and %d", w, w2)
	}
}

func TestKern(t *testing.T) {
	p, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	// whatever the font provides, the call must be safe
	done := make(chan int)
	for i := 0; i < 4; i++ {
		go func() { done <- p.Kern(p.GlyphIndex['A'], p.GlyphIndex['V']) }()
	}
	first := <-done
	for i := 1; i < 4; i++ {
		if k := <-done; k != first {
			t.Errorf("inconsistent kerning %d %d", k, first)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("OTTO")); err == nil {
		t.Error("expected error on truncated font")
	}
	if _, err := Parse(nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestScannedRanges(t *testing.T) {
	// every scalar value from U+0020 is scanned, including the
	// supplementary ideographic planes
	next := rune(0x20)
	for _, rg := range scannedRanges {
		if rg[0] == 0xE000 && next == 0xD800 {
			next = 0xE000
		}
		if rg[0] != next {
			t.Fatalf("gap before U+%04X", rg[0])
		}
		next = rg[1] + 1
	}
	if next != unicode.MaxRune+1 {
		t.Errorf("scan stops at U+%04X", next-1)
	}
	for _, r := range []rune{0x20000, 0x3134A, 0xE0100, 0x10FFFD} {
		covered := false
		for _, rg := range scannedRanges {
			covered = covered || (rg[0] <= r && r <= rg[1])
		}
		if !covered {
			t.Errorf("U+%04X not scanned", r)
		}
	}
}
