package cidfonts

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/benoitkugler/fontmap/fonts/cmaps"
	"github.com/benoitkugler/fontmap/fonts/truetype"
	"github.com/benoitkugler/fontmap/model"
	"github.com/benoitkugler/textlayout/fonts"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"
)

func code(v uint32) cmaps.ByteCode { return cmaps.NewByteCode(v, 2) }

func TestSynthesizeCollision(t *testing.T) {
	glyphIndex := map[rune]fonts.GID{'A': 1, 'B': 2, 'a': 3, 'Å': 1}
	widths := map[fonts.GID]int{0: 500, 1: 600, 2: 600, 3: 600, 4: 700}

	enc, err := Synthesize(glyphIndex, widths, Options{Name: "Test-Custom"})
	if err != nil {
		t.Fatal(err)
	}
	if !enc.Custom {
		t.Fatal("expected custom encoding")
	}
	exp := []Glyph{
		{Code: code(1), Unicode: 'A', GID: 1},
		{Code: code(2), Unicode: 'B', GID: 2},
		{Code: code(3), Unicode: 'a', GID: 3},
		{Code: code(5), Unicode: 'Å', GID: 1}, // 4 is a glyph index
	}
	if diff := cmp.Diff(exp, enc.Glyphs); diff != "" {
		t.Fatalf("unexpected glyphs (-want +got):\n%s", diff)
	}
	if name := enc.EncodingName(Options{Name: "Test-Custom"}); name != "Test-Custom" {
		t.Errorf("unexpected encoding name %s", name)
	}

	cm, err := cmaps.Parse(enc.EncodingCMap, cmaps.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if cm.Name != "Test-Custom" {
		t.Errorf("unexpected CMap name %s", cm.Name)
	}
	expCIDs := cmaps.Mapping{code(1): 1, code(2): 2, code(3): 3, code(5): 1}
	if !reflect.DeepEqual(cm.Mapping, expCIDs) {
		t.Errorf("expected %v, got %v", expCIDs, cm.Mapping)
	}

	tu, err := cmaps.Parse(enc.ToUnicodeCMap, cmaps.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	expUnicode := cmaps.Mapping{code(1): 'A', code(2): 'B', code(3): 'a', code(5): 'Å'}
	if !reflect.DeepEqual(tu.Mapping, expUnicode) {
		t.Errorf("expected %v, got %v", expUnicode, tu.Mapping)
	}

	if enc.DefaultWidth != 600 {
		t.Errorf("unexpected default width %d", enc.DefaultWidth)
	}
	expWidths := []model.CIDWidth{model.CIDWidthRange{First: 1, Last: 3, Width: 600}}
	if !reflect.DeepEqual(enc.Widths, expWidths) {
		t.Errorf("unexpected widths %v", enc.Widths)
	}
}

func TestSynthesizeIdentity(t *testing.T) {
	glyphIndex := map[rune]fonts.GID{'a': 3, 'b': 4, 'c': 5}
	widths := map[fonts.GID]int{0: 1000, 3: 2000, 4: 2000, 5: 1000}

	enc, err := Synthesize(glyphIndex, widths, Options{UnitsPerEm: 2000})
	if err != nil {
		t.Fatal(err)
	}
	if enc.Custom || enc.EncodingCMap != nil {
		t.Fatal("expected identity encoding")
	}
	if enc.EncodingName(Options{}) != IdentityH {
		t.Errorf("unexpected name %s", enc.EncodingName(Options{}))
	}
	for _, g := range enc.Glyphs {
		if g.Code.Uint() != uint32(g.GID) {
			t.Errorf("code %s is not the glyph index %d", g.Code, g.GID)
		}
	}
	if enc.DefaultWidth != 750 {
		t.Errorf("unexpected default width %d", enc.DefaultWidth)
	}
	expWidths := []model.CIDWidth{model.CIDWidthArray{Start: 3, W: []int{1000, 1000, 500}}}
	if !reflect.DeepEqual(enc.Widths, expWidths) {
		t.Errorf("unexpected widths %v", enc.Widths)
	}

	cm := enc.CodeMap()
	if v, ok := cm.Value(code(4)); !ok || v != 'b' {
		t.Errorf("unexpected value %d %v", v, ok)
	}
	if gi := enc.GlyphIndex(); !reflect.DeepEqual(gi, glyphIndex) {
		t.Errorf("unexpected glyph index %v", gi)
	}
}

func TestSynthesizeEmpty(t *testing.T) {
	enc, err := Synthesize(nil, map[fonts.GID]int{0: 300, 1: 500}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if enc.Custom || enc.EncodingCMap != nil || len(enc.Glyphs) != 0 {
		t.Fatalf("unexpected encoding %v", enc)
	}
	if enc.DefaultWidth != 400 {
		t.Errorf("unexpected default width %d", enc.DefaultWidth)
	}
	if _, err := cmaps.Parse(enc.ToUnicodeCMap, cmaps.ParseOptions{}); err != nil {
		t.Error(err)
	}
}

func TestSynthesizeNotdef(t *testing.T) {
	glyphIndex := map[rune]fonts.GID{'x': 0, 'y': 0, 'z': 1}
	enc, err := Synthesize(glyphIndex, map[fonts.GID]int{0: 10, 1: 20}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !enc.HasDefault || enc.DefaultUnicode != 'x' {
		t.Errorf("unexpected default %v %q", enc.HasDefault, enc.DefaultUnicode)
	}
	if enc.Custom {
		t.Error("duplicated .notdef should not trigger a custom encoding")
	}
	if len(enc.Glyphs) != 2 {
		t.Errorf("unexpected glyphs %v", enc.Glyphs)
	}
}

func TestSynthesizeExhausted(t *testing.T) {
	widths := make(map[fonts.GID]int, 1<<16)
	for i := 0; i < 1<<16; i++ {
		widths[fonts.GID(i)] = 500
	}
	glyphIndex := map[rune]fonts.GID{'a': 5, 'b': 5}
	_, err := Synthesize(glyphIndex, widths, Options{})
	if !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Fatalf("expected ErrCodeSpaceExhausted, got %v", err)
	}
}

func TestSynthesizeFont(t *testing.T) {
	prog, err := truetype.Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Name: "GoRegular-Custom", UnitsPerEm: prog.UnitsPerEm}
	enc, err := Synthesize(prog.GlyphIndex, prog.Widths, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(enc.Glyphs) != len(prog.GlyphIndex) {
		t.Errorf("expected %d glyphs, got %d", len(prog.GlyphIndex), len(enc.Glyphs))
	}

	codes := map[cmaps.ByteCode]bool{}
	runes := map[rune]bool{}
	for _, g := range enc.Glyphs {
		if codes[g.Code] || runes[g.Unicode] {
			t.Fatalf("duplicated entry %v", g)
		}
		codes[g.Code], runes[g.Unicode] = true, true
		if c := fonts.GID(g.Code.Uint()); c != g.GID {
			if _, isGlyph := prog.Widths[c]; isGlyph {
				t.Errorf("remapped code %s is a glyph index", g.Code)
			}
		}
	}

	if enc.Custom {
		cm, err := cmaps.Parse(enc.EncodingCMap, cmaps.ParseOptions{})
		if err != nil {
			t.Fatal(err)
		}
		exp := cmaps.Mapping{}
		for _, g := range enc.Glyphs {
			exp[g.Code] = int(g.GID)
		}
		if diff := cmp.Diff(exp, cm.Mapping); diff != "" {
			t.Errorf("CID round trip (-want +got):\n%s", diff)
		}
	}

	decoded := DecodeWidths(enc.Widths)
	for _, g := range enc.Glyphs {
		if _, ok := decoded[model.CID(g.GID)]; !ok {
			t.Errorf("missing width for glyph %d", g.GID)
		}
	}

	// determinism
	enc2, err := Synthesize(prog.GlyphIndex, prog.Widths, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(enc.ToUnicodeCMap, enc2.ToUnicodeCMap) || !bytes.Equal(enc.EncodingCMap, enc2.EncodingCMap) {
		t.Error("synthesis is not deterministic")
	}
}
