// Package fonts provides the character mapping of the fonts used
// in a PDF document.
//
// PDF divides the text representation in 3 objects:
//
//	1- Glyph (selector): it is either a name (for Simples) or an integer called CID (for Composite)
//	2- Chars (character code): it is a slice of bytes (1 byte for Simples, 1 to 4 bytes for Composite)
//	3- Unicode (point): the Unicode point of a character, coded in Go as runes.
//
// Every font, whatever its kind, exposes a Transcoder, which converts
// between character codes and Unicode, and provides the metrics of the
// glyphs. The tables are built once, when the font is created, and are
// then read-only.
package fonts

import (
	"fmt"
	"io"

	"github.com/benoitkugler/fontmap/fonts/cidfonts"
	"github.com/benoitkugler/fontmap/fonts/cmaps"
	"github.com/benoitkugler/fontmap/fonts/truetype"
	"github.com/benoitkugler/fontmap/fonts/type1"
	"github.com/benoitkugler/fontmap/model"
	tfonts "github.com/benoitkugler/textlayout/fonts"
	"github.com/pdfcpu/pdfcpu/pkg/log"
	"golang.org/x/text/encoding/charmap"
)

type Fl = model.Fl

// Kind is the kind of a font.
type Kind uint8

const (
	// Simple fonts use 1 byte codes, and are described by AFM metrics.
	Simple Kind = iota
	// Composite (Type0) fonts use multi-bytes codes and
	// a CID keyed descendant font.
	Composite
)

func (k Kind) String() string {
	switch k {
	case Simple:
		return "Simple"
	case Composite:
		return "Composite"
	default:
		return fmt.Sprintf("<Kind %d>", k)
	}
}

// Font is a font ready to be used in content streams.
// The embedded Transcoder provides the encoding and the metrics.
type Font struct {
	*Transcoder

	Kind Kind
	// Outline is only meaningful for Composite fonts.
	Outline truetype.Outline

	Descriptor model.FontDescriptor

	// The following fields are only set for Composite fonts.

	// Encoding is Identity-H or the name of the custom CMap.
	Encoding     model.Name
	EncodingRef  model.Reference // 0 for predefined encodings
	ToUnicodeRef model.Reference // 0 if not registered
	SystemInfo   model.CIDSystemInfo
	Widths       []model.CIDWidth
	DW           int // default width of the descendant font
}

// LoadSimple parses the .afm file and returns the associated font.
func LoadSimple(afm io.Reader) (*Font, error) {
	metrics, err := type1.ParseAFMFile(afm)
	if err != nil {
		return nil, err
	}
	return NewSimple(metrics), nil
}

// NewSimple returns a simple font using the metrics `afm`.
// Codes are mapped to Unicode values resolved from the glyph names,
// or to themselves for symbolic fonts.
func NewSimple(afm type1.AFMFont) *Font {
	return newSimple(afm, afm.CodeMap())
}

// NewSimpleEncoded is the same as NewSimple, but uses the single byte
// encoding `enc` instead of the codes of the .afm file.
// Note that charmap.Windows1252 is only close to the PDF WinAnsiEncoding:
// the two differ on a few codes in 0x80-0x9F, and WinAnsiEncoding maps
// the undefined codes to the bullet glyph, which cp1252 does not.
// Symbolic fonts are not affected.
func NewSimpleEncoded(afm type1.AFMFont, enc *charmap.Charmap) *Font {
	if afm.IsSymbolic() {
		return NewSimple(afm)
	}
	var entries []cmaps.Entry
	for key := range afm.GlyphIndex {
		b, ok := enc.EncodeRune(rune(key))
		if !ok {
			log.Parse.Printf("fonts: %s: U+%04X not in encoding %s\n", afm.FontName, key, enc)
			continue
		}
		entries = append(entries, cmaps.Entry{Code: cmaps.NewByteCode(uint32(b), 1), Value: key})
	}
	cmaps.SortEntries(entries)
	return newSimple(afm, cmaps.NewCodeMap(entries))
}

func newSimple(afm type1.AFMFont, codes cmaps.CodeMap) *Font {
	kerns := make(map[uint32]int, len(afm.Kerns))
	for key, v := range afm.Kerns {
		g1, ok1 := afm.GlyphIndex[int(key>>16)]
		g2, ok2 := afm.GlyphIndex[int(key&0xFFFF)]
		if ok1 && ok2 && g1 <= 0xFFFF && g2 <= 0xFFFF {
			kerns[type1.KernKey(g1, g2)] = v
		}
	}
	tables := Tables{
		Codes:      codes,
		GlyphIndex: afm.GlyphIndex,
		Widths:     afm.Widths,
		Ascent:     afm.Ascender,
		Descent:    afm.Descender,
		UnitsPerEm: 1000,
	}
	if len(kerns) != 0 {
		tables.Kern = func(left, right int) int { return kerns[type1.KernKey(left, right)] }
	}
	return &Font{
		Transcoder: NewTranscoder(tables),
		Kind:       Simple,
		Descriptor: afm.Descriptor(),
	}
}

// NewComposite builds a composite font from the font program `prog`.
// The derived ToUnicode CMap, and the Encoding CMap when needed, are
// registered in `store`.
func NewComposite(prog *truetype.Program, store model.Store, opts cidfonts.Options) (*Font, error) {
	opts.UnitsPerEm = prog.UnitsPerEm
	enc, err := cidfonts.Synthesize(prog.GlyphIndex, prog.Widths, opts)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", prog.PostScriptName, err)
	}

	out := &Font{
		Kind:       Composite,
		Outline:    prog.Outline,
		Descriptor: prog.Descriptor(),
		Encoding:   enc.EncodingName(opts),
		SystemInfo: model.IdentityOrdering,
		Widths:     enc.Widths,
		DW:         enc.DefaultWidth,
	}

	if enc.Custom {
		stream, err := model.NewFlateStream(enc.EncodingCMap)
		if err != nil {
			return nil, err
		}
		out.EncodingRef = store.AddCMap(model.CMapStream{
			Stream:        stream,
			Name:          out.Encoding,
			CIDSystemInfo: model.IdentityOrdering,
		})
	}
	stream, err := model.NewFlateStream(enc.ToUnicodeCMap)
	if err != nil {
		return nil, err
	}
	out.ToUnicodeRef = store.AddCMap(model.CMapStream{
		Stream:        stream,
		Name:          "Adobe-Identity-UCS",
		CIDSystemInfo: model.CIDSystemInfo{Registry: "Adobe", Ordering: "UCS"},
	})

	glyphIndex := make(map[int]int, len(enc.Glyphs))
	for _, g := range enc.Glyphs {
		glyphIndex[int(g.Unicode)] = int(g.GID)
	}
	widths := make(map[int]int, len(prog.Widths))
	for gid, w := range prog.Widths {
		widths[int(gid)] = w
	}
	tables := Tables{
		Codes:      enc.CodeMap(),
		GlyphIndex: glyphIndex,
		Widths:     widths,
		Kern:       func(left, right int) int { return prog.Kern(tfonts.GID(left), tfonts.GID(right)) },
		Ascent:     prog.Metrics.Ascender,
		Descent:    prog.Metrics.Descender,
		UnitsPerEm: prog.UnitsPerEm,
	}
	if enc.HasDefault {
		tables.DefaultCode, tables.HasDefault = tables.Codes.Code(int(enc.DefaultUnicode))
	}
	out.Transcoder = NewTranscoder(tables)
	return out, nil
}

// codeFromCID returns the 2-byte key used by the predefined
// ToUnicode CMaps, which map CIDs.
func codeFromCID(cid int) cmaps.ByteCode { return cmaps.NewByteCode(uint32(cid), 2) }
