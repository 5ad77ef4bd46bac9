// Package type1 reads Adobe Font Metrics (.afm) files,
// which describe the metrics of simple fonts.
package type1

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/benoitkugler/fontmap/fonts/cmaps"
	"github.com/benoitkugler/fontmap/model"
)

type Fl = model.Fl

// ErrBadAFM is returned for invalid .afm files.
var ErrBadAFM = errors.New("bad AFM file")

// CharMetric is one line of the CharMetrics section.
type CharMetric struct {
	// Code is the character code, or an implicit code
	// for not encoded glyphs
	Code     int
	Implicit bool
	Width    int
	Name     string
	BBox     [4]int
}

// KernKey packs a kerning pair.
func KernKey(key1, key2 int) uint32 {
	return uint32(key1)<<16 | uint32(key2)
}

// AFMFont represents a type1 font as found in a .afm
// file.
//
// Glyphs are identified by their character code. The keys of GlyphIndex
// are Unicode values resolved from the glyph names, or the character
// codes themselves for symbolic fonts.
type AFMFont struct {
	model.FontMetrics

	// the full name of the font.
	FullName string
	// the family name of the font.
	FamilyName string
	// the character set of the font.
	CharacterSet string

	EncodingScheme string

	// MissingWidth is the width of the .notdef glyph
	MissingWidth int

	// Chars lists the retained glyphs, in file order.
	Chars []CharMetric

	// GlyphIndex maps keys to glyph indexes (character codes).
	GlyphIndex map[int]int
	// Widths maps glyph indexes to their advance.
	Widths map[int]int
	// Kerns is indexed by KernKey(key1, key2)
	Kerns map[uint32]int

	names map[string]int // glyph name -> key
}

// ParseAFMFile read a .afm file and return the associated font.
// A missing kerning section is not an error, but the header
// and the char metrics sections are required.
func ParseAFMFile(source io.Reader) (AFMFont, error) {
	p := afmParser{
		scanner:      bufio.NewScanner(source),
		nextImplicit: FirstImplicitCode,
	}
	p.font.FontMetrics = defautFontMetrics
	// deep copy to avoid state sharing
	p.font.GlyphIndex = map[int]int{}
	p.font.Widths = map[int]int{}
	p.font.Kerns = map[uint32]int{}
	p.font.names = map[string]int{}

	if err := p.parse(); err != nil {
		return AFMFont{}, fmt.Errorf("%w: %s", ErrBadAFM, err)
	}
	if !p.hasAscender {
		p.font.Ascender = p.font.BBox.Ury
	}
	if !p.hasDescender {
		p.font.Descender = p.font.BBox.Lly
	}
	p.font.CustomEncoding = p.font.IsSymbolic()
	return p.font, nil
}

// IsSymbolic returns true for fonts using their own encoding.
// Glyphs of such fonts are not identified by Unicode values.
func (f AFMFont) IsSymbolic() bool {
	return f.EncodingScheme == "FontSpecific" || f.FontName == "Symbol" || f.FontName == "ZapfDingbats"
}

// CodeMap returns the mapping between the encoded characters
// (1 byte for codes up to 255, 2 bytes otherwise) and their key.
// Glyphs with implicit codes are not encoded.
func (f AFMFont) CodeMap() cmaps.CodeMap {
	var entries []cmaps.Entry
	for key, code := range f.GlyphIndex {
		if code >= FirstImplicitCode || code > 0xFFFF {
			continue
		}
		length := 1
		if code > 0xFF {
			length = 2
		}
		entries = append(entries, cmaps.Entry{Code: cmaps.NewByteCode(uint32(code), length), Value: key})
	}
	cmaps.SortEntries(entries)
	return cmaps.NewCodeMap(entries)
}

// widthsStats collect the mean and the maximum values
// of the glyphs width
func (f AFMFont) widthsStats() (mean, max Fl) {
	if len(f.Widths) == 0 {
		return 0, 0
	}
	for _, width := range f.Widths {
		w := Fl(width)
		if w > max {
			max = w
		}
		mean += w
	}
	mean /= Fl(len(f.Widths))
	return mean, max
}

// Descriptor synthetize a font descriptor from the
// font metrics.
func (f AFMFont) Descriptor() model.FontDescriptor {
	if f.CapHeight == 0 {
		f.CapHeight = f.Ascender
	}

	flag := model.Nonsymbolic
	if f.IsSymbolic() {
		flag = model.Symbolic
	}
	if f.IsFixedPitch {
		flag |= model.FixedPitch
	}
	if f.ItalicAngle != 0 {
		flag |= model.Italic
	}
	if f.StdVW == 0 {
		isBold := f.Weight == "Bold" || f.Weight == "Black"
		if isBold {
			f.StdVW = 120
		} else {
			f.StdVW = 80
		}
	}

	out := model.FontDescriptor{
		FontName:    model.ObjName(f.FontName),
		Flags:       flag,
		FontBBox:    f.BBox,
		ItalicAngle: f.ItalicAngle,
		Ascent:      f.Ascender,
		Descent:     f.Descender,
		CapHeight:   f.CapHeight,
		XHeight:     f.XHeight,
		StemV:       f.StdVW,
		StemH:       f.StdHW,
	}

	out.MissingWidth = Fl(f.MissingWidth)
	out.AvgWidth, out.MaxWidth = f.widthsStats()
	return out
}
