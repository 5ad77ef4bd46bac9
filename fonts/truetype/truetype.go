// Package truetype loads the outline font programs (TrueType and
// CFF flavored OpenType) used to build composite fonts.
//
// Only the tables needed for character mapping and metrics are
// read; glyph outlines are left to the font program.
package truetype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"unicode"

	"github.com/benoitkugler/fontmap/model"
	"github.com/benoitkugler/textlayout/fonts"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrUnsupportedFormat is returned for font programs
// which are not TrueType or OpenType fonts (collections, Type1 fonts).
var ErrUnsupportedFormat = errors.New("unsupported font format")

// Outline is the kind of glyph outlines of a program.
type Outline uint8

const (
	TrueType Outline = iota // 'glyf' table
	CFF                     // 'CFF ' table
)

func (o Outline) String() string {
	switch o {
	case TrueType:
		return "TrueType"
	case CFF:
		return "CFF"
	default:
		return fmt.Sprintf("<Outline %d>", o)
	}
}

// unicode ranges scanned to build the character map: every
// scalar value from U+0020, surrogates excluded.
// A full scan costs about a million cmap lookups per font.
var scannedRanges = [...][2]rune{
	{0x20, 0xD7FF},
	{0xE000, unicode.MaxRune},
}

// Program is a parsed font program.
// Its tables are read-only after Parse, and safe for concurrent use.
type Program struct {
	Outline        Outline
	PostScriptName string
	UnitsPerEm     int
	NumGlyphs      int

	// Metrics are expressed in font units.
	Metrics model.FontMetrics

	// GlyphIndex is the native character map of the font.
	// Runes mapped to the .notdef glyph are not included.
	GlyphIndex map[rune]fonts.GID
	// Widths is the advance of each glyph, in font units.
	Widths map[fonts.GID]int

	// Data is the raw font program.
	Data []byte

	font *sfnt.Font
	mu   sync.Mutex
	buf  sfnt.Buffer
}

// Sniff returns the kind of outlines from the first bytes of `data`.
func Sniff(data []byte) (Outline, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: font program too short", ErrUnsupportedFormat)
	}
	switch tag := binary.BigEndian.Uint32(data); tag {
	case 0x00010000, 0x74727565: // 'true'
		return TrueType, nil
	case 0x4F54544F: // 'OTTO'
		return CFF, nil
	default:
		return 0, fmt.Errorf("%w: tag %q", ErrUnsupportedFormat, data[:4])
	}
}

// Parse reads the font program `data`, which is retained.
func Parse(data []byte) (*Program, error) {
	outline, err := Sniff(data)
	if err != nil {
		return nil, err
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid font program: %s", err)
	}

	p := &Program{
		Outline:    outline,
		UnitsPerEm: int(f.UnitsPerEm()),
		NumGlyphs:  f.NumGlyphs(),
		Data:       data,
		font:       f,
	}
	if p.UnitsPerEm == 0 {
		return nil, errors.New("invalid font program: zero units per em")
	}
	p.PostScriptName, _ = f.Name(&p.buf, sfnt.NameIDPostScript)

	if err = p.loadWidths(); err != nil {
		return nil, err
	}
	if err = p.loadCharMap(); err != nil {
		return nil, err
	}
	if err = p.loadMetrics(); err != nil {
		return nil, err
	}
	return p, nil
}

// ppem returns the size for which the metrics are expressed in font units
func (p *Program) ppem() fixed.Int26_6 { return fixed.I(p.UnitsPerEm) }

func (p *Program) loadWidths() error {
	p.Widths = make(map[fonts.GID]int, p.NumGlyphs)
	for gid := 0; gid < p.NumGlyphs && gid <= math.MaxUint16; gid++ {
		adv, err := p.font.GlyphAdvance(&p.buf, sfnt.GlyphIndex(gid), p.ppem(), font.HintingNone)
		if err != nil {
			return fmt.Errorf("invalid advance for glyph %d: %s", gid, err)
		}
		p.Widths[fonts.GID(gid)] = adv.Round()
	}
	return nil
}

func (p *Program) loadCharMap() error {
	p.GlyphIndex = make(map[rune]fonts.GID)
	for _, rg := range scannedRanges {
		for r := rg[0]; r <= rg[1]; r++ {
			gid, err := p.font.GlyphIndex(&p.buf, r)
			if err != nil {
				return fmt.Errorf("invalid character map: %s", err)
			}
			if gid != 0 {
				p.GlyphIndex[r] = fonts.GID(gid)
			}
		}
	}
	return nil
}

func (p *Program) loadMetrics() error {
	m, err := p.font.Metrics(&p.buf, p.ppem(), font.HintingNone)
	if err != nil {
		return fmt.Errorf("invalid font metrics: %s", err)
	}
	bounds, err := p.font.Bounds(&p.buf, p.ppem(), font.HintingNone)
	if err != nil {
		return fmt.Errorf("invalid font bounds: %s", err)
	}

	p.Metrics = model.FontMetrics{
		FontName:  p.PostScriptName,
		Ascender:  model.Fl(m.Ascent.Round()),
		Descender: -model.Fl(m.Descent.Round()),
		CapHeight: model.Fl(m.CapHeight.Round()),
		XHeight:   model.Fl(m.XHeight.Round()),
		// the y axis points down
		BBox: model.Rectangle{
			Llx: model.Fl(bounds.Min.X.Round()),
			Lly: -model.Fl(bounds.Max.Y.Round()),
			Urx: model.Fl(bounds.Max.X.Round()),
			Ury: -model.Fl(bounds.Min.Y.Round()),
		},
	}
	if post := p.font.PostTable(); post != nil {
		p.Metrics.ItalicAngle = model.Fl(post.ItalicAngle)
		p.Metrics.UnderlinePosition = model.Fl(post.UnderlinePosition)
		p.Metrics.UnderlineThickness = model.Fl(post.UnderlineThickness)
		p.Metrics.IsFixedPitch = post.IsFixedPitch
	} else if m.CaretSlope.Y != 0 {
		p.Metrics.ItalicAngle = -model.Fl(math.Atan2(float64(m.CaretSlope.X), float64(m.CaretSlope.Y)) * 180 / math.Pi)
	}
	return nil
}

// Kern returns the kerning adjustment between two glyphs, in font units,
// or 0 if the font has no kerning information.
func (p *Program) Kern(left, right fonts.GID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	k, err := p.font.Kern(&p.buf, sfnt.GlyphIndex(left), sfnt.GlyphIndex(right), p.ppem(), font.HintingNone)
	if err != nil {
		return 0
	}
	return k.Round()
}

// Descriptor returns a font descriptor, with values scaled to
// 1000 units per em.
func (p *Program) Descriptor() model.FontDescriptor {
	scale := func(v model.Fl) model.Fl {
		return model.Fl(math.Round(float64(v) * 1000 / float64(p.UnitsPerEm)))
	}
	m := p.Metrics
	flags := model.Symbolic // glyphs are accessed by CID
	if m.IsFixedPitch {
		flags |= model.FixedPitch
	}
	if m.ItalicAngle != 0 {
		flags |= model.Italic
	}

	out := model.FontDescriptor{
		FontName: model.Name(p.PostScriptName),
		Flags:    flags,
		FontBBox: model.Rectangle{
			Llx: scale(m.BBox.Llx), Lly: scale(m.BBox.Lly),
			Urx: scale(m.BBox.Urx), Ury: scale(m.BBox.Ury),
		},
		ItalicAngle: m.ItalicAngle,
		Ascent:      scale(m.Ascender),
		Descent:     scale(m.Descender),
		CapHeight:   scale(m.CapHeight),
		XHeight:     scale(m.XHeight),
		StemV:       80,
	}
	if out.CapHeight == 0 {
		out.CapHeight = out.Ascent
	}
	var sum, max int
	for _, w := range p.Widths {
		sum += w
		if w > max {
			max = w
		}
	}
	if len(p.Widths) != 0 {
		out.AvgWidth = scale(model.Fl(sum / len(p.Widths)))
	}
	out.MaxWidth = scale(model.Fl(max))
	out.MissingWidth = scale(model.Fl(p.Widths[0]))
	return out
}
