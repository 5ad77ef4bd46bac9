// Package cidfonts builds the tables of composite (Type0) fonts
// created from an outline font program: the character codes exposed
// in content streams, the derived Encoding and ToUnicode CMaps, and the
// width records of the descendant CIDFont.
package cidfonts

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/benoitkugler/fontmap/fonts/cmaps"
	"github.com/benoitkugler/fontmap/model"
	"github.com/benoitkugler/textlayout/fonts"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// ErrCodeSpaceExhausted is returned when no 2-byte code is left
// to remap a glyph.
var ErrCodeSpaceExhausted = errors.New("character code space exhausted")

// IdentityH is the predefined encoding used when each
// character code is the glyph index.
const IdentityH model.Name = "Identity-H"

// codes are always 2 bytes long
const codeLength = 2

// Options configures the synthesis.
type Options struct {
	// Name is the name of the custom Encoding CMap, if one is needed.
	// It defaults to "Adobe-Identity-0".
	Name model.Name
	// UnitsPerEm is used to scale the widths to 1000 units per em.
	// Zero means no scaling.
	UnitsPerEm int
}

// Glyph is one entry of the synthesized table.
type Glyph struct {
	Code    cmaps.ByteCode
	Unicode rune
	GID     fonts.GID
}

// Encoding is the result of Synthesize.
type Encoding struct {
	// Glyphs is sorted by code, and unique in both Code and Unicode.
	Glyphs []Glyph

	// Custom is true when at least one code is not its glyph index.
	Custom bool

	// DefaultUnicode is the character mapped to the .notdef glyph,
	// if HasDefault is true.
	DefaultUnicode rune
	HasDefault     bool

	// EncodingCMap is the CID keyed CMap program, nil
	// when the predefined Identity-H encoding is used.
	EncodingCMap []byte
	// ToUnicodeCMap maps the codes to their Unicode value.
	ToUnicodeCMap []byte

	// Widths are scaled to 1000 units per em.
	Widths       []model.CIDWidth
	DefaultWidth int
}

// EncodingName returns the name of the encoding: Identity-H
// or the name of the custom CMap.
func (e Encoding) EncodingName(opts Options) model.Name {
	if !e.Custom {
		return IdentityH
	}
	if opts.Name == "" {
		return "Adobe-Identity-0"
	}
	return opts.Name
}

// CodeMap returns the mapping between codes and Unicode values.
func (e Encoding) CodeMap() cmaps.CodeMap {
	entries := make([]cmaps.Entry, len(e.Glyphs))
	for i, g := range e.Glyphs {
		entries[i] = cmaps.Entry{Code: g.Code, Value: int(g.Unicode)}
	}
	return cmaps.NewCodeMap(entries)
}

// GlyphIndex returns the mapping from Unicode values to glyphs,
// restricted to the encoded characters.
func (e Encoding) GlyphIndex() map[rune]fonts.GID {
	out := make(map[rune]fonts.GID, len(e.Glyphs))
	for _, g := range e.Glyphs {
		out[g.Unicode] = g.GID
	}
	return out
}

// Synthesize assigns a 2-byte code to each character of `glyphIndex`.
// Codes are the glyph indexes, except when several characters share
// a glyph: such characters receive a code which is not a glyph index
// of the font, and custom CMaps are then generated.
// `widths` lists the advances of all the glyphs of the font, in font units.
// The characters are processed in increasing order, so that the output
// only depends on the input.
func Synthesize(glyphIndex map[rune]fonts.GID, widths map[fonts.GID]int, opts Options) (Encoding, error) {
	runes := make([]rune, 0, len(glyphIndex))
	usedGIDs := make(map[int]bool, len(widths))
	for r, gid := range glyphIndex {
		runes = append(runes, r)
		usedGIDs[int(gid)] = true
	}
	for gid := range widths {
		usedGIDs[int(gid)] = true
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })

	var (
		out       Encoding
		assigned  = make(map[int]bool, len(runes))
		lastProbe = 0
	)
	for _, r := range runes {
		gid := glyphIndex[r]
		code := int(gid)
		if gid == 0 && !out.HasDefault {
			out.DefaultUnicode, out.HasDefault = r, true
		}
		if assigned[code] {
			if gid == 0 {
				continue
			}
			next, ok := probe(lastProbe, usedGIDs, assigned)
			if !ok {
				return Encoding{}, fmt.Errorf("%w: remapping U+%04X", ErrCodeSpaceExhausted, r)
			}
			log.Parse.Printf("cidfonts: U+%04X shares glyph %d, remapped to code %d\n", r, gid, next)
			code, lastProbe = next, next
			out.Custom = true
		}
		assigned[code] = true
		out.Glyphs = append(out.Glyphs, Glyph{
			Code:    cmaps.NewByteCode(uint32(code), codeLength),
			Unicode: r,
			GID:     gid,
		})
	}
	sort.Slice(out.Glyphs, func(i, j int) bool { return out.Glyphs[i].Code < out.Glyphs[j].Code })

	code := func(g Glyph) cmaps.ByteCode { return g.Code }
	if out.Custom {
		out.EncodingCMap = cmaps.Serialize(out.Glyphs, code, func(g Glyph) int { return int(g.GID) }, cmaps.CID, opts.Name)
	}
	out.ToUnicodeCMap = cmaps.Serialize(out.Glyphs, code, func(g Glyph) int { return int(g.Unicode) }, cmaps.BaseFont, "")

	scaled := scaleWidths(widths, opts.UnitsPerEm)
	out.DefaultWidth = averageWidth(scaled)
	cidWidths := make(map[model.CID]int, len(out.Glyphs))
	for _, g := range out.Glyphs {
		if w, ok := scaled[g.GID]; ok {
			cidWidths[model.CID(g.GID)] = w
		}
	}
	out.Widths = DeriveWidths(cidWidths)
	return out, nil
}

// probe returns the first integer after `last` which is
// neither a glyph index nor an assigned code.
func probe(last int, usedGIDs, assigned map[int]bool) (int, bool) {
	for c := last + 1; c <= math.MaxUint16; c++ {
		if !usedGIDs[c] && !assigned[c] {
			return c, true
		}
	}
	return 0, false
}

func scaleWidths(widths map[fonts.GID]int, unitsPerEm int) map[fonts.GID]int {
	if unitsPerEm == 0 || unitsPerEm == 1000 {
		return widths
	}
	out := make(map[fonts.GID]int, len(widths))
	for gid, w := range widths {
		out[gid] = int(math.Round(float64(w) * 1000 / float64(unitsPerEm)))
	}
	return out
}

// averageWidth is the mean of the widths, rounded toward zero
func averageWidth(widths map[fonts.GID]int) int {
	if len(widths) == 0 {
		return 0
	}
	sum := 0
	for _, w := range widths {
		sum += w
	}
	return sum / len(widths)
}
