package model

import (
	"fmt"
	"strings"
)

// FontFlag specify various characteristics of a font.
type FontFlag uint32

const (
	FixedPitch  FontFlag = 1
	Serif       FontFlag = 1 << 1
	Symbolic    FontFlag = 1 << 2
	Script      FontFlag = 1 << 3
	Nonsymbolic FontFlag = 1 << 5
	Italic      FontFlag = 1 << 6
	AllCap      FontFlag = 1 << 16
	SmallCap    FontFlag = 1 << 17
	ForceBold   FontFlag = 1 << 18
)

// FontMetrics are the global metrics of a font,
// expressed in unscaled design units.
// They are immutable once parsed, and owned by the font which parsed them.
type FontMetrics struct {
	FontName string
	Weight   string // normal, bold, etc.

	Ascender  Fl
	Descender Fl // usually negative
	CapHeight Fl
	XHeight   Fl

	// the angle, expressed in degrees counterclockwise from
	// the vertical, of the dominant vertical strokes of the font
	ItalicAngle Fl

	StdHW Fl // dominant horizontal stem width
	StdVW Fl // dominant vertical stem width

	UnderlinePosition  Fl
	UnderlineThickness Fl

	BBox Rectangle

	// true if all the characters have the same width.
	IsFixedPitch bool
	// true if the font uses its own, font specific encoding,
	// in which case glyphs are identified by code and not by Unicode.
	CustomEncoding bool
}

// FontDescriptor is the summary of a font written in PDF files.
// Values are expressed in glyph space (1000 units per em).
type FontDescriptor struct {
	// PostScript name of the font: the value of BaseFont in the font or
	// CIDFont dictionary that refers to this font descriptor
	FontName Name
	Flags    FontFlag
	FontBBox Rectangle // specify the font bounding box, expressed in the glyph coordinate system
	// angle, expressed in degrees counterclockwise from
	// the vertical, of the dominant vertical strokes of the font.
	ItalicAngle  Fl
	Ascent       Fl // maximum height above the baseline reached by glyphs in this font
	Descent      Fl // (negative number) maximum depth below the baseline reached by glyphs in this font
	CapHeight    Fl // vertical coordinate of the top of flat capital letters, measured from the baseline
	XHeight      Fl // optional, default to 0. Vertical coordinate of the top of flat nonascending lowercase letters
	StemV        Fl // thickness, measured horizontally, of the dominant vertical stems of glyphs in the font
	StemH        Fl // optional, default to 0. Thickness, measured vertically, of the dominant horizontal stems of glyphs in the font.
	AvgWidth     Fl // optional, default to 0. Average width of glyphs in the font.
	MaxWidth     Fl // optional, default to 0. Maximum width of glyphs in the font.
	MissingWidth Fl // optional, default to 0. Width to use for character codes whose widths are not specified
}

// String returns the PDF dictionary of the descriptor,
// without the embedded font file.
func (f FontDescriptor) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<</Type /FontDescriptor /FontName %s /Flags %d /FontBBox %s /ItalicAngle %s /Ascent %s /Descent %s",
		f.FontName, f.Flags, f.FontBBox, writeFloat(f.ItalicAngle), writeFloat(f.Ascent), writeFloat(f.Descent))
	fmt.Fprintf(&b, " /CapHeight %s", writeFloat(f.CapHeight))
	if f.XHeight != 0 {
		fmt.Fprintf(&b, " /XHeight %s", writeFloat(f.XHeight))
	}
	fmt.Fprintf(&b, " /StemV %s", writeFloat(f.StemV))
	if f.StemH != 0 {
		fmt.Fprintf(&b, " /StemH %s", writeFloat(f.StemH))
	}
	if f.AvgWidth != 0 {
		fmt.Fprintf(&b, " /AvgWidth %s", writeFloat(f.AvgWidth))
	}
	if f.MaxWidth != 0 {
		fmt.Fprintf(&b, " /MaxWidth %s", writeFloat(f.MaxWidth))
	}
	if f.MissingWidth != 0 {
		fmt.Fprintf(&b, " /MissingWidth %s", writeFloat(f.MissingWidth))
	}
	b.WriteString(">>")
	return b.String()
}

// CIDSystemInfo identifies the character collection
// of a CIDFont.
type CIDSystemInfo struct {
	Registry   string
	Ordering   string
	Supplement int
}

// ToUnicodeCMapName returns the name of the predefined
// CMap mapping the CIDs of the collection to Unicode,
// as described in 9.10.2 - Mapping Character Codes to Unicode Values.
func (c CIDSystemInfo) ToUnicodeCMapName() Name {
	return Name(c.Registry + "-" + c.Ordering + "-UCS2")
}

// String returns a dictionary representation
func (c CIDSystemInfo) String() string {
	return fmt.Sprintf("<</Registry (%s) /Ordering (%s) /Supplement %d>>", c.Registry, c.Ordering, c.Supplement)
}

// IdentityOrdering is the collection used by fonts
// addressing their glyphs directly by index.
var IdentityOrdering = CIDSystemInfo{Registry: "Adobe", Ordering: "Identity"}

// CIDWidth groups the two ways of defining widths for CID
type CIDWidth interface {
	// Widths returns the widths for each CID, defined in glyph units
	Widths() map[CID]int
	// String returns a PDF representation of the width
	String() string
}

// CIDWidthRange is written in PDF as
//
//	c_first c_last w
type CIDWidthRange struct {
	First, Last CID
	Width       int
}

func (c CIDWidthRange) Widths() map[CID]int {
	out := make(map[CID]int, int(c.Last)-int(c.First)+1)
	for r := int(c.First); r <= int(c.Last); r++ {
		out[CID(r)] = c.Width
	}
	return out
}

func (c CIDWidthRange) String() string {
	return fmt.Sprintf("%d %d %d", c.First, c.Last, c.Width)
}

// CIDWidthArray is written in PDF as
//
//	c [ w_1 w_2 ... w_n ]
type CIDWidthArray struct {
	Start CID
	W     []int
}

func (c CIDWidthArray) Widths() map[CID]int {
	out := make(map[CID]int, len(c.W))
	for i, w := range c.W {
		out[c.Start+CID(i)] = w
	}
	return out
}

func (c CIDWidthArray) String() string {
	return fmt.Sprintf("%d %s", c.Start, writeIntArray(c.W))
}
