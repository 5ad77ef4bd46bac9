// Package model holds the PDF-side value types shared by the font
// packages: names, references to stored objects, font metrics and
// descriptors, CID width records and streams.
//
// The full document object graph is owned by the host; this package only
// describes the pieces the character-mapping engine reads or produces.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Fl is the numeric type used for float values.
type Fl = float32

// ObjName is a symbol to be referenced,
// and it is included in PDF without encoding, by prepending /
type ObjName string

// String returns the PDF representation of a name
func (n ObjName) String() string {
	return "/" + string(n)
}

// Name is so used that it deservers a shorted alias
type Name = ObjName

// Reference is a stable token returned by a Store
// when a new object is registered.
// The zero value is not a valid reference.
type Reference uint32

func (r Reference) String() string {
	return fmt.Sprintf("%d 0 R", r)
}

// IsValid returns true for references obtained from a Store.
func (r Reference) IsValid() bool { return r != 0 }

// CID is a character identifier: the intermediate key between character codes
// and glyphs in composite fonts.
type CID uint16

// Rectangle is expressed in glyph space units for fonts.
type Rectangle struct {
	Llx, Lly, Urx, Ury Fl // lower-left x, lower-left y, upper-right x, and upper-right y coordinates of the rectangle
}

func (r Rectangle) String() string {
	return writeFloatArray([]Fl{r.Llx, r.Lly, r.Urx, r.Ury})
}

// Height returns the absolute value of the height of the rectangle.
func (r Rectangle) Height() Fl {
	h := r.Ury - r.Lly
	if h < 0 {
		return -h
	}
	return h
}

// Width returns the absolute value of the width of the rectangle.
func (r Rectangle) Width() Fl {
	w := r.Urx - r.Llx
	if w < 0 {
		return -w
	}
	return w
}

func writeFloat(f Fl) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

func writeFloatArray(as []Fl) string {
	b := make([]string, len(as))
	for i, a := range as {
		b[i] = writeFloat(a)
	}
	return fmt.Sprintf("[%s]", strings.Join(b, " "))
}

func writeIntArray(as []int) string {
	b := make([]string, len(as))
	for i, a := range as {
		b[i] = strconv.Itoa(a)
	}
	return fmt.Sprintf("[%s]", strings.Join(b, " "))
}
