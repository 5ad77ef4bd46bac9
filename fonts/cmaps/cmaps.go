// Package cmaps reads and writes CMap programs, which map character codes
// either to CIDs or to Unicode values (ToUnicode CMaps).
//
// Character codes are represented by ByteCode. Parsed CMaps are exposed as a
// plain Mapping; fonts build the read-only, bidirectional CodeMap from it.
package cmaps

import (
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// MissingCodeRune replaces runes that can't be decoded.
const MissingCodeRune = '\ufffd' // �

// Entry associates a character code to its value,
// a Unicode scalar, a CID or a glyph index, depending on the context.
type Entry struct {
	Code  ByteCode
	Value int
}

// Mapping is the result of a CMap program, from
// character codes to integers.
type Mapping map[ByteCode]int

// Entries returns the entries of `m`, sorted by code.
func (m Mapping) Entries() []Entry {
	out := make([]Entry, 0, len(m))
	for code, v := range m {
		out = append(out, Entry{Code: code, Value: v})
	}
	SortEntries(out)
	return out
}

// SortEntries sorts `entries` by code, in place.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
}

// Clone returns a deep copy of `m`.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CodeMap is a bidirectional mapping between character codes
// and integers, unique in both directions.
// It is built once and is then safe for concurrent reads.
type CodeMap struct {
	toValue map[ByteCode]int
	toCode  map[int]ByteCode
	maxLen  int
}

// NewCodeMap builds the map from `entries`, in order.
// An entry whose code or value is already used is dropped,
// so that the first occurrence wins.
func NewCodeMap(entries []Entry) CodeMap {
	cm := CodeMap{
		toValue: make(map[ByteCode]int, len(entries)),
		toCode:  make(map[int]ByteCode, len(entries)),
	}
	for _, e := range entries {
		if _, has := cm.toValue[e.Code]; has {
			log.Parse.Printf("cmaps: duplicate code %s, dropping value %d\n", e.Code, e.Value)
			continue
		}
		if other, has := cm.toCode[e.Value]; has {
			log.Parse.Printf("cmaps: value %d already mapped by %s, dropping code %s\n", e.Value, other, e.Code)
			continue
		}
		cm.toValue[e.Code] = e.Value
		cm.toCode[e.Value] = e.Code
		if L := e.Code.Len(); L > cm.maxLen {
			cm.maxLen = L
		}
	}
	return cm
}

// Value returns the integer associated to `code`.
func (cm CodeMap) Value(code ByteCode) (int, bool) {
	v, ok := cm.toValue[code]
	return v, ok
}

// Code returns the character code associated to `value`.
func (cm CodeMap) Code(value int) (ByteCode, bool) {
	c, ok := cm.toCode[value]
	return c, ok
}

// MaxCodeLength returns the maximum number of bytes of the codes,
// or 0 for an empty map.
func (cm CodeMap) MaxCodeLength() int { return cm.maxLen }

// Len returns the number of entries.
func (cm CodeMap) Len() int { return len(cm.toValue) }

// Entries returns the content of the map, sorted by code.
func (cm CodeMap) Entries() []Entry { return Mapping(cm.toValue).Entries() }
