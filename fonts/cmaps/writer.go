package cmaps

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/benoitkugler/fontmap/model"
	"seehuhn.de/go/postscript"
)

// Mode selects the kind of CMap written.
type Mode uint8

const (
	// BaseFont produces a ToUnicode CMap (bfchar and bfrange),
	// with UTF-16BE destinations.
	BaseFont Mode = iota
	// CID produces an Identity ordered CMap (cidchar and cidrange),
	// with decimal destinations.
	CID
)

// maximum number of entries in a begin/end block
const chunkSize = 100

type singleEntry struct {
	code  ByteCode
	value int
}

type rangeEntry struct {
	first, last ByteCode
	value       int
}

// Serialize writes a CMap program mapping the code of each entry
// to its value, as returned by `code` and `value`.
// `entries` must be sorted by code. Consecutive entries are grouped
// into ranges when possible.
// `name` is optional and defaults to a name based on `mode`.
// The output only depends on its input.
func Serialize[E any](entries []E, code func(E) ByteCode, value func(E) int, mode Mode, name model.Name) []byte {
	singles, ranges := compress(entries, code, value, mode)

	if name == "" {
		if mode == BaseFont {
			name = "Adobe-Identity-UCS"
		} else {
			name = "Adobe-Identity-0"
		}
	}

	var buf bytes.Buffer
	writeHeader(&buf, mode, name)

	tag := "cid"
	if mode == BaseFont {
		tag = "bf"
	}
	for _, chunk := range chunks(singles) {
		fmt.Fprintf(&buf, "%d begin%schar\n", len(chunk), tag)
		for _, s := range chunk {
			fmt.Fprintf(&buf, "%s %s\n", s.code, formatValue(s.value, mode))
		}
		fmt.Fprintf(&buf, "end%schar\n", tag)
	}
	for _, chunk := range chunks(ranges) {
		fmt.Fprintf(&buf, "%d begin%srange\n", len(chunk), tag)
		for _, r := range chunk {
			fmt.Fprintf(&buf, "%s %s %s\n", r.first, r.last, formatValue(r.value, mode))
		}
		fmt.Fprintf(&buf, "end%srange\n", tag)
	}

	writeTrailer(&buf, mode)
	return buf.Bytes()
}

// SerializeEntries is a shortcut for Serialize with a slice of Entry.
func SerializeEntries(entries []Entry, mode Mode, name model.Name) []byte {
	return Serialize(entries,
		func(e Entry) ByteCode { return e.Code },
		func(e Entry) int { return e.Value },
		mode, name)
}

// compress walks `entries` once, grouping consecutive entries with
// equal length codes, consecutive last bytes and consecutive values.
func compress[E any](entries []E, code func(E) ByteCode, value func(E) int, mode Mode) ([]singleEntry, []rangeEntry) {
	var (
		singles []singleEntry
		ranges  []rangeEntry
	)
	if len(entries) == 0 {
		return nil, nil
	}

	pending := rangeEntry{first: code(entries[0]), last: code(entries[0]), value: value(entries[0])}
	count := 1
	flush := func() {
		if count == 1 {
			singles = append(singles, singleEntry{code: pending.first, value: pending.value})
		} else {
			ranges = append(ranges, pending)
		}
	}
	for _, e := range entries[1:] {
		c, v := code(e), value(e)
		if canExtend(pending, count, c, v, mode) {
			pending.last = c
			count++
			continue
		}
		flush()
		pending = rangeEntry{first: c, last: c, value: v}
		count = 1
	}
	flush()
	return singles, ranges
}

// canExtend returns true if (c, v) directly follows the range `r`
func canExtend(r rangeEntry, count int, c ByteCode, v int, mode Mode) bool {
	if len(c) != len(r.last) || c.prefix() != r.last.prefix() {
		return false
	}
	if int(c.last()) != int(r.last.last())+1 || v != r.value+count {
		return false
	}
	if mode == BaseFont {
		// only the last byte of the destination may vary
		if v > 0xFFFF || v>>8 != r.value>>8 {
			return false
		}
	}
	return true
}

func chunks[T any](x []T) [][]T {
	var res [][]T
	for len(x) >= chunkSize {
		res = append(res, x[:chunkSize])
		x = x[chunkSize:]
	}
	if len(x) > 0 {
		res = append(res, x)
	}
	return res
}

func formatValue(v int, mode Mode) string {
	if mode == BaseFont {
		return "<" + runeToHex(rune(v)) + ">"
	}
	return strconv.Itoa(v)
}

func writeHeader(buf *bytes.Buffer, mode Mode, name model.Name) {
	psName := postscript.Name(string(name)).PS()
	if mode == BaseFont {
		fmt.Fprintf(buf, `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo
<< /Registry %s
/Ordering %s
/Supplement 0
>> def
/CMapName %s def
/CMapType 2 def
`, postscript.String("Adobe").PS(), postscript.String("UCS").PS(), psName)
	} else {
		fmt.Fprintf(buf, `%%!PS-Adobe-3.0 Resource-CMap
%%%%DocumentNeededResources: ProcSet (CIDInit)
%%%%IncludeResource: ProcSet (CIDInit)
%%%%BeginResource: CMap %s
%%%%Title: %s
%%%%Version: 1
%%%%EndComments
/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo 3 dict dup begin
/Registry %s def
/Ordering %s def
/Supplement 0 def
end def
/CMapName %s def
/CMapVersion 1 def
/CMapType 1 def
/WMode 0 def
`, postscript.String(string(name)).PS(), postscript.String(string(name)+" Adobe Identity 0").PS(),
			postscript.String("Adobe").PS(), postscript.String("Identity").PS(), psName)
	}
	buf.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
}

func writeTrailer(buf *bytes.Buffer, mode Mode) {
	buf.WriteString(`endcmap
CMapName currentdict /CMap defineresource pop
end
end
`)
	if mode == CID {
		buf.WriteString("%%EndResource\n%%EOF\n")
	}
}
