package fonts

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/benoitkugler/fontmap/fonts/cmaps"
)

// MissingPolicy selects the behavior of a Transcoder
// when a code or a character is not found.
// It is chosen by the caller, for each call.
type MissingPolicy uint8

const (
	// Exclusion silently skips the missing element.
	Exclusion MissingPolicy = iota
	// Substitution uses the default character of the font,
	// or skips the element if the font has none.
	Substitution
	// Exception aborts the operation with an error
	// satisfying errors.Is(err, ErrMissingCharacter).
	Exception
)

func (p MissingPolicy) String() string {
	switch p {
	case Exclusion:
		return "exclusion"
	case Substitution:
		return "substitution"
	case Exception:
		return "exception"
	default:
		return fmt.Sprintf("<MissingPolicy %d>", p)
	}
}

// ErrMissingCharacter is the common cause of the errors
// returned under the Exception policy.
var ErrMissingCharacter = errors.New("missing character")

// DecodeError is returned when a code can't be decoded.
type DecodeError struct {
	Code []byte
	Pos  int // in bytes
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("no character for code <%X> at byte %d", e.Code, e.Pos)
}

func (e *DecodeError) Unwrap() error { return ErrMissingCharacter }

// EncodeError is returned when a character has no code.
type EncodeError struct {
	Char rune
	Pos  int // in runes
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("no code for character %q (U+%04X) at position %d", e.Char, e.Char, e.Pos)
}

func (e *EncodeError) Unwrap() error { return ErrMissingCharacter }

// GlyphError is returned by metrics queries on a character
// without glyph.
type GlyphError struct {
	Char rune
}

func (e *GlyphError) Error() string {
	return fmt.Sprintf("no glyph for character %q (U+%04X)", e.Char, e.Char)
}

func (e *GlyphError) Unwrap() error { return ErrMissingCharacter }

// Tables are the read-only mappings needed by a Transcoder.
// Keys are Unicode values, or character codes for symbolic simple fonts.
type Tables struct {
	Codes      cmaps.CodeMap // code <-> key
	GlyphIndex map[int]int   // key -> glyph
	Widths     map[int]int   // glyph -> advance

	// Kern returns the kerning between two glyphs, and may be nil.
	Kern func(left, right int) int

	// DefaultCode is used by the Substitution policy,
	// if HasDefault is true.
	DefaultCode cmaps.ByteCode
	HasDefault  bool

	// DefaultWidth overrides the default width, which is otherwise
	// the mean of Widths.
	DefaultWidth int

	Ascent, Descent Fl
	// UnitsPerEm is the scale of the widths. Zero means 1000.
	UnitsPerEm int
}

// Transcoder converts between byte strings found in content streams
// and text, and provides the metrics of the characters.
// It is safe for concurrent use.
type Transcoder struct {
	tables Tables
	maxLen int
	height Fl

	defaultWidth     int
	defaultWidthOnce sync.Once

	mu   sync.Mutex
	used map[cmaps.ByteCode]struct{}
}

// NewTranscoder takes ownership of `tables`, which must not
// be modified afterward.
func NewTranscoder(tables Tables) *Transcoder {
	if tables.UnitsPerEm == 0 {
		tables.UnitsPerEm = 1000
	}
	return &Transcoder{
		tables: tables,
		maxLen: tables.Codes.MaxCodeLength(),
		height: tables.Ascent - tables.Descent,
		used:   make(map[cmaps.ByteCode]struct{}),
	}
}

// Codes returns the code map of the font.
func (tr *Transcoder) Codes() cmaps.CodeMap { return tr.tables.Codes }

func (tr *Transcoder) substitute() (rune, bool) {
	if !tr.tables.HasDefault {
		return 0, false
	}
	v, ok := tr.tables.Codes.Value(tr.tables.DefaultCode)
	return rune(v), ok
}

// Decode converts a byte string to text. At each position, the
// shortest code known by the font is used.
func (tr *Transcoder) Decode(s []byte, policy MissingPolicy) (string, error) {
	maxLen := tr.maxLen
	if maxLen == 0 {
		maxLen = 1
	}
	out := make([]rune, 0, len(s))
	for pos := 0; pos < len(s); {
		remaining := len(s) - pos
		if remaining > maxLen {
			remaining = maxLen
		}
		found := false
		for l := 1; l <= remaining; l++ {
			if v, ok := tr.tables.Codes.Value(cmaps.ByteCode(s[pos : pos+l])); ok {
				out = append(out, rune(v))
				pos += l
				found = true
				break
			}
		}
		if found {
			continue
		}
		switch policy {
		case Substitution:
			r, ok := tr.substitute()
			if !ok {
				r = cmaps.MissingCodeRune
			}
			out = append(out, r)
		case Exception:
			return "", &DecodeError{Code: append([]byte(nil), s[pos:pos+remaining]...), Pos: pos}
		}
		pos += remaining
	}
	return string(out), nil
}

// Encode converts text to a byte string. Control characters (below 32)
// are ignored. The codes written are recorded (see CodePoints).
func (tr *Transcoder) Encode(text string, policy MissingPolicy) ([]byte, error) {
	var (
		out  []byte
		used []cmaps.ByteCode
	)
	pos := 0
	for _, r := range text {
		pos++
		if r < 32 {
			continue
		}
		code, ok := tr.tables.Codes.Code(int(r))
		if !ok {
			switch policy {
			case Exclusion:
				continue
			case Substitution:
				if !tr.tables.HasDefault {
					continue
				}
				code = tr.tables.DefaultCode
			case Exception:
				return nil, &EncodeError{Char: r, Pos: pos - 1}
			}
		}
		out = append(out, string(code)...)
		used = append(used, code)
	}

	tr.mu.Lock()
	for _, code := range used {
		tr.used[code] = struct{}{}
	}
	tr.mu.Unlock()
	return out, nil
}

// UsedCodes returns the sorted codes written by Encode so far.
func (tr *Transcoder) UsedCodes() []cmaps.ByteCode {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]cmaps.ByteCode, 0, len(tr.used))
	for code := range tr.used {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CodePoints returns the characters (keys) encoded so far.
func (tr *Transcoder) CodePoints() map[int]bool {
	codes := tr.UsedCodes()
	out := make(map[int]bool, len(codes))
	for _, code := range codes {
		if v, ok := tr.tables.Codes.Value(code); ok {
			out[v] = true
		}
	}
	return out
}

// DefaultWidth returns the width used for missing glyphs,
// in glyph units.
func (tr *Transcoder) DefaultWidth() int {
	tr.defaultWidthOnce.Do(func() {
		if tr.tables.DefaultWidth != 0 {
			tr.defaultWidth = tr.tables.DefaultWidth
			return
		}
		if len(tr.tables.Widths) == 0 {
			return
		}
		sum := 0
		for _, w := range tr.tables.Widths {
			sum += w
		}
		tr.defaultWidth = sum / len(tr.tables.Widths)
	})
	return tr.defaultWidth
}

func (tr *Transcoder) scale(v int, size Fl) Fl {
	return Fl(v) * size / Fl(tr.tables.UnitsPerEm)
}

// glyph resolves `c`, applying `policy` on failure.
// ok is false if the query result must be 0.
func (tr *Transcoder) glyph(c rune, policy MissingPolicy) (glyph int, found, ok bool, err error) {
	if g, has := tr.tables.GlyphIndex[int(c)]; has {
		return g, true, true, nil
	}
	switch policy {
	case Substitution:
		return 0, false, true, nil
	case Exception:
		return 0, false, false, &GlyphError{Char: c}
	default:
		return 0, false, false, nil
	}
}

// Width returns the advance of `c` for the font size `size`.
func (tr *Transcoder) Width(c rune, size Fl, policy MissingPolicy) (Fl, error) {
	g, found, ok, err := tr.glyph(c, policy)
	if !ok {
		return 0, err
	}
	if found {
		if w, has := tr.tables.Widths[g]; has {
			return tr.scale(w, size), nil
		}
	}
	return tr.scale(tr.DefaultWidth(), size), nil
}

// Height returns the distance between the ascent and the descent,
// for the font size `size`.
func (tr *Transcoder) Height(size Fl) Fl {
	return tr.height * size / Fl(tr.tables.UnitsPerEm)
}

// Kerning returns the adjustment between `left` and `right`.
// A pair without kerning information returns 0; the policy only
// applies to characters without glyph.
func (tr *Transcoder) Kerning(left, right rune, size Fl, policy MissingPolicy) (Fl, error) {
	g1, found1, ok, err := tr.glyph(left, policy)
	if !ok {
		return 0, err
	}
	g2, found2, ok, err := tr.glyph(right, policy)
	if !ok {
		return 0, err
	}
	if !found1 || !found2 || tr.tables.Kern == nil {
		return 0, nil
	}
	return tr.scale(tr.tables.Kern(g1, g2), size), nil
}
