package cmaps

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ErrBadCMap is returned for malformed CMap programs.
var ErrBadCMap = errors.New("bad cmap")

var (
	utf16Dec = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	utf16Enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
)

// hexToInt returns the integer that is encoded in `shex` as a big-endian hex value
func hexToInt(shex cmapHexString) (int, error) {
	if len(shex) == 0 || len(shex) > maxCodeLen {
		return 0, fmt.Errorf("invalid hex litteral %v", shex)
	}
	return int(ByteCode(shex).Uint()), nil
}

// hexToRunes decodes the UTF-16BE encoded string `shex` to unicode runes.
// 9.10.3 ToUnicode CMaps (page 293)
// • It shall use the beginbfchar, endbfchar, beginbfrange, and endbfrange operators to define the
// mapping from character codes to Unicode character sequences expressed in UTF-16BE encoding.
func hexToRunes(shex cmapHexString) ([]rune, error) {
	// hex was already decoded
	b, err := utf16Dec.Bytes(shex)
	if err != nil {
		return nil, fmt.Errorf("invalid runes hex string %v: %s", shex, err)
	}
	return []rune(string(b)), nil
}

// hexToUnicode interprets a destination string of a bf block:
// a single UTF-16BE encoded code point is returned as such,
// otherwise the bytes are read as a big-endian integer.
func hexToUnicode(shex cmapHexString) (int, error) {
	if len(shex)%2 == 0 {
		if rs, err := hexToRunes(shex); err == nil && len(rs) == 1 && rs[0] != utf8.RuneError {
			return int(rs[0]), nil
		}
	}
	return hexToInt(shex)
}

// runeToHex returns the UTF-16BE encoding of `r`, with
// surrogates pair for runes outside the BMP.
func runeToHex(r rune) string {
	if !utf8.ValidRune(r) {
		r = MissingCodeRune
	}
	s, _ := utf16Enc.Bytes([]byte(string(r)))
	return strings.ToUpper(hex.EncodeToString(s))
}
