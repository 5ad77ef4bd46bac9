package cmaps

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// maximum number of bytes per code
const maxCodeLen = 4

// ByteCode is a character code, made of 1 to 4 bytes,
// as found in PDF content streams.
// It is stored as an immutable string so that it may be used as map key,
// and compares byte-wise.
type ByteCode string

// NewByteCode returns the `length` bytes Big-Endian representation of `value`.
// Higher bytes which do not fit are dropped.
func NewByteCode(value uint32, length int) ByteCode {
	var b [maxCodeLen]byte
	for i := 0; i < length; i++ {
		b[length-1-i] = byte(value >> (8 * i))
	}
	return ByteCode(b[:length])
}

// Len returns the number of bytes of the code.
func (c ByteCode) Len() int { return len(c) }

// Uint interprets the code as a Big-Endian integer.
func (c ByteCode) Uint() uint32 {
	var v uint32
	for i := 0; i < len(c); i++ {
		v = v<<8 | uint32(c[i])
	}
	return v
}

// Next returns the code following `c` with the same length,
// propagating the carry from the last byte.
// It returns false if `c` is already the last code of its length.
func (c ByteCode) Next() (ByteCode, bool) {
	b := []byte(c)
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return ByteCode(b), true
		}
	}
	return "", false
}

// Bytes returns a copy of the code.
func (c ByteCode) Bytes() []byte { return []byte(c) }

// Hex returns the upper case hexadecimal representation, without delimiters.
func (c ByteCode) Hex() string { return strings.ToUpper(hex.EncodeToString([]byte(c))) }

// String returns the PostScript hex string representation, such as <00A1>.
func (c ByteCode) String() string { return fmt.Sprintf("<%s>", c.Hex()) }

// Compare returns -1, 0 or 1, using the byte-lexicographic order,
// so that shorter codes sort first when they are a prefix of a longer one.
func Compare(a, b ByteCode) int { return strings.Compare(string(a), string(b)) }

// prefix returns all bytes but the last one
func (c ByteCode) prefix() ByteCode {
	if len(c) == 0 {
		return ""
	}
	return c[:len(c)-1]
}

func (c ByteCode) last() byte {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1]
}
