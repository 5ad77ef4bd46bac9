package cmaps

import (
	"encoding/hex"
	"reflect"
	"testing"
)

func TestHexToRune(t *testing.T) {
	runes := [][]rune{
		{0x2003e},
		{0x0066, 0x0066},
		{0x0066, 0x0066, 0x006c},
	}
	strings := []string{
		"d840dc3e",
		"00660066",
		"00660066006c",
	}
	for i, rs := range runes {
		dec, _ := hex.DecodeString(strings[i])
		st := cmapHexString(dec)
		got, err := hexToRunes(st)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, rs) {
			t.Errorf("expected %v, got %v", rs, got)
		}
	}

	if got := runeToHex(0x2003e); got != "D840DC3E" {
		t.Errorf("unexpected %s", got)
	}
	if got := runeToHex('a'); got != "0061" {
		t.Errorf("unexpected %s", got)
	}
}

func TestHexToUnicode(t *testing.T) {
	for _, test := range []struct {
		hex      string
		expected int
	}{
		{"0041", 'A'},
		{"d840dc3e", 0x2003e},
		{"41", 0x41},
		{"00660066", 0x00660066}, // not a single rune
	} {
		dec, _ := hex.DecodeString(test.hex)
		got, err := hexToUnicode(dec)
		if err != nil {
			t.Fatal(err)
		}
		if got != test.expected {
			t.Errorf("%s: expected %X, got %X", test.hex, test.expected, got)
		}
	}
	if _, err := hexToUnicode(make([]byte, 6)); err == nil {
		t.Error("expected error for too long string")
	}
}
