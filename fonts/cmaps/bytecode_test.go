package cmaps

import (
	"sort"
	"testing"
)

func TestByteCode(t *testing.T) {
	c := NewByteCode(0x4142, 2)
	if c != "AB" || c.Len() != 2 || c.Uint() != 0x4142 {
		t.Fatalf("unexpected code %q", c)
	}
	if NewByteCode(0x41, 2) != "\x00A" {
		t.Fatal("expected zero padding")
	}
	if s := NewByteCode(0xA1, 2).String(); s != "<00A1>" {
		t.Fatalf("unexpected %s", s)
	}

	for _, test := range []struct {
		in, out ByteCode
		ok      bool
	}{
		{"\x00\x01", "\x00\x02", true},
		{"\x00\xff", "\x01\x00", true},
		{"\x01\xff\xff", "\x02\x00\x00", true},
		{"\xff\xff", "", false},
		{"\xff", "", false},
	} {
		got, ok := test.in.Next()
		if got != test.out || ok != test.ok {
			t.Errorf("%q: expected %q %v, got %q %v", test.in, test.out, test.ok, got, ok)
		}
	}

	codes := []ByteCode{"\x42", "\x41\x42", "\x41", "\x00\x01"}
	sort.Slice(codes, func(i, j int) bool { return Compare(codes[i], codes[j]) < 0 })
	expected := []ByteCode{"\x00\x01", "\x41", "\x41\x42", "\x42"}
	for i := range codes {
		if codes[i] != expected[i] {
			t.Fatalf("unexpected order %q", codes)
		}
	}
}

func TestCodeMap(t *testing.T) {
	cm := NewCodeMap([]Entry{
		{Code: "\x41", Value: 'A'},
		{Code: "\x41\x42", Value: 'Z'},
		{Code: "\x41", Value: 'B'}, // duplicate code
		{Code: "\x43", Value: 'A'}, // duplicate value
	})
	if cm.Len() != 2 || cm.MaxCodeLength() != 2 {
		t.Fatalf("unexpected map %v", cm.Entries())
	}
	if v, ok := cm.Value("\x41"); !ok || v != 'A' {
		t.Error()
	}
	if c, ok := cm.Code('Z'); !ok || c != "\x41\x42" {
		t.Error()
	}
	if _, ok := cm.Code('B'); ok {
		t.Error("dropped value should not be mapped")
	}
	if _, ok := cm.Value("\x43"); ok {
		t.Error("dropped code should not be mapped")
	}
	// bidirectional
	for _, e := range cm.Entries() {
		c, _ := cm.Code(e.Value)
		if c != e.Code {
			t.Errorf("inconsistent entry %v", e)
		}
	}

	if empty := NewCodeMap(nil); empty.MaxCodeLength() != 0 || empty.Len() != 0 {
		t.Error("invalid empty map")
	}
}
