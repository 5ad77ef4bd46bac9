package model

import (
	"bytes"
	"compress/lzw"
	"testing"
)

func TestFlateRoundTrip(t *testing.T) {
	content := []byte("/CIDInit /ProcSet findresource begin 12 dict begin begincmap endcmap end end")
	s, err := NewFlateStream(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Filters) != 1 || s.Filters[0] != Flate {
		t.Fatalf("unexpected filters %v", s.Filters)
	}
	if bytes.Equal(s.Content, content) {
		t.Fatal("content should be compressed")
	}
	got, err := s.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("expected %s, got %s", content, got)
	}
}

func TestDecodeChain(t *testing.T) {
	s := Stream{
		Filters: []Filter{ASCIIHex},
		Content: []byte("3c303034313e>"),
	}
	got, err := s.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<0041>" {
		t.Fatalf("unexpected %q", got)
	}

	s = Stream{Filters: []Filter{"UnknownDecode"}}
	if _, err = s.Decode(); err == nil {
		t.Fatal("expected error for unsupported filter")
	}
}

func TestDecodeLZW(t *testing.T) {
	content := []byte("1 begincidrange <0000> <00ff> 0 endcidrange")
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, lzw.MSB, 8)
	if _, err := w.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	s := Stream{
		Filters:     []Filter{LZW},
		DecodeParms: []map[string]int{{"EarlyChange": 0}},
		Content:     buf.Bytes(),
	}
	got, err := s.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("expected %s, got %s", content, got)
	}
}

func TestMemoryStore(t *testing.T) {
	var st MemoryStore
	r1 := st.AddCMap(CMapStream{Name: "A"})
	r2 := st.AddCMap(CMapStream{Name: "B"})
	if r1 != 1 || r2 != 2 {
		t.Fatalf("unexpected references %s %s", r1, r2)
	}
	if cm, ok := st.CMap(r2); !ok || cm.Name != "B" {
		t.Fatalf("unexpected lookup %v %v", cm, ok)
	}
	if _, ok := st.CMap(0); ok {
		t.Fatal("zero reference should be invalid")
	}
	if _, ok := st.CMap(3); ok {
		t.Fatal("unknown reference")
	}
	if st.Len() != 2 {
		t.Fatal()
	}
}
