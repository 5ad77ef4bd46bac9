package model

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/hhrutter/lzw"
	"github.com/pdfcpu/pdfcpu/pkg/filter"
)

const (
	ASCII85   Filter = "ASCII85Decode"
	ASCIIHex  Filter = "ASCIIHexDecode"
	RunLength Filter = "RunLengthDecode"
	LZW       Filter = "LZWDecode"
	Flate     Filter = "FlateDecode"
)

type Filter string

// Stream is an encoded content, as stored in a PDF file.
// Only the filters relevant for textual resources (such as CMaps)
// are supported.
type Stream struct {
	Filters []Filter
	// DecodeParms has either the same length as Filters
	// or is empty.
	DecodeParms []map[string]int
	Content     []byte // encoded
}

// ParamsForFilter returns the parameters of the filter at `index`,
// which may be nil.
func (s Stream) ParamsForFilter(index int) map[string]int {
	if index >= len(s.DecodeParms) {
		return nil
	}
	return s.DecodeParms[index]
}

// Decode applies the filters in sequence
// and returns the decoded content.
func (s Stream) Decode() ([]byte, error) {
	var current io.Reader = bytes.NewReader(s.Content)
	for i, f := range s.Filters {
		params := s.ParamsForFilter(i)
		if f == LZW {
			// the LZW filter of pdfcpu does not expose EarlyChange
			earlyChange := true
			if v, ok := params["EarlyChange"]; ok {
				earlyChange = v == 1
			}
			rc := lzw.NewReader(current, earlyChange)
			decoded, err := ioutil.ReadAll(rc)
			if err != nil {
				return nil, fmt.Errorf("invalid LZW stream: %s", err)
			}
			if err = rc.Close(); err != nil {
				return nil, err
			}
			current = bytes.NewReader(decoded)
			continue
		}
		fp, err := filter.NewFilter(string(f), params)
		if err != nil {
			return nil, fmt.Errorf("unsupported filter %s: %s", f, err)
		}
		current, err = fp.Decode(current)
		if err != nil {
			return nil, fmt.Errorf("invalid %s stream: %s", f, err)
		}
	}
	return ioutil.ReadAll(current)
}

// NewFlateStream compresses `content` with the Flate filter.
func NewFlateStream(content []byte) (Stream, error) {
	fp, err := filter.NewFilter(string(Flate), nil)
	if err != nil {
		return Stream{}, err
	}
	r, err := fp.Encode(bytes.NewReader(content))
	if err != nil {
		return Stream{}, err
	}
	encoded, err := ioutil.ReadAll(r)
	if err != nil {
		return Stream{}, err
	}
	return Stream{Filters: []Filter{Flate}, Content: encoded}, nil
}

// CMapStream is a CMap program stored as a stream object,
// either as /Encoding of a Type0 font or as /ToUnicode.
type CMapStream struct {
	Stream

	Name          Name
	CIDSystemInfo CIDSystemInfo
	UseCMap       Name // optional
}
