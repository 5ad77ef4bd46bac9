package fonts

import (
	"fmt"
	"log"

	"github.com/benoitkugler/fontmap/fonts/cidfonts"
	"github.com/benoitkugler/fontmap/fonts/cmaps"
	"github.com/benoitkugler/fontmap/fonts/standardcmaps"
	"github.com/benoitkugler/fontmap/fonts/truetype"
	"github.com/benoitkugler/fontmap/model"
)

// CompositeDef is the description of a Type0 font found in a document.
type CompositeDef struct {
	// Encoding is the name of a predefined CMap,
	// used when EncodingStream is nil.
	Encoding       model.Name
	EncodingStream *model.CMapStream

	// ToUnicode is optional. When it is missing, the predefined
	// CMap <Registry>-<Ordering>-UCS2 is used.
	ToUnicode  *model.CMapStream
	SystemInfo model.CIDSystemInfo

	W  []model.CIDWidth
	DW int // 0 means 1000

	Descriptor model.FontDescriptor
	Outline    truetype.Outline
}

// parseStream decodes and parses an embedded CMap.
func parseStream(stream *model.CMapStream, registry *standardcmaps.Registry) (cmaps.CMap, error) {
	content, err := stream.Decode()
	if err != nil {
		return cmaps.CMap{}, err
	}
	return cmaps.Parse(content, cmaps.ParseOptions{Resolver: registry})
}

// LoadComposite builds the tables of an existing composite font.
// Predefined CMaps are looked up in `registry`, which defaults
// to standardcmaps.Default.
func LoadComposite(def CompositeDef, registry *standardcmaps.Registry) (*Font, error) {
	if registry == nil {
		registry = standardcmaps.Default
	}
	var (
		encoding cmaps.CMap
		err      error
	)
	if def.EncodingStream != nil {
		encoding, err = parseStream(def.EncodingStream, registry)
	} else {
		encoding, err = registry.CMap(def.Encoding)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid encoding for composite font: %w", err)
	}

	// code -> Unicode
	toUnicode := make(cmaps.Mapping, len(encoding.Mapping))
	if def.ToUnicode != nil {
		cm, err := parseStream(def.ToUnicode, registry)
		if err != nil {
			return nil, fmt.Errorf("invalid ToUnicode CMap: %w", err)
		}
		toUnicode = cm.Mapping
	} else if ucs, err := registry.ToUnicode(def.SystemInfo); err != nil {
		log.Printf("no ToUnicode CMap for %s: %s", def.SystemInfo, err)
	} else {
		for code, cid := range encoding.Mapping {
			if r, ok := ucs[codeFromCID(cid)]; ok {
				toUnicode[code] = r
			}
		}
	}

	var (
		entries    []cmaps.Entry
		glyphIndex = make(map[int]int)
	)
	for _, e := range toUnicode.Entries() {
		cid, ok := encoding.Mapping[e.Code]
		if !ok {
			continue
		}
		if _, dup := glyphIndex[e.Value]; dup {
			continue
		}
		entries = append(entries, e)
		glyphIndex[e.Value] = cid
	}

	dw := def.DW
	if dw == 0 {
		dw = 1000
	}
	widths := make(map[int]int)
	for cid, w := range cidfonts.DecodeWidths(def.W) {
		widths[int(cid)] = w
	}

	tables := Tables{
		Codes:        cmaps.NewCodeMap(entries),
		GlyphIndex:   glyphIndex,
		Widths:       widths,
		DefaultWidth: dw,
		Ascent:       def.Descriptor.Ascent,
		Descent:      def.Descriptor.Descent,
		UnitsPerEm:   1000,
	}
	// the .notdef glyph, if encoded
	for _, e := range entries {
		if glyphIndex[e.Value] == 0 {
			tables.DefaultCode, tables.HasDefault = e.Code, true
			break
		}
	}

	encName := def.Encoding
	if def.EncodingStream != nil {
		encName = def.EncodingStream.Name
	}
	return &Font{
		Transcoder: NewTranscoder(tables),
		Kind:       Composite,
		Outline:    def.Outline,
		Descriptor: def.Descriptor,
		Encoding:   encName,
		SystemInfo: def.SystemInfo,
		Widths:     def.W,
		DW:         dw,
	}, nil
}
