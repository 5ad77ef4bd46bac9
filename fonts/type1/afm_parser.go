package type1

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/benoitkugler/fontmap/model"
	"github.com/benoitkugler/textlayout/fonts/glyphsnames"
	"github.com/pdfcpu/pdfcpu/pkg/log"
	"golang.org/x/exp/errors/fmt"
)

// FirstImplicitCode is the code given to the first
// not encoded glyph (C -1), so that it does not collide with
// real codes. The following ones are numbered sequentially.
const FirstImplicitCode = 1 << 15

var defautFontMetrics = model.FontMetrics{
	UnderlinePosition:  -100,
	UnderlineThickness: 50,
	XHeight:            480,
	StdVW:              80,
}

// safely try to read one token; returns an error
// if it's not found
func readToken(tokens []string, index int) (string, error) {
	if index >= len(tokens) {
		return "", fmt.Errorf("invalid line %s : expected %d tokens", strings.Join(tokens, " "), index+1)
	}
	return tokens[index], nil
}

func readIntToken(tokens []string, index int) (int, error) {
	s, err := readToken(tokens, index)
	if err != nil {
		return 0, err
	}
	out, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid int in line %s (%s)", strings.Join(tokens, " "), err)
	}
	return out, nil
}

func readFloatToken(tokens []string, index int) (Fl, error) {
	s, err := readToken(tokens, index)
	if err != nil {
		return 0, err
	}
	out, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid float in line %s (%s)", strings.Join(tokens, " "), err)
	}
	return Fl(out), nil
}

type afmParser struct {
	scanner *bufio.Scanner
	font    AFMFont

	hasAscender, hasDescender bool
	nextImplicit              int
}

// next returns the fields of the next non empty line,
// or nil at the end of the input
func (p *afmParser) next() []string {
	for p.scanner.Scan() {
		if tok := strings.Fields(p.scanner.Text()); len(tok) != 0 {
			return tok
		}
	}
	return nil
}

func (p *afmParser) parse() error {
	if err := p.parseHeader(); err != nil {
		return err
	}
	if err := p.parseCharMetrics(); err != nil {
		return err
	}
	if err := p.parseKerning(); err != nil {
		return err
	}
	return p.scanner.Err()
}

func (p *afmParser) parseHeader() error {
	f := &p.font
	for tok := p.next(); tok != nil; tok = p.next() {
		var err error
		switch tok[0] {
		case "StartCharMetrics":
			return nil
		case "FontName":
			f.FontName, err = readToken(tok, 1)
		case "FullName":
			f.FullName = strings.Join(tok[1:], " ")
		case "FamilyName":
			f.FamilyName = strings.Join(tok[1:], " ")
		case "Weight":
			f.Weight, err = readToken(tok, 1)
		case "ItalicAngle":
			f.ItalicAngle, err = readFloatToken(tok, 1)
		case "IsFixedPitch":
			var s string
			s, err = readToken(tok, 1)
			f.IsFixedPitch = s == "true"
		case "CharacterSet":
			f.CharacterSet, err = readToken(tok, 1)
		case "FontBBox":
			f.BBox.Llx, err = readFloatToken(tok, 1)
			if err != nil {
				break
			}
			f.BBox.Lly, err = readFloatToken(tok, 2)
			if err != nil {
				break
			}
			f.BBox.Urx, err = readFloatToken(tok, 3)
			if err != nil {
				break
			}
			f.BBox.Ury, err = readFloatToken(tok, 4)
		case "UnderlinePosition":
			f.UnderlinePosition, err = readFloatToken(tok, 1)
		case "UnderlineThickness":
			f.UnderlineThickness, err = readFloatToken(tok, 1)
		case "EncodingScheme":
			f.EncodingScheme, err = readToken(tok, 1)
		case "CapHeight":
			f.CapHeight, err = readFloatToken(tok, 1)
		case "XHeight":
			f.XHeight, err = readFloatToken(tok, 1)
		case "Ascender":
			f.Ascender, err = readFloatToken(tok, 1)
			p.hasAscender = true
		case "Descender":
			f.Descender, err = readFloatToken(tok, 1)
			p.hasDescender = true
		case "StdHW":
			f.StdHW, err = readFloatToken(tok, 1)
		case "StdVW":
			f.StdVW, err = readFloatToken(tok, 1)
		}
		if err != nil {
			return err
		}
	}
	if err := p.scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("missing StartCharMetrics in font file")
}

// parseCharMetric parses one line of the CharMetrics section,
// returning ok = false for glyphs to skip
func (p *afmParser) parseCharMetric(line string) (met CharMetric, ok bool, err error) {
	met = CharMetric{Width: 250}
	for _, item := range strings.Split(line, ";") {
		tokc := strings.Fields(item)
		if len(tokc) == 0 {
			continue
		}
		switch tokc[0] {
		case "C":
			met.Code, err = readIntToken(tokc, 1)
		case "CH": // hexadecimal code
			var s string
			s, err = readToken(tokc, 1)
			if err == nil {
				var v uint64
				v, err = strconv.ParseUint(strings.Trim(s, "<>"), 16, 32)
				met.Code = int(v)
			}
		case "WX", "W0X":
			met.Width, err = readIntToken(tokc, 1)
		case "N":
			met.Name, err = readToken(tokc, 1)
		case "B":
			for i := range met.BBox {
				met.BBox[i], err = readIntToken(tokc, i+1)
				if err != nil {
					break
				}
			}
		}
		if err != nil {
			return met, false, err
		}
	}
	if met.Code < 0 {
		if met.Name == "" {
			return met, false, nil
		}
		met.Code = p.nextImplicit
		met.Implicit = true
		p.nextImplicit++
	}
	return met, true, nil
}

func (p *afmParser) parseCharMetrics() error {
	f := &p.font
	symbolic := f.IsSymbolic()
	for tok := p.next(); tok != nil; tok = p.next() {
		if tok[0] == "EndCharMetrics" {
			return nil
		}
		line := p.scanner.Text()
		met, ok, err := p.parseCharMetric(line)
		if err != nil {
			log.Parse.Printf("type1: dropping char metric: %s\n", err)
			continue
		}
		if !ok {
			continue
		}
		if met.Name == ".notdef" {
			f.MissingWidth = met.Width
			continue
		}

		key := met.Code
		if !symbolic && met.Name != "" {
			r, found := glyphsnames.GlyphToRune(met.Name)
			if !found {
				log.Parse.Printf("type1: dropping unknown glyph name %s\n", met.Name)
				continue
			}
			key = int(r)
		}
		if _, has := f.GlyphIndex[key]; has {
			log.Parse.Printf("type1: glyph %s (code %d) duplicates key %d\n", met.Name, met.Code, key)
			continue
		}
		f.Chars = append(f.Chars, met)
		f.GlyphIndex[key] = met.Code
		f.Widths[met.Code] = met.Width
		if met.Name != "" {
			f.names[met.Name] = key
		}
	}
	if err := p.scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("missing EndCharMetrics in font file")
}

// kernKey resolves a glyph name to the key used by the tables
func (p *afmParser) kernKey(name string) (int, bool) {
	if key, ok := p.font.names[name]; ok {
		return key, true
	}
	r, ok := glyphsnames.GlyphToRune(name)
	return int(r), ok
}

// parseKerning reads the optional KernPairs section
func (p *afmParser) parseKerning() error {
	for tok := p.next(); ; tok = p.next() {
		if tok == nil || tok[0] == "EndFontMetrics" {
			return nil
		}
		if tok[0] == "StartKernPairs" || tok[0] == "StartKernPairs0" {
			break
		}
	}

	for tok := p.next(); tok != nil; tok = p.next() {
		switch tok[0] {
		case "EndKernPairs":
			return nil
		case "KPX":
			first, err1 := readToken(tok, 1)
			second, err2 := readToken(tok, 2)
			value, err3 := readIntToken(tok, 3)
			if err1 != nil || err2 != nil || err3 != nil {
				log.Parse.Printf("type1: dropping invalid kerning line %v\n", tok)
				continue
			}
			k1, ok1 := p.kernKey(first)
			k2, ok2 := p.kernKey(second)
			if !ok1 || !ok2 || k1 > 0xFFFF || k2 > 0xFFFF {
				log.Parse.Printf("type1: dropping kerning pair %s %s\n", first, second)
				continue
			}
			p.font.Kerns[KernKey(k1, k2)] = value
		}
	}
	if err := p.scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("missing EndKernPairs in font file")
}
