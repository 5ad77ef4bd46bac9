package cmaps

// the main parsing logic is taken
// from https://git.maze.io/go/unipdf/src/branch/master/internal/cmap

import (
	"errors"
	"fmt"
	"log"

	"github.com/benoitkugler/fontmap/model"
	"github.com/benoitkugler/textlayout/fonts/glyphsnames"
	pdfcpulog "github.com/pdfcpu/pdfcpu/pkg/log"
)

// ranges are expanded in memory, so their size is bounded
const maxRangeLen = 1 << 16

// errEntry marks a single invalid entry, which is dropped
var errEntry = errors.New("invalid entry")

// CMap is the content of a CMap program,
// either a ToUnicode CMap or a CID CMap.
type CMap struct {
	Name       model.Name
	Type       int
	WMode      int // 0 for horizontal, 1 for vertical
	SystemInfo model.CIDSystemInfo
	Codespaces []Codespace

	// UseCMap is the name of the CMap this one is based on, if any.
	// Its content is already included in Mapping.
	UseCMap model.Name

	// Mapping maps character codes to CIDs or to Unicode values.
	Mapping Mapping
}

// Codespace is a range of valid character codes.
type Codespace struct {
	Low, High ByteCode
}

// Contains returns true if `code` has the length of the codespace
// and each of its bytes is in the range of the corresponding bytes.
func (c Codespace) Contains(code ByteCode) bool {
	if len(code) != len(c.Low) {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < c.Low[i] || code[i] > c.High[i] {
			return false
		}
	}
	return true
}

// Resolver provides the content of the CMaps
// referenced by name in a `usecmap` operator.
type Resolver interface {
	Resolve(name model.Name) (Mapping, error)
}

// ParseOptions configures the parser.
type ParseOptions struct {
	// Resolver is used for `usecmap`. If nil, the referenced
	// CMaps are ignored.
	Resolver Resolver
}

// parser parses CMap files, which represents either a character code to unicode mapping or
// a character code to CID mapping, both used in PDF files
// References:
//
//	https://www.adobe.com/content/dam/acom/en/devnet/acrobat/pdfs/5411.ToUnicode.pdf
//	https://github.com/adobe-type-tools/cmap-resources/releases
type parser struct {
	*lexer

	options ParseOptions
	cmap    CMap
}

// Parse interprets the CMap program `content`.
// Invalid entries are dropped, but a malformed program
// (unterminated block, unexpected token) is an error.
func Parse(content []byte, options ParseOptions) (CMap, error) {
	p := parser{lexer: newLexer(content), options: options}
	p.cmap.Mapping = Mapping{}
	if err := p.parse(); err != nil {
		return CMap{}, fmt.Errorf("%w: %s", ErrBadCMap, err)
	}
	return p.cmap, nil
}

func (p *parser) parse() error {
	// the two last objects, to handle /key value def
	var key, prev cmapObject
	for {
		o, err := p.parseObject()
		if err != nil {
			return err
		}
		switch t := o.(type) {
		case nil: // means EOF
			return nil
		case cmapOperand:
			switch t {
			case "begincodespacerange":
				err = p.parseCodespaceRange()
			case "beginbfchar":
				err = p.parseChars("endbfchar", true)
			case "begincidchar":
				err = p.parseChars("endcidchar", false)
			case "beginbfrange":
				err = p.parseRanges("endbfrange", true)
			case "begincidrange":
				err = p.parseRanges("endcidrange", false)
			case "usecmap":
				err = p.useCMap(prev)
			case "def":
				p.define(key, prev)
			case "CIDSystemInfo":
				// Some PDF generators leave the "/"" off CIDSystemInfo
				err = p.parseSystemInfo()
			}
			if err != nil {
				return err
			}
		case model.ObjName:
			if t == "CIDSystemInfo" {
				if err = p.parseSystemInfo(); err != nil {
					return err
				}
				key, prev = nil, nil
				continue
			}
		}
		key, prev = prev, o
	}
}

// define handles the `/key value def` construct
func (p *parser) define(key, value cmapObject) {
	name, ok := key.(model.ObjName)
	if !ok {
		return
	}
	switch name {
	case "CMapName":
		if v, ok := value.(model.ObjName); ok {
			p.cmap.Name = v
		}
	case "CMapType":
		if v, ok := value.(int); ok {
			p.cmap.Type = v
		}
	case "WMode":
		if v, ok := value.(int); ok {
			p.cmap.WMode = v
		}
	}
}

// useCMap replaces the current mapping by the one of the CMap
// named `prev`.
func (p *parser) useCMap(prev cmapObject) error {
	name, ok := prev.(model.ObjName)
	if !ok {
		return fmt.Errorf("expected name before usecmap, got %v", prev)
	}
	p.cmap.UseCMap = name
	if p.options.Resolver == nil {
		log.Printf("ignoring usecmap %s: no resolver", name)
		return nil
	}
	base, err := p.options.Resolver.Resolve(name)
	if err != nil {
		log.Printf("ignoring usecmap %s: %s", name, err)
		return nil
	}
	p.cmap.Mapping = base.Clone()
	return nil
}

// parseSystemInfo parses a cmap CIDSystemInfo and adds it to `cmap`.
// It is either defined with a dictionary or like this:
//
//	/CIDSystemInfo 3 dict dup begin
//	  /Registry (Adobe) def
//	  /Ordering (Japan1) def
//	  /Supplement 1 def
//	end def
func (p *parser) parseSystemInfo() error {
	inDict := false
	inDef := false
	var name model.ObjName
	done := false
	var systemInfo model.CIDSystemInfo

	// 50 is a generous but arbitrary limit to prevent an endless loop on badly formed cmap files.
	for i := 0; i < 50 && !done; i++ {
		o, err := p.parseObject()
		if err != nil {
			return err
		}
		switch t := o.(type) {
		case nil:
			return errors.New("unterminated CIDSystemInfo")
		case cmapDict:
			systemInfo.Registry, _ = t["Registry"].(string)
			systemInfo.Ordering, _ = t["Ordering"].(string)
			systemInfo.Supplement, _ = t["Supplement"].(int)
			done = true
		case cmapOperand:
			switch t {
			case "begin":
				inDict = true
			case "end":
				done = true
			case "def":
				inDef = false
			}
		case model.ObjName:
			if inDict {
				name = t
				inDef = true
			}
		case string:
			if inDef {
				switch name {
				case "Registry":
					systemInfo.Registry = t
				case "Ordering":
					systemInfo.Ordering = t
				}
			}
		case int:
			if inDef && name == "Supplement" {
				systemInfo.Supplement = t
			}
		}
	}
	if !done {
		return errors.New("invalid CIDSystemInfo")
	}

	p.cmap.SystemInfo = systemInfo
	return nil
}

// nextInBlock returns the next object of a block,
// or nil if the block is terminated by `end`
func (p *parser) nextInBlock(end string) (cmapObject, error) {
	o, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	switch t := o.(type) {
	case nil:
		return nil, fmt.Errorf("missing %s", end)
	case cmapOperand:
		if string(t) == end {
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected operand %s before %s", t, end)
	}
	return o, nil
}

// operand returns the next object of an entry
func (p *parser) operand(end string) (cmapObject, error) {
	o, err := p.nextInBlock(end)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("incomplete entry before %s", end)
	}
	return o, nil
}

// parseCodespaceRange parses the codespace range section of a CMap.
func (p *parser) parseCodespaceRange() error {
	for {
		o, err := p.nextInBlock("endcodespacerange")
		if err != nil {
			return err
		}
		if o == nil {
			return nil
		}
		hexHigh, err := p.operand("endcodespacerange")
		if err != nil {
			return err
		}
		low, high, err := codeRange(o, hexHigh)
		if err != nil {
			return err
		}
		p.cmap.Codespaces = append(p.cmap.Codespaces, Codespace{Low: low, High: high})
	}
}

// codeRange checks that `low` and `high` are valid bounds
func codeRange(low, high cmapObject) (ByteCode, ByteCode, error) {
	hexLow, ok1 := low.(cmapHexString)
	hexHigh, ok2 := high.(cmapHexString)
	if !ok1 || !ok2 {
		return "", "", fmt.Errorf("range bounds must be hex strings, got %v and %v", low, high)
	}
	if len(hexLow) != len(hexHigh) {
		return "", "", errors.New("unequal number of bytes in range")
	}
	if L := len(hexLow); L == 0 || L > maxCodeLen {
		return "", "", fmt.Errorf("unsupported number of bytes: %d", L)
	}
	lo, hi := ByteCode(hexLow), ByteCode(hexHigh)
	if hi < lo {
		return "", "", fmt.Errorf("invalid character code range %s %s", lo, hi)
	}
	return lo, hi, nil
}

// resolveTarget returns the value of a destination, which is either
// a hex string, an integer or a glyph name.
// Invalid values are reported with errEntry.
func resolveTarget(o cmapObject, bf bool) (int, error) {
	switch v := o.(type) {
	case cmapHexString:
		var (
			r   int
			err error
		)
		if bf {
			r, err = hexToUnicode(v)
		} else {
			r, err = hexToInt(v)
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %s", errEntry, err)
		}
		return r, nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("%w: negative value %d", errEntry, v)
		}
		return v, nil
	case model.ObjName:
		r, ok := glyphsnames.GlyphToRune(string(v))
		if !ok {
			return 0, fmt.Errorf("%w: unknown glyph name %s", errEntry, v)
		}
		return int(r), nil
	case cmapInvalidNumber, float64:
		return 0, fmt.Errorf("%w: invalid number %v", errEntry, v)
	default:
		return 0, fmt.Errorf("invalid target %v (%T)", o, o)
	}
}

// parseChars parses a bfchar or a cidchar section of a CMap file.
func (p *parser) parseChars(end string, bf bool) error {
	for {
		o, err := p.nextInBlock(end)
		if err != nil {
			return err
		}
		if o == nil {
			return nil
		}
		target, err := p.operand(end)
		if err != nil {
			return err
		}

		hexCode, ok := o.(cmapHexString)
		if !ok {
			return fmt.Errorf("character code must be a hex string, got %v", o)
		}
		if L := len(hexCode); L == 0 || L > maxCodeLen {
			pdfcpulog.Parse.Printf("cmaps: dropping invalid code %v\n", hexCode)
			continue
		}
		value, err := resolveTarget(target, bf)
		if errors.Is(err, errEntry) {
			pdfcpulog.Parse.Printf("cmaps: dropping code %s: %s\n", ByteCode(hexCode), err)
			continue
		} else if err != nil {
			return err
		}
		p.cmap.Mapping[ByteCode(hexCode)] = value
	}
}

// parseRanges parses a bfrange or a cidrange section of a CMap file.
func (p *parser) parseRanges(end string, bf bool) error {
	for {
		// The specifications are in triplets.
		// <srcCodeFrom> <srcCodeTo> <target>
		// where target can be either <destFrom> as a hex code, or a list.
		o, err := p.nextInBlock(end)
		if err != nil {
			return err
		}
		if o == nil {
			return nil
		}
		hexEnd, err := p.operand(end)
		if err != nil {
			return err
		}
		target, err := p.operand(end)
		if err != nil {
			return err
		}

		start, stop, err := codeRange(o, hexEnd)
		if err != nil {
			return err
		}
		size := int(stop.Uint() - start.Uint())
		if size >= maxRangeLen {
			return fmt.Errorf("range %s %s is too large", start, stop)
		}

		if arr, isArray := target.(cmapArray); isArray {
			if err = p.fillArray(start, arr, bf); err != nil {
				return err
			}
			continue
		}

		base, err := resolveTarget(target, bf)
		if errors.Is(err, errEntry) {
			pdfcpulog.Parse.Printf("cmaps: dropping range %s %s: %s\n", start, stop, err)
			continue
		} else if err != nil {
			return err
		}
		// <codeFrom> <codeTo> <dst>, maps [from,to] to [dst,dst+to-from].
		code := start
		for i := 0; ; i++ {
			p.cmap.Mapping[code] = base + i
			if i == size {
				break
			}
			var ok bool
			code, ok = code.Next()
			if !ok {
				return fmt.Errorf("range %s %s overflows its code length", start, stop)
			}
		}
	}
}

// fillArray maps the codes starting at `start` to the
// elements of `arr`
func (p *parser) fillArray(start ByteCode, arr cmapArray, bf bool) error {
	code := start
	for i, elem := range arr {
		if i > 0 {
			var ok bool
			code, ok = code.Next()
			if !ok {
				return fmt.Errorf("array starting at %s overflows its code length", start)
			}
		}
		value, err := resolveTarget(elem, bf)
		if errors.Is(err, errEntry) {
			pdfcpulog.Parse.Printf("cmaps: dropping code %s: %s\n", code, err)
			continue
		} else if err != nil {
			return err
		}
		p.cmap.Mapping[code] = value
	}
	return nil
}
