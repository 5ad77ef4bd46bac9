// This tool loads a font (from an .afm file or a TrueType/OpenType program)
// and runs the character mapping queries on it.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/benoitkugler/fontmap/fonts"
	"github.com/benoitkugler/fontmap/fonts/cidfonts"
	"github.com/benoitkugler/fontmap/fonts/cmaps"
	"github.com/benoitkugler/fontmap/fonts/truetype"
	"github.com/benoitkugler/fontmap/fonts/type1"
	"github.com/benoitkugler/fontmap/model"
	"github.com/pdfcpu/pdfcpu/pkg/log"
	"golang.org/x/text/encoding/charmap"
)

func check(err error) {
	if err != nil {
		fmt.Println("fatal error", err)
		os.Exit(1)
	}
}

func parsePolicy(s string) fonts.MissingPolicy {
	switch s {
	case "exclusion":
		return fonts.Exclusion
	case "substitution":
		return fonts.Substitution
	case "exception":
		return fonts.Exception
	default:
		check(fmt.Errorf("invalid policy %s", s))
		return 0
	}
}

func loadFont(afmPath, fontPath string, winAnsi bool, store *model.MemoryStore) *fonts.Font {
	switch {
	case afmPath != "":
		f, err := os.Open(afmPath)
		check(err)
		defer f.Close()
		afm, err := type1.ParseAFMFile(f)
		check(err)
		if winAnsi {
			return fonts.NewSimpleEncoded(afm, charmap.Windows1252)
		}
		return fonts.NewSimple(afm)
	case fontPath != "":
		data, err := os.ReadFile(fontPath)
		check(err)
		prog, err := truetype.Parse(data)
		check(err)
		font, err := fonts.NewComposite(prog, store, cidfonts.Options{Name: model.Name(prog.PostScriptName + "-Custom")})
		check(err)
		return font
	default:
		check(fmt.Errorf("one of -afm or -font is required"))
		return nil
	}
}

func dump(font *fonts.Font, kind string, store *model.MemoryStore) {
	var ref model.Reference
	switch kind {
	case "tounicode":
		if font.Kind == fonts.Simple {
			os.Stdout.Write(cmaps.SerializeEntries(font.Codes().Entries(), cmaps.BaseFont, ""))
			return
		}
		ref = font.ToUnicodeRef
	case "encoding":
		if font.EncodingRef == 0 {
			fmt.Printf("predefined encoding %s\n", font.Encoding)
			return
		}
		ref = font.EncodingRef
	default:
		check(fmt.Errorf("invalid dump kind %s", kind))
	}
	stream, ok := store.CMap(ref)
	if !ok {
		check(fmt.Errorf("missing stream %s", ref))
	}
	content, err := stream.Decode()
	check(err)
	os.Stdout.Write(content)
}

func main() {
	afmPath := flag.String("afm", "", "Adobe Font Metrics file (simple font)")
	fontPath := flag.String("font", "", "TrueType or OpenType font program (composite font)")
	encode := flag.String("encode", "", "text to encode")
	decode := flag.String("decode", "", "hexadecimal byte string to decode")
	width := flag.String("width", "", "text to measure")
	size := flag.Float64("size", 12, "font size used by -width")
	policy := flag.String("policy", "substitution", "missing character policy: exclusion, substitution or exception")
	dumpKind := flag.String("dump", "", "print a CMap: encoding or tounicode")
	winAnsi := flag.Bool("winansi", false, "use WinAnsiEncoding codes for -afm fonts")
	verbose := flag.Bool("v", false, "enable parse logging")
	flag.Parse()

	if *verbose {
		log.SetDefaultParseLogger()
	}

	var store model.MemoryStore
	font := loadFont(*afmPath, *fontPath, *winAnsi, &store)
	pol := parsePolicy(*policy)
	fmt.Printf("%s font %s (%d codes)\n", font.Kind, font.Descriptor.FontName, font.Codes().Len())
	fmt.Println(font.Descriptor)

	if *encode != "" {
		b, err := font.Encode(*encode, pol)
		check(err)
		fmt.Printf("encoded: <%X>\n", b)
	}
	if *decode != "" {
		b, err := hex.DecodeString(strings.Trim(*decode, "<>"))
		check(err)
		text, err := font.Decode(b, pol)
		check(err)
		fmt.Printf("decoded: %q\n", text)
	}
	if *width != "" {
		var total model.Fl
		for _, r := range *width {
			w, err := font.Width(r, model.Fl(*size), pol)
			check(err)
			total += w
		}
		fmt.Printf("width: %.2f, height: %.2f\n", total, font.Height(model.Fl(*size)))
	}
	if *dumpKind != "" {
		dump(font, *dumpKind, &store)
	}
}
