package generate

import (
	"flag"
	"os"
	"testing"

	"github.com/benoitkugler/fontmap/fonts/cmaps"
)

var write = flag.Bool("write", false, "regenerate the embedded Identity-H resource")

const identityH = "../data/Identity-H"

// identity returns the 2 bytes identity mapping
func identity() []cmaps.Entry {
	out := make([]cmaps.Entry, 1<<16)
	for i := range out {
		out[i] = cmaps.Entry{Code: cmaps.NewByteCode(uint32(i), 2), Value: i}
	}
	return out
}

func TestGenerateIdentity(t *testing.T) {
	content := cmaps.SerializeEntries(identity(), cmaps.CID, "Identity-H")
	if *write {
		if err := os.WriteFile(identityH, content, os.ModePerm); err != nil {
			t.Fatal(err)
		}
	}

	generated, err := cmaps.Parse(content, cmaps.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	stored, err := os.ReadFile(identityH)
	if err != nil {
		t.Fatal(err)
	}
	embedded, err := cmaps.Parse(stored, cmaps.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(generated.Mapping) != len(embedded.Mapping) {
		t.Fatalf("expected %d entries, got %d", len(generated.Mapping), len(embedded.Mapping))
	}
	for code, cid := range generated.Mapping {
		if embedded.Mapping[code] != cid {
			t.Fatalf("mismatch for %s", code)
		}
	}
}
