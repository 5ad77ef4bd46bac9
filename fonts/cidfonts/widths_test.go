package cidfonts

import (
	"reflect"
	"testing"

	"github.com/benoitkugler/fontmap/model"
)

func TestDeriveWidths(t *testing.T) {
	for _, test := range []struct {
		widths map[model.CID]int
		exp    []model.CIDWidth
	}{
		{nil, nil},
		{
			map[model.CID]int{1: 500, 2: 500, 3: 500, 4: 600, 5: 700, 7: 800},
			[]model.CIDWidth{
				model.CIDWidthRange{First: 1, Last: 3, Width: 500},
				model.CIDWidthArray{Start: 4, W: []int{600, 700}},
				model.CIDWidthArray{Start: 7, W: []int{800}},
			},
		},
		{
			map[model.CID]int{10: 1, 11: 2, 12: 2, 13: 3, 14: 3, 15: 3, 16: 3, 17: 4},
			[]model.CIDWidth{
				model.CIDWidthArray{Start: 10, W: []int{1, 2, 2}},
				model.CIDWidthRange{First: 13, Last: 16, Width: 3},
				model.CIDWidthArray{Start: 17, W: []int{4}},
			},
		},
	} {
		got := DeriveWidths(test.widths)
		if !reflect.DeepEqual(got, test.exp) {
			t.Errorf("expected %v, got %v", test.exp, got)
		}
		decoded := DecodeWidths(got)
		if len(test.widths) != 0 && !reflect.DeepEqual(decoded, test.widths) {
			t.Errorf("expected %v, got %v", test.widths, decoded)
		}
	}
}

func TestDecodeWidthsOverride(t *testing.T) {
	got := DecodeWidths([]model.CIDWidth{
		model.CIDWidthRange{First: 0, Last: 2, Width: 100},
		model.CIDWidthArray{Start: 2, W: []int{50}},
	})
	exp := map[model.CID]int{0: 100, 1: 100, 2: 50}
	if !reflect.DeepEqual(got, exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}
}
