package cidfonts

import (
	"sort"

	"github.com/benoitkugler/fontmap/model"
)

// minimum number of equal widths written as a range
const minRangeRun = 3

// DeriveWidths groups the widths into W array records.
// CIDs are walked in increasing order: consecutive CIDs are grouped
// in one record, and runs of at least 3 equal widths are written as
// ranges.
func DeriveWidths(widths map[model.CID]int) []model.CIDWidth {
	cids := make([]model.CID, 0, len(widths))
	for cid := range widths {
		cids = append(cids, cid)
	}
	sort.Slice(cids, func(i, j int) bool { return cids[i] < cids[j] })

	var out []model.CIDWidth
	for start := 0; start < len(cids); {
		end := start + 1 // contiguous run [start, end)
		for end < len(cids) && cids[end] == cids[end-1]+1 {
			end++
		}
		out = append(out, groupRun(cids[start:end], widths)...)
		start = end
	}
	return out
}

// groupRun splits a run of consecutive CIDs
func groupRun(cids []model.CID, widths map[model.CID]int) []model.CIDWidth {
	var (
		out     []model.CIDWidth
		pending *model.CIDWidthArray
	)
	flush := func() {
		if pending != nil {
			out = append(out, *pending)
			pending = nil
		}
	}
	for i := 0; i < len(cids); {
		w := widths[cids[i]]
		j := i + 1
		for j < len(cids) && widths[cids[j]] == w {
			j++
		}
		if j-i >= minRangeRun {
			flush()
			out = append(out, model.CIDWidthRange{First: cids[i], Last: cids[j-1], Width: w})
		} else {
			if pending == nil {
				pending = &model.CIDWidthArray{Start: cids[i]}
			}
			for k := i; k < j; k++ {
				pending.W = append(pending.W, widths[cids[k]])
			}
		}
		i = j
	}
	flush()
	return out
}

// DecodeWidths is the inverse of DeriveWidths: it returns the widths
// defined by the records. Later records override earlier ones.
func DecodeWidths(records []model.CIDWidth) map[model.CID]int {
	out := make(map[model.CID]int)
	for _, rec := range records {
		for cid, w := range rec.Widths() {
			out[cid] = w
		}
	}
	return out
}
