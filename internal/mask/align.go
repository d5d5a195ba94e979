package mask

import "github.com/banshee-data/echomask/internal/echogram"

// AlignColumns returns the reference columns whose pulse length, start depth
// and sample interval equal the candidate's at the same ping index. Pings
// beyond the shorter of the two are never aligned. Matching is exact.
func AlignColumns(ref, cand echogram.ObsParams) []int {
	n := min(len(ref.PulseLength), len(ref.StartDepth), len(ref.SampleInterval),
		len(cand.PulseLength), len(cand.StartDepth), len(cand.SampleInterval))
	cols := make([]int, 0, n)
	for c := 0; c < n; c++ {
		if ref.Matches(c, cand, c) {
			cols = append(cols, c)
		}
	}
	return cols
}
