package ssl

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/echomask/internal/echogram"
)

// colRun is one column feature: a contiguous run of signal rows.
type colRun struct {
	top, bottom int // inclusive
}

func columnRuns(m *echogram.Mask, c int) []colRun {
	var runs []colRun
	start := -1
	for r := 0; r < m.Rows; r++ {
		on := m.At(r, c) != 0
		switch {
		case on && start < 0:
			start = r
		case !on && start >= 0:
			runs = append(runs, colRun{start, r - 1})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, colRun{start, m.Rows - 1})
	}
	return runs
}

// overlaps returns, for every run in cur, the indices of the runs in prev
// sharing at least one row. Both slices are sorted top to bottom.
func overlaps(prev, cur []colRun) [][]int {
	out := make([][]int, len(cur))
	j := 0
	for i, cr := range cur {
		for j < len(prev) && prev[j].bottom < cr.top {
			j++
		}
		for k := j; k < len(prev) && prev[k].top <= cr.bottom; k++ {
			out[i] = append(out[i], k)
		}
	}
	return out
}

// BreakIntoFeatures labels a binary mask by tracking column features from
// left to right.
//
// A run in the current column inherits the identifier of a previous-column
// run it overlaps only when no other current run overlaps that same previous
// run. When several such exclusive predecessors exist (a merge) the lowest
// identifier is kept. Otherwise the run starts a new identifier: it has no
// predecessor, or every predecessor also continues into another run (a split
// point, where neither branch is preferred). Identifiers increase in
// column-major order of first appearance.
func BreakIntoFeatures(m *echogram.Mask) *echogram.Mask {
	out := echogram.NewMask(m.Rows, m.Cols)
	if m.Cols == 0 {
		return out
	}

	runs := make([][]colRun, m.Cols)
	adj := make([][][]int, m.Cols)

	// Row-overlap adjacency does not depend on identifiers, so it is built
	// per column pair in parallel ahead of the sequential pass.
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for c := 0; c < m.Cols; c++ {
		eg.Go(func() error {
			runs[c] = columnRuns(m, c)
			return nil
		})
	}
	_ = eg.Wait()
	for c := 1; c < m.Cols; c++ {
		eg.Go(func() error {
			adj[c] = overlaps(runs[c-1], runs[c])
			return nil
		})
	}
	_ = eg.Wait()

	next := 0
	var prevIDs []int
	for c := 0; c < m.Cols; c++ {
		ids := make([]int, len(runs[c]))

		var claims []int
		if c > 0 {
			claims = make([]int, len(runs[c-1]))
			for _, preds := range adj[c] {
				for _, j := range preds {
					claims[j]++
				}
			}
		}

		for i, run := range runs[c] {
			id := 0
			if c > 0 {
				for _, j := range adj[c][i] {
					if claims[j] == 1 && (id == 0 || prevIDs[j] < id) {
						id = prevIDs[j]
					}
				}
			}
			if id == 0 {
				next++
				id = next
			}
			ids[i] = id
			for r := run.top; r <= run.bottom; r++ {
				out.Set(r, c, id)
			}
		}
		prevIDs = ids
	}
	return out
}
