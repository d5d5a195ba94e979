package ssl

import "github.com/banshee-data/echomask/internal/echogram"

// neighbours8 and neighbours4 are (dr, dc) offsets for full and edge
// adjacency.
var (
	neighbours8 = [][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	neighbours4 = [][2]int{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}
)

// component is one connected set of cells found by floodFill.
type component struct {
	cells         []int
	touchesBorder bool
}

// floodFill finds the connected components of cells for which member
// returns true, scanning in row-major order so components are reported in
// order of first appearance.
func floodFill(rows, cols int, member func(i int) bool, nbrs [][2]int) []component {
	visited := make([]bool, rows*cols)
	var comps []component

	for start := 0; start < rows*cols; start++ {
		if visited[start] || !member(start) {
			continue
		}

		// BFS to find connected component
		queue := []int{start}
		visited[start] = true
		comp := component{}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp.cells = append(comp.cells, cur)

			r, c := cur/cols, cur%cols
			if r == 0 || c == 0 || r == rows-1 || c == cols-1 {
				comp.touchesBorder = true
			}
			for _, d := range nbrs {
				nr, nc := r+d[0], c+d[1]
				if nr < 0 || nc < 0 || nr >= rows || nc >= cols {
					continue
				}
				n := nr*cols + nc
				if !visited[n] && member(n) {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// Label assigns a unique positive identifier to every 8-connected aggregate
// of non-zero cells. Aggregates smaller than minAggregateSize pixels are
// reset to background and the remaining identifiers are compacted to 1..k in
// order of first appearance (row-major).
func Label(m *echogram.Mask, minAggregateSize int) *echogram.Mask {
	out := echogram.NewMask(m.Rows, m.Cols)
	comps := floodFill(m.Rows, m.Cols, func(i int) bool { return m.Cells[i] != 0 }, neighbours8)

	id := 0
	for _, comp := range comps {
		if len(comp.cells) < minAggregateSize {
			continue
		}
		id++
		for _, i := range comp.cells {
			out.Cells[i] = id
		}
	}
	return out
}

// RemoveSmallFeatures resets every identifier with fewer than minPixelCount
// cells to background and compacts the survivors to 1..k, preserving their
// relative order. Works on any flag mask, connected or not.
func RemoveSmallFeatures(flags *echogram.Mask, minPixelCount int) *echogram.Mask {
	maxID := flags.MaxID()
	counts := make([]int, maxID+1)
	for _, v := range flags.Cells {
		if v > 0 {
			counts[v]++
		}
	}

	remap := make([]int, maxID+1)
	next := 0
	for id := 1; id <= maxID; id++ {
		if counts[id] == 0 || counts[id] < minPixelCount {
			continue
		}
		next++
		remap[id] = next
	}

	out := echogram.NewMask(flags.Rows, flags.Cols)
	for i, v := range flags.Cells {
		if v > 0 {
			out.Cells[i] = remap[v]
		}
	}
	return out
}

// FillInternalGaps converts enclosed background holes into signal. A hole is
// a 4-connected background component of at most maxGapSize pixels that does
// not touch the grid border; border-touching background is exterior and is
// never filled. The result is binary.
func FillInternalGaps(m *echogram.Mask, maxGapSize int) *echogram.Mask {
	out := m.Binarize()
	holes := floodFill(m.Rows, m.Cols, func(i int) bool { return m.Cells[i] == 0 }, neighbours4)
	for _, h := range holes {
		if h.touchesBorder || len(h.cells) > maxGapSize {
			continue
		}
		for _, i := range h.cells {
			out.Cells[i] = 1
		}
	}
	return out
}

// VerticalMerge joins signal runs within a column whose separating noise gap
// is strictly smaller than minSeparation samples. Gaps open to the top or
// bottom of the grid are left alone. The result is binary.
func VerticalMerge(m *echogram.Mask, minSeparation int) *echogram.Mask {
	out := m.Binarize()
	for c := 0; c < m.Cols; c++ {
		last := -1
		for r := 0; r < m.Rows; r++ {
			if m.At(r, c) == 0 {
				continue
			}
			if gap := r - last - 1; last >= 0 && gap > 0 && gap < minSeparation {
				for g := last + 1; g < r; g++ {
					out.Set(g, c, 1)
				}
			}
			last = r
		}
	}
	return out
}
