package ssl

import (
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/echomask/internal/echogram"
)

// DetectSignal marks pixels whose linear backscatter strictly exceeds the
// running median of the water above it and of the water below it, for at
// least one pair of candidate vertical scales.
//
// Invalid cells are excluded from every median and are never signal. A
// window with no valid samples never satisfies its comparison.
func DetectSignal(g *echogram.Grid, dp DetectorParams) (*echogram.Mask, error) {
	if err := dp.Validate(); err != nil {
		return nil, err
	}
	rows, cols := g.Dims()

	lin := make([]float64, rows*cols)
	valid := make([]bool, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if v, ok := g.At(r, c); ok {
				lin[r*cols+c] = math.Pow(10, v/10)
				valid[r*cols+c] = true
			}
		}
	}

	minStep, minScale, maxScale := dp.scaleRange()
	scales := evenSteps(minScale, maxScale, dp.MaxSteps)

	above := make([][]float64, len(scales))
	below := make([][]float64, len(scales))

	var eg errgroup.Group
	if dp.Workers > 0 {
		eg.SetLimit(dp.Workers)
	} else {
		eg.SetLimit(runtime.GOMAXPROCS(0))
	}
	for i, s := range scales {
		offsets := evenSteps(minStep, s, dp.MaxSteps)
		eg.Go(func() error {
			above[i] = runningMedian(lin, valid, rows, cols, offsets, -1)
			return nil
		})
		eg.Go(func() error {
			below[i] = runningMedian(lin, valid, rows, cols, offsets, 1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := echogram.NewMask(rows, cols)
	for a := range scales {
		for b := range scales {
			for i, v := range lin {
				if out.Cells[i] == 1 || !valid[i] {
					continue
				}
				// NaN medians (empty windows) fail both comparisons.
				if v > above[a][i] && v > below[b][i] {
					out.Cells[i] = 1
				}
			}
		}
	}

	logf("signal detector: %d scales in [%d,%d] rows, min step %d, %d signal pixels",
		len(scales), minScale, maxScale, minStep, out.Count())
	return out, nil
}

// runningMedian computes, for every pixel, the median of the valid linear
// values at rows r + dir*offset (mirror-padded vertically). Pixels with no
// valid samples get NaN.
func runningMedian(lin []float64, valid []bool, rows, cols int, offsets []int, dir int) []float64 {
	out := make([]float64, rows*cols)
	buf := make([]float64, 0, len(offsets))
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			buf = buf[:0]
			for _, off := range offsets {
				rr := reflect(r+dir*off, rows)
				if valid[rr*cols+c] {
					buf = append(buf, lin[rr*cols+c])
				}
			}
			if len(buf) == 0 {
				out[r*cols+c] = math.NaN()
				continue
			}
			out[r*cols+c] = medianInPlace(buf)
		}
	}
	return out
}

// reflect maps i onto [0, n) by symmetric mirroring about the grid edges,
// so row -1 reads row 0 and row n reads row n-1.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// evenSteps returns at most n distinct, evenly spaced integers covering
// [lo, hi], always including both ends when n > 1.
func evenSteps(lo, hi, n int) []int {
	if hi <= lo {
		return []int{lo}
	}
	if n <= 1 {
		return []int{hi}
	}
	n = min(n, hi-lo+1)
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		v := lo + int(math.Round(float64(i)*float64(hi-lo)/float64(n-1)))
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return out
}

// medianInPlace sorts xs and returns its median; an even count averages the
// two middle values.
func medianInPlace(xs []float64) float64 {
	sort.Float64s(xs)
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}
