package ssl

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/echomask/internal/echogram"
)

// FeatureMedian returns a continuous grid in which every cell of feature k
// holds the median of the valid grid values carrying identifier k.
// Background cells, and features without valid values, are no data.
//
// If flags has no positive identifiers the all-no-data grid is returned
// together with ErrEmptyFeatureSet; the grid is still usable.
func FeatureMedian(g *echogram.Grid, flags *echogram.Mask) (*echogram.Grid, error) {
	rows, cols := g.Dims()
	if rows != flags.Rows || cols != flags.Cols {
		return nil, ErrShapeMismatch
	}

	out := echogram.NewGrid(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Invalidate(r, c)
		}
	}

	values := collect(g, flags)
	if len(values) <= 1 {
		return out, ErrEmptyFeatureSet
	}

	medians := make([]float64, len(values))
	has := make([]bool, len(values))
	for id := 1; id < len(values); id++ {
		if len(values[id]) == 0 {
			continue
		}
		medians[id] = medianInPlace(values[id])
		has[id] = true
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if id := flags.At(r, c); id > 0 && has[id] {
				out.Set(r, c, medians[id])
			}
		}
	}
	return out, nil
}

// collect groups the valid grid values by feature identifier. Index 0 is
// unused; the slice is empty when there are no features.
func collect(g *echogram.Grid, flags *echogram.Mask) [][]float64 {
	maxID := flags.MaxID()
	if maxID == 0 {
		return nil
	}
	values := make([][]float64, maxID+1)
	for r := 0; r < flags.Rows; r++ {
		for c := 0; c < flags.Cols; c++ {
			id := flags.At(r, c)
			if id <= 0 {
				continue
			}
			if v, ok := g.At(r, c); ok {
				values[id] = append(values[id], v)
			}
		}
	}
	return values
}

// Feature summarises one identifier of a flag mask.
type Feature struct {
	ID           int
	PixelCount   int
	ValidCount   int     // pixels with data
	FirstPing    int     // leftmost column
	LastPing     int     // rightmost column
	PingCount    int     // distinct columns occupied
	TopSample    int     // shallowest row
	BottomSample int     // deepest row
	MedianSv     float64 // NaN when ValidCount is 0
	MeanSv       float64 // mean in the linear domain, expressed in dB; NaN when ValidCount is 0
	MinSv        float64
	MaxSv        float64
}

// Summarize computes per-feature statistics, ordered by identifier.
func Summarize(g *echogram.Grid, flags *echogram.Mask) ([]Feature, error) {
	rows, cols := g.Dims()
	if rows != flags.Rows || cols != flags.Cols {
		return nil, ErrShapeMismatch
	}
	maxID := flags.MaxID()
	if maxID == 0 {
		return nil, nil
	}

	feats := make([]Feature, maxID+1)
	lastCol := make([]int, maxID+1)
	for id := range feats {
		feats[id] = Feature{ID: id, FirstPing: -1, TopSample: -1}
		lastCol[id] = -1
	}

	// Column-major so PingCount can be counted without a set.
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			id := flags.At(r, c)
			if id <= 0 {
				continue
			}
			f := &feats[id]
			f.PixelCount++
			if f.FirstPing < 0 {
				f.FirstPing = c
			}
			f.LastPing = c
			if lastCol[id] != c {
				f.PingCount++
				lastCol[id] = c
			}
			if f.TopSample < 0 || r < f.TopSample {
				f.TopSample = r
			}
			if r > f.BottomSample {
				f.BottomSample = r
			}
		}
	}

	values := collect(g, flags)
	out := make([]Feature, 0, maxID)
	for id := 1; id <= maxID; id++ {
		f := feats[id]
		if f.PixelCount == 0 {
			continue
		}
		vs := values[id]
		f.ValidCount = len(vs)
		f.MedianSv, f.MeanSv, f.MinSv, f.MaxSv = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		if len(vs) > 0 {
			f.MinSv = floats.Min(vs)
			f.MaxSv = floats.Max(vs)
			lin := make([]float64, len(vs))
			for i, v := range vs {
				lin[i] = math.Pow(10, v/10)
			}
			f.MeanSv = 10 * math.Log10(stat.Mean(lin, nil))
			f.MedianSv = medianInPlace(vs)
		}
		out = append(out, f)
	}
	return out, nil
}
