package ssl

import (
	"errors"
	"time"

	"github.com/banshee-data/echomask/internal/echogram"
	"github.com/banshee-data/echomask/internal/monitoring"
)

var logf = monitoring.Component("SSLEM")

// Result holds the outputs of Extract.
type Result struct {
	Signal    *echogram.Mask // raw detector output
	Features  *echogram.Mask // labelled, cleaned, merged and split features
	Median    *echogram.Grid // per-feature median Sv, no data elsewhere
	Summaries []Feature
	Empty     bool // no feature survived; Median is all no data
}

// Extract runs the SSL extraction method on an Sv grid. The order of the
// stages matters: thresholds, detection, row then column consensus, size
// filter, vertical merge, gap fill, feature tracking, size filter, medians.
func Extract(g *echogram.Grid, p Params) (*Result, error) {
	return ExtractMasked(g, p, nil)
}

// ExtractMasked is Extract with a noise mask: cells where keep is 0 are
// set to the noise floor before detection and cleared from the detected
// signal. A nil keep mask masks nothing.
func ExtractMasked(g *echogram.Grid, p Params, keep *echogram.Mask) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	minSize := p.MinFeatureSize()

	sv := clampToFloor(g, p)
	if keep != nil {
		rows, cols := sv.Dims()
		if keep.Rows != rows || keep.Cols != cols {
			return nil, ErrShapeMismatch
		}
		blanked := 0
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				if keep.At(r, c) == 0 {
					sv.Set(r, c, p.NoiseFloor)
					blanked++
				}
			}
		}
		logf("noise mask blanked %d cells", blanked)
	}

	signal, err := DetectSignal(sv, p.Detector())
	if err != nil {
		return nil, err
	}
	if keep != nil {
		if signal, err = RemoveNoise(signal, keep); err != nil {
			return nil, err
		}
	}

	mask := RowFilter(signal, p.MinDurationPings, p.RowThreshold)
	mask = ColumnFilter(mask, p.MinThicknessRows(), p.ColumnThreshold)
	logf("consensus filters kept %d of %d signal pixels", mask.Count(), signal.Count())

	mask = Label(mask, minSize)
	logf("%d aggregates of at least %d pixels", mask.MaxID(), minSize)

	mask = VerticalMerge(mask, p.MinSeparationRows())
	mask = FillInternalGaps(mask, minSize)
	mask = BreakIntoFeatures(mask)
	mask = RemoveSmallFeatures(mask, minSize)
	logf("%d features after tracking and size filter", mask.MaxID())

	floored := sv.WithFloor(p.NoiseFloor)
	median, err := FeatureMedian(floored, mask)
	empty := errors.Is(err, ErrEmptyFeatureSet)
	if err != nil && !empty {
		return nil, err
	}
	summaries, err := Summarize(floored, mask)
	if err != nil {
		return nil, err
	}

	logf("extraction finished in %v: %d features", time.Since(start).Round(time.Millisecond), len(summaries))
	return &Result{
		Signal:    signal,
		Features:  mask,
		Median:    median,
		Summaries: summaries,
		Empty:     empty,
	}, nil
}

// clampToFloor copies g, setting missing cells and values outside
// [MinSv, MaxSv] to the noise floor. Weak returns and seabed spikes then
// cannot be signal, and the detector medians see the floor around a layer.
func clampToFloor(g *echogram.Grid, p Params) *echogram.Grid {
	out := g.Clone()
	rows, cols := out.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if v, ok := out.At(r, c); !ok || v < p.MinSv || v > p.MaxSv {
				out.Set(r, c, p.NoiseFloor)
			}
		}
	}
	return out
}
