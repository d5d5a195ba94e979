package report

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/echomask/internal/echogram"
)

// HeatmapSource is a plottable echogram: columns are pings, rows are depth
// samples.
type HeatmapSource interface {
	plotter.GridXYZ
}

// MaskHeatmap adapts a mask to plotter.GridXYZ. With HideZero set,
// background cells are not drawn.
type MaskHeatmap struct {
	Mask     *echogram.Mask
	HideZero bool
}

func (h MaskHeatmap) Dims() (c, r int)   { return h.Mask.Cols, h.Mask.Rows }
func (h MaskHeatmap) X(c int) float64    { return float64(c) }
func (h MaskHeatmap) Y(r int) float64    { return float64(r) }
func (h MaskHeatmap) Z(c, r int) float64 {
	v := h.Mask.At(r, c)
	if v == 0 && h.HideZero {
		return math.NaN()
	}
	return float64(v)
}

// GridHeatmap adapts an Sv grid to plotter.GridXYZ. Cells without data
// are not drawn.
type GridHeatmap struct {
	Grid *echogram.Grid
}

func (h GridHeatmap) Dims() (c, r int) {
	rows, cols := h.Grid.Dims()
	return cols, rows
}
func (h GridHeatmap) X(c int) float64 { return float64(c) }
func (h GridHeatmap) Y(r int) float64 { return float64(r) }
func (h GridHeatmap) Z(c, r int) float64 {
	v, ok := h.Grid.At(r, c)
	if !ok {
		return math.NaN()
	}
	return v
}

const (
	heatmapWidth  = 12 * vg.Inch
	heatmapHeight = 6 * vg.Inch
)

// newHeatmapPlot builds the plot shared by SaveHeatmapPNG and WriteHeatmapPNG.
func newHeatmapPlot(src HeatmapSource, title string) (*plot.Plot, error) {
	c, r := src.Dims()
	if c == 0 || r == 0 {
		return nil, fmt.Errorf("heatmap: empty source (%dx%d)", r, c)
	}

	hm := plotter.NewHeatMap(src, palette.Heat(64, 1))
	if math.IsInf(hm.Min, 0) || math.IsInf(hm.Max, 0) || math.IsNaN(hm.Min) || math.IsNaN(hm.Max) {
		hm.Min, hm.Max = 0, 1
	}
	// A flat source would otherwise divide by zero when picking colours.
	if hm.Max <= hm.Min {
		hm.Max = hm.Min + 1
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Ping"
	p.Y.Label.Text = "Sample"
	p.Y.Scale = plot.InvertedScale{Normalizer: p.Y.Scale}
	p.Add(hm)
	return p, nil
}

// SaveHeatmapPNG renders src to a PNG file at path.
func SaveHeatmapPNG(path string, src HeatmapSource, title string) error {
	p, err := newHeatmapPlot(src, title)
	if err != nil {
		return err
	}
	if err := p.Save(heatmapWidth, heatmapHeight, path); err != nil {
		return fmt.Errorf("heatmap: save %s: %w", path, err)
	}
	return nil
}

// WriteHeatmapPNG renders src as PNG to w.
func WriteHeatmapPNG(w io.Writer, src HeatmapSource, title string) error {
	p, err := newHeatmapPlot(src, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(heatmapWidth, heatmapHeight, "png")
	if err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
