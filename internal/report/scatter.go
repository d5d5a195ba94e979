package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/echomask/internal/echogram"
	"github.com/banshee-data/echomask/internal/ssl"
)

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// featureScatter builds a scatter of flagged cells as (ping, -sample, id),
// keeping every stride-th cell so at most maxPoints are drawn.
func featureScatter(flags *echogram.Mask, title string, maxPoints int) *charts.Scatter {
	total := flags.Count()
	stride := 1
	if maxPoints > 0 && total > maxPoints {
		stride = (total + maxPoints - 1) / maxPoints
	}

	data := make([]opts.ScatterData, 0, total/stride+1)
	n := 0
	for r := 0; r < flags.Rows; r++ {
		for c := 0; c < flags.Cols; c++ {
			id := flags.At(r, c)
			if id == 0 {
				continue
			}
			if n%stride == 0 {
				data = append(data, opts.ScatterData{Value: []interface{}{c, -r, id}})
			}
			n++
		}
	}

	maxID := flags.MaxID()
	if maxID == 0 {
		maxID = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("features=%d points=%d stride=%d", flags.MaxID(), len(data), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: flags.Cols, Name: "Ping", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -flags.Rows, Max: 0, Name: "Sample (negated)", NameLocation: "middle", NameGap: 40}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        1,
			Max:        float32(maxID),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("features", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	return scatter
}

// RenderFeatureScatter writes an HTML scatter chart of a flag mask to w.
func RenderFeatureScatter(w io.Writer, flags *echogram.Mask, title string, maxPoints int) error {
	if err := featureScatter(flags, title, maxPoints).Render(w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

// RenderFeatureReport writes an HTML page with the feature scatter and a
// bar chart of feature sizes.
func RenderFeatureReport(w io.Writer, flags *echogram.Mask, features []ssl.Feature, title string, maxPoints int) error {
	ids := make([]string, 0, len(features))
	sizes := make([]opts.BarData, 0, len(features))
	for _, f := range features {
		ids = append(ids, fmt.Sprintf("%d", f.ID))
		sizes = append(sizes, opts.BarData{Value: f.PixelCount})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Feature size", Subtitle: fmt.Sprintf("features=%d", len(features))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(ids).
		AddSeries("pixels", sizes,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(featureScatter(flags, title, maxPoints), bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
