package ssl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/echomask/internal/echogram"
)

// blockGrid is a 100×50 echogram at the noise floor with a -60 dB layer in
// rows 20..40 inclusive.
func blockGrid() *echogram.Grid {
	g := echogram.NewGridFill(100, 50, -999)
	for r := 20; r <= 40; r++ {
		for c := 0; c < 50; c++ {
			g.Set(r, c, -60)
		}
	}
	return g
}

func testDetector() DetectorParams {
	return DetectorParams{
		PulseLengthMs:   1,
		SampleIntervalM: 1,
		MinSeparationM:  20,
		MaxThicknessM:   40,
		MaxSteps:        10,
	}
}

func TestDetectorParams_ScaleRange(t *testing.T) {
	t.Parallel()
	minStep, minScale, maxScale := testDetector().scaleRange()
	assert.Equal(t, 1, minStep)
	assert.Equal(t, 20, minScale)
	assert.Equal(t, 40, maxScale)

	// A long pulse pushes the smallest offset above one sample.
	dp := DetectorParams{PulseLengthMs: 8, SampleIntervalM: 1, MinSeparationM: 1, MaxThicknessM: 0, MaxSteps: 1}
	minStep, minScale, maxScale = dp.scaleRange()
	assert.Equal(t, 3, minStep)
	assert.Equal(t, 3, minScale)
	assert.Equal(t, 3, maxScale)
}

func TestDetectorParams_Validate(t *testing.T) {
	t.Parallel()
	require.NoError(t, testDetector().Validate())

	tests := []struct {
		name string
		mod  func(*DetectorParams)
	}{
		{"zero sample interval", func(dp *DetectorParams) { dp.SampleIntervalM = 0 }},
		{"negative pulse", func(dp *DetectorParams) { dp.PulseLengthMs = -1 }},
		{"negative separation", func(dp *DetectorParams) { dp.MinSeparationM = -1 }},
		{"negative thickness", func(dp *DetectorParams) { dp.MaxThicknessM = -1 }},
		{"zero steps", func(dp *DetectorParams) { dp.MaxSteps = 0 }},
		{"negative workers", func(dp *DetectorParams) { dp.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dp := testDetector()
			tt.mod(&dp)
			assert.ErrorIs(t, dp.Validate(), ErrInvalidParams)
		})
	}
}

func TestDetectSignal_Block(t *testing.T) {
	t.Parallel()
	m, err := DetectSignal(blockGrid(), testDetector())
	require.NoError(t, err)

	assert.Equal(t, 21*50, m.Count())
	for r := 0; r < m.Rows; r++ {
		want := 0
		if r >= 20 && r <= 40 {
			want = 1
		}
		for c := 0; c < m.Cols; c++ {
			if m.At(r, c) != want {
				t.Fatalf("cell (%d,%d) = %d, want %d", r, c, m.At(r, c), want)
			}
		}
	}
}

func TestDetectSignal_WorkersDoNotChangeResult(t *testing.T) {
	t.Parallel()
	dp := testDetector()
	dp.Workers = 1
	serial, err := DetectSignal(blockGrid(), dp)
	require.NoError(t, err)
	dp.Workers = 8
	parallel, err := DetectSignal(blockGrid(), dp)
	require.NoError(t, err)
	assert.Equal(t, serial.Cells, parallel.Cells)
}

func TestDetectSignal_InvalidCellsNeverSignal(t *testing.T) {
	t.Parallel()
	g := blockGrid()
	g.Invalidate(30, 10)

	m, err := DetectSignal(g, testDetector())
	require.NoError(t, err)
	assert.Equal(t, 0, m.At(30, 10))
	assert.Equal(t, 1, m.At(29, 10))
	assert.Equal(t, 1, m.At(31, 10))
	assert.Equal(t, 21*50-1, m.Count())
}

func TestDetectSignal_UniformGridHasNoSignal(t *testing.T) {
	t.Parallel()
	m, err := DetectSignal(echogram.NewGridFill(30, 5, -70), testDetector())
	require.NoError(t, err)
	assert.Zero(t, m.Count())
}

func TestDetectSignal_InvalidParams(t *testing.T) {
	t.Parallel()
	dp := testDetector()
	dp.SampleIntervalM = 0
	_, err := DetectSignal(blockGrid(), dp)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestReflect(t *testing.T) {
	t.Parallel()
	tests := []struct{ i, n, want int }{
		{0, 5, 0},
		{4, 5, 4},
		{-1, 5, 0},
		{-5, 5, 4},
		{-6, 5, 4},
		{5, 5, 4},
		{9, 5, 0},
		{10, 5, 0},
		{3, 1, 0},
		{-3, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reflect(tt.i, tt.n), "reflect(%d, %d)", tt.i, tt.n)
	}
}

func TestEvenSteps(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{20, 22, 24, 27, 29, 31, 33, 36, 38, 40}, evenSteps(20, 40, 10))
	assert.Equal(t, []int{1, 5, 10, 14, 18, 23, 27, 31, 36, 40}, evenSteps(1, 40, 10))
	assert.Equal(t, []int{1, 2, 3}, evenSteps(1, 3, 10))
	assert.Equal(t, []int{5}, evenSteps(5, 5, 3))
	assert.Equal(t, []int{7}, evenSteps(7, 2, 3))
	assert.Equal(t, []int{10}, evenSteps(3, 10, 1))
}

func TestMedianInPlace(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 2.0, medianInPlace([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, medianInPlace([]float64{4, 1, 3, 2}))
	assert.Equal(t, 7.0, medianInPlace([]float64{7}))
}
