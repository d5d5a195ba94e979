package ssl

import (
	"errors"
	"fmt"
	"math"
)

// SoundSpeed is the nominal speed of sound in sea water (m/s) used to turn a
// pulse length into a vertical resolution.
const SoundSpeed = 1500.0

var (
	// ErrInvalidParams is returned when a parameter set cannot be used.
	ErrInvalidParams = errors.New("ssl: invalid parameters")
	// ErrShapeMismatch is returned when a grid and a mask differ in shape.
	ErrShapeMismatch = errors.New("ssl: grid and mask shapes differ")
	// ErrEmptyFeatureSet is returned alongside an all-background result when
	// statistics are requested for a flag mask with no features.
	ErrEmptyFeatureSet = errors.New("ssl: flag mask has no features")
)

// DetectorParams configures DetectSignal.
type DetectorParams struct {
	PulseLengthMs   float64 // transmit pulse length (ms)
	SampleIntervalM float64 // vertical sample spacing (m)
	MinSeparationM  float64 // minimum separation between layers (m)
	MaxThicknessM   float64 // maximum layer thickness (m)
	MaxSteps        int     // max candidate scales, and max offsets per scale
	Workers         int     // parallel scale workers; 0 = GOMAXPROCS
}

// Validate checks the detector parameters.
func (dp DetectorParams) Validate() error {
	switch {
	case !(dp.SampleIntervalM > 0):
		return fmt.Errorf("%w: sample interval must be positive, got %g", ErrInvalidParams, dp.SampleIntervalM)
	case dp.PulseLengthMs < 0 || math.IsNaN(dp.PulseLengthMs):
		return fmt.Errorf("%w: pulse length must be non-negative, got %g", ErrInvalidParams, dp.PulseLengthMs)
	case dp.MinSeparationM < 0 || math.IsNaN(dp.MinSeparationM):
		return fmt.Errorf("%w: min separation must be non-negative, got %g", ErrInvalidParams, dp.MinSeparationM)
	case dp.MaxThicknessM < 0 || math.IsNaN(dp.MaxThicknessM):
		return fmt.Errorf("%w: max thickness must be non-negative, got %g", ErrInvalidParams, dp.MaxThicknessM)
	case dp.MaxSteps < 1:
		return fmt.Errorf("%w: max steps must be at least 1, got %d", ErrInvalidParams, dp.MaxSteps)
	case dp.Workers < 0:
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidParams, dp.Workers)
	}
	return nil
}

// scaleRange returns, in rows, the smallest offset sampled (half the pulse
// resolution), the smallest candidate scale and the largest candidate scale.
func (dp DetectorParams) scaleRange() (minStep, minScale, maxScale int) {
	pulseRes := SoundSpeed * dp.PulseLengthMs / 1000 / 2
	minStep = max(1, int(pulseRes/2/dp.SampleIntervalM))
	minScale = max(minStep, int(dp.MinSeparationM/dp.SampleIntervalM))
	maxScale = max(minScale, int((dp.MaxThicknessM/2+dp.MinSeparationM)/dp.SampleIntervalM))
	return minStep, minScale, maxScale
}

// Params is the SSLEM parameter set.
type Params struct {
	NoiseFloor       float64 // background noise level (dB re 1 m^-1)
	MinSv            float64 // weaker values are set to the noise floor
	MaxSv            float64 // stronger values (seabed spikes) are set to the noise floor
	PulseLengthMs    float64
	SampleIntervalM  float64
	MinSeparationM   float64 // minimum SSL separation (m)
	MaxThicknessM    float64 // maximum SSL thickness (m)
	MinDurationPings int     // minimum SSL duration (pings)
	MinThicknessM    float64 // minimum SSL thickness (m)
	MaxSteps         int
	RowThreshold     float64 // consensus threshold along pings
	ColumnThreshold  float64 // consensus threshold along depth
	Workers          int
}

// DefaultParams returns the recommended settings for a regional analysis of
// 12 kHz data.
func DefaultParams() Params {
	return Params{
		NoiseFloor:       -999,
		MinSv:            -90,
		MaxSv:            -50,
		PulseLengthMs:    16.384,
		SampleIntervalM:  0.4,
		MinSeparationM:   20,
		MaxThicknessM:    300,
		MinDurationPings: 100,
		MinThicknessM:    50,
		MaxSteps:         10,
		RowThreshold:     0.5,
		ColumnThreshold:  1.0,
	}
}

// Validate checks the parameter set.
func (p Params) Validate() error {
	if err := p.Detector().Validate(); err != nil {
		return err
	}
	switch {
	case p.MinSv > p.MaxSv:
		return fmt.Errorf("%w: min Sv %g above max Sv %g", ErrInvalidParams, p.MinSv, p.MaxSv)
	case p.MinDurationPings < 1:
		return fmt.Errorf("%w: min duration must be at least 1 ping, got %d", ErrInvalidParams, p.MinDurationPings)
	case p.MinThicknessM < 0:
		return fmt.Errorf("%w: min thickness must be non-negative, got %g", ErrInvalidParams, p.MinThicknessM)
	case p.RowThreshold < 0 || p.RowThreshold > 1:
		return fmt.Errorf("%w: row threshold must be in [0,1], got %g", ErrInvalidParams, p.RowThreshold)
	case p.ColumnThreshold < 0 || p.ColumnThreshold > 1:
		return fmt.Errorf("%w: column threshold must be in [0,1], got %g", ErrInvalidParams, p.ColumnThreshold)
	}
	return nil
}

// Detector returns the signal detector settings embedded in p.
func (p Params) Detector() DetectorParams {
	return DetectorParams{
		PulseLengthMs:   p.PulseLengthMs,
		SampleIntervalM: p.SampleIntervalM,
		MinSeparationM:  p.MinSeparationM,
		MaxThicknessM:   p.MaxThicknessM,
		MaxSteps:        p.MaxSteps,
		Workers:         p.Workers,
	}
}

// MinThicknessRows converts MinThicknessM to samples (at least 1).
func (p Params) MinThicknessRows() int {
	return max(1, int(p.MinThicknessM/p.SampleIntervalM))
}

// MinSeparationRows converts MinSeparationM to samples.
func (p Params) MinSeparationRows() int {
	return int(p.MinSeparationM / p.SampleIntervalM)
}

// MinFeatureSize is the smallest feature kept, in pixels.
func (p Params) MinFeatureSize() int {
	return p.MinDurationPings * p.MinThicknessRows()
}
