package mask

import (
	"fmt"
	"math"

	"github.com/banshee-data/echomask/internal/ssl"
)

// Params is a parameter set for one mask definition. Implementations must be
// comparable structs so that duplicate registrations can be detected with ==.
type Params interface {
	// Frequency returns the channel (kHz) the mask is built from.
	Frequency() float64
	Validate() error
}

func validFrequency(f float64) error {
	if !(f > 0) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: frequency must be positive, got %g", ErrInvalidParams, f)
	}
	return nil
}

// ThresholdParams configures the binary threshold mask.
type ThresholdParams struct {
	FrequencyKHz float64
	ThresholdDB  float64 // cells strictly above are 1
}

func (p ThresholdParams) Frequency() float64 { return p.FrequencyKHz }

func (p ThresholdParams) Validate() error {
	if err := validFrequency(p.FrequencyKHz); err != nil {
		return err
	}
	if math.IsNaN(p.ThresholdDB) {
		return fmt.Errorf("%w: threshold is NaN", ErrInvalidParams)
	}
	return nil
}

// PulseParams configures the transmit pulse mask.
type PulseParams struct {
	FrequencyKHz float64
	MaskValue    float64 // value marking the end of the pulse and near field
}

func (p PulseParams) Frequency() float64 { return p.FrequencyKHz }

func (p PulseParams) Validate() error { return validFrequency(p.FrequencyKHz) }

// SignalParams configures the SSL signal detector mask.
type SignalParams struct {
	FrequencyKHz float64
	Detector     ssl.DetectorParams
}

func (p SignalParams) Frequency() float64 { return p.FrequencyKHz }

func (p SignalParams) Validate() error {
	if err := validFrequency(p.FrequencyKHz); err != nil {
		return err
	}
	if err := p.Detector.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// FeatureParams configures the SSLEM feature flag mask. With BlankPulse
// set, the pulse mask for PulseMaskValue (see BuildPulse) is applied as
// the extraction's noise mask.
type FeatureParams struct {
	FrequencyKHz   float64
	SSL            ssl.Params
	BlankPulse     bool
	PulseMaskValue float64
}

func (p FeatureParams) Frequency() float64 { return p.FrequencyKHz }

func (p FeatureParams) Validate() error {
	if err := validFrequency(p.FrequencyKHz); err != nil {
		return err
	}
	if err := p.SSL.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// MedianParams configures the continuous per-feature median mask.
type MedianParams struct {
	FrequencyKHz   float64
	SSL            ssl.Params
	BlankPulse     bool
	PulseMaskValue float64
}

func (p MedianParams) Frequency() float64 { return p.FrequencyKHz }

func (p MedianParams) Validate() error {
	return FeatureParams(p).Validate()
}
