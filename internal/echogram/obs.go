package echogram

import (
	"errors"
	"fmt"
)

// ErrObsLength is returned when observation parameter vectors do not have one
// entry per grid column.
var ErrObsLength = errors.New("echogram: observation parameters do not match column count")

// ObsParams holds the per-ping observation parameters, co-indexed with the
// grid's columns.
type ObsParams struct {
	StartDepth     []float64 // depth of the first sample (m)
	SampleInterval []float64 // vertical sample spacing (m)
	PulseLength    []float64 // transmit pulse length (ms)
}

// Uniform returns ObsParams with the same values repeated for cols pings.
func Uniform(cols int, startDepth, sampleInterval, pulseLength float64) ObsParams {
	o := ObsParams{
		StartDepth:     make([]float64, cols),
		SampleInterval: make([]float64, cols),
		PulseLength:    make([]float64, cols),
	}
	for i := 0; i < cols; i++ {
		o.StartDepth[i] = startDepth
		o.SampleInterval[i] = sampleInterval
		o.PulseLength[i] = pulseLength
	}
	return o
}

// Len returns the number of pings described. Validate must pass for this to
// be meaningful.
func (o ObsParams) Len() int { return len(o.PulseLength) }

// Validate checks that every vector has exactly cols entries.
func (o ObsParams) Validate(cols int) error {
	if len(o.StartDepth) != cols || len(o.SampleInterval) != cols || len(o.PulseLength) != cols {
		return fmt.Errorf("%w: start_depth=%d sample_interval=%d pulse_length=%d cols=%d",
			ErrObsLength, len(o.StartDepth), len(o.SampleInterval), len(o.PulseLength), cols)
	}
	return nil
}

// Clone returns a deep copy.
func (o ObsParams) Clone() ObsParams {
	return ObsParams{
		StartDepth:     append([]float64(nil), o.StartDepth...),
		SampleInterval: append([]float64(nil), o.SampleInterval...),
		PulseLength:    append([]float64(nil), o.PulseLength...),
	}
}

// Depth returns the depth (m) of sample row in ping col.
func (o ObsParams) Depth(row, col int) float64 {
	return o.StartDepth[col] + float64(row)*o.SampleInterval[col]
}

// Matches reports whether ping i of o and ping j of other were recorded with
// identical pulse length, start depth and sample interval.
func (o ObsParams) Matches(i int, other ObsParams, j int) bool {
	return o.PulseLength[i] == other.PulseLength[j] &&
		o.StartDepth[i] == other.StartDepth[j] &&
		o.SampleInterval[i] == other.SampleInterval[j]
}
