package mask

import (
	"fmt"

	"github.com/banshee-data/echomask/internal/echogram"
	"github.com/banshee-data/echomask/internal/ssl"
)

// Names of the built-in mask definitions.
const (
	NameThreshold = "threshold"
	NamePulse     = "pulse"
	NameSignal    = "signal"
	NameSSL       = "ssl"
	NameSSLMedian = "sslmedian"
)

func channelFor(p echogram.Provider, params Params) (*echogram.Channel, error) {
	ch, err := p.Channel(params.Frequency())
	if err != nil {
		return nil, err
	}
	if err := ch.Validate(); err != nil {
		return nil, err
	}
	return ch, nil
}

func wrongParams(want string, got Params) error {
	return fmt.Errorf("%w: want %s, got %T", ErrInvalidParams, want, got)
}

// BuildThreshold marks cells whose Sv is strictly above the threshold.
func BuildThreshold(p echogram.Provider, params Params) (*Layer, error) {
	tp, ok := params.(ThresholdParams)
	if !ok {
		return nil, wrongParams("ThresholdParams", params)
	}
	ch, err := channelFor(p, tp)
	if err != nil {
		return nil, err
	}
	rows, cols := ch.Sv.Dims()
	m := echogram.NewMask(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if v, ok := ch.Sv.At(r, c); ok && v > tp.ThresholdDB {
				m.Set(r, c, 1)
			}
		}
	}
	return &Layer{Kind: KindBinary, Cells: m, Obs: ch.Obs.Clone()}, nil
}

// BuildPulse masks the transmit pulse and near field: in each ping, rows
// above the first sample equal to MaskValue (or without data) are 0 and the
// rest are 1. A ping without such a sample is left all 1.
func BuildPulse(p echogram.Provider, params Params) (*Layer, error) {
	pp, ok := params.(PulseParams)
	if !ok {
		return nil, wrongParams("PulseParams", params)
	}
	ch, err := channelFor(p, pp)
	if err != nil {
		return nil, err
	}
	return &Layer{Kind: KindBinary, Cells: pulseMask(ch.Sv, pp.MaskValue), Obs: ch.Obs.Clone()}, nil
}

func pulseMask(sv *echogram.Grid, maskValue float64) *echogram.Mask {
	rows, cols := sv.Dims()
	m := echogram.NewMask(rows, cols)
	for c := 0; c < cols; c++ {
		edge := 0
		for r := 0; r < rows; r++ {
			if v, ok := sv.At(r, c); !ok || v == maskValue {
				edge = r
				break
			}
		}
		for r := edge; r < rows; r++ {
			m.Set(r, c, 1)
		}
	}
	return m
}

// extract runs the SSLEM pipeline on ch, blanking the transmit pulse first
// when fp asks for it.
func extract(ch *echogram.Channel, fp FeatureParams) (*ssl.Result, error) {
	if !fp.BlankPulse {
		return ssl.Extract(ch.Sv, fp.SSL)
	}
	return ssl.ExtractMasked(ch.Sv, fp.SSL, pulseMask(ch.Sv, fp.PulseMaskValue))
}

// BuildSignal runs the SSL signal detector.
func BuildSignal(p echogram.Provider, params Params) (*Layer, error) {
	sp, ok := params.(SignalParams)
	if !ok {
		return nil, wrongParams("SignalParams", params)
	}
	ch, err := channelFor(p, sp)
	if err != nil {
		return nil, err
	}
	m, err := ssl.DetectSignal(ch.Sv, sp.Detector)
	if err != nil {
		return nil, err
	}
	return &Layer{Kind: KindBinary, Cells: m, Obs: ch.Obs.Clone()}, nil
}

// BuildFeatures runs the SSLEM pipeline and returns the feature flags.
func BuildFeatures(p echogram.Provider, params Params) (*Layer, error) {
	fp, ok := params.(FeatureParams)
	if !ok {
		return nil, wrongParams("FeatureParams", params)
	}
	ch, err := channelFor(p, fp)
	if err != nil {
		return nil, err
	}
	res, err := extract(ch, fp)
	if err != nil {
		return nil, err
	}
	return &Layer{Kind: KindFlag, Cells: res.Features, Obs: ch.Obs.Clone()}, nil
}

// BuildMedian runs the SSLEM pipeline and returns the per-feature medians.
// An extraction with no features yields an all no data layer.
func BuildMedian(p echogram.Provider, params Params) (*Layer, error) {
	mp, ok := params.(MedianParams)
	if !ok {
		return nil, wrongParams("MedianParams", params)
	}
	ch, err := channelFor(p, mp)
	if err != nil {
		return nil, err
	}
	res, err := extract(ch, FeatureParams(mp))
	if err != nil {
		return nil, err
	}
	return &Layer{Kind: KindContinuous, Values: res.Median, Obs: ch.Obs.Clone()}, nil
}

// RegisterThreshold registers a binary/threshold parameter set.
func (r *Registry) RegisterThreshold(params ThresholdParams) (Handle, error) {
	return r.Register(KindBinary, NameThreshold, BuildThreshold, params)
}

// RegisterPulse registers a binary/pulse parameter set.
func (r *Registry) RegisterPulse(params PulseParams) (Handle, error) {
	return r.Register(KindBinary, NamePulse, BuildPulse, params)
}

// RegisterSignal registers a binary/signal parameter set.
func (r *Registry) RegisterSignal(params SignalParams) (Handle, error) {
	return r.Register(KindBinary, NameSignal, BuildSignal, params)
}

// RegisterFeatures registers a flag/ssl parameter set.
func (r *Registry) RegisterFeatures(params FeatureParams) (Handle, error) {
	return r.Register(KindFlag, NameSSL, BuildFeatures, params)
}

// RegisterMedian registers a cont/sslmedian parameter set.
func (r *Registry) RegisterMedian(params MedianParams) (Handle, error) {
	return r.Register(KindContinuous, NameSSLMedian, BuildMedian, params)
}
